package transform

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
)

func init() {
	operations.MustRegister("archive", newArchiveEntry)
	operations.MustRegister("rename", newRename)
}

// ArchiveEntry extracts one entry from a zip archive. Pattern is either an
// exact entry name or a path.Match glob; the first matching regular file wins.
type ArchiveEntry struct {
	Pattern string
}

func newArchiveEntry(decl config.TransformDecl) (Operation, error) {
	if decl.Path == "" {
		return nil, errors.New(errors.ErrTransform, "archive operation requires a path")
	}
	if _, err := path.Match(decl.Path, ""); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransform, "invalid archive path pattern %q", decl.Path)
	}
	return ArchiveEntry{Pattern: decl.Path}, nil
}

func (a ArchiveEntry) matches(name string) bool {
	if name == a.Pattern {
		return true
	}
	ok, _ := path.Match(a.Pattern, name)
	return ok
}

func (a ArchiveEntry) Apply(file File) (*File, error) {
	logger := logging.GetLogger("transform")

	reader, err := zip.NewReader(bytes.NewReader(file.Bytes), int64(len(file.Bytes)))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransform, "open archive %s", file.Name)
	}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || !a.matches(entry.Name) {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTransform, "open entry %s in %s", entry.Name, file.Name)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTransform, "read entry %s in %s", entry.Name, file.Name)
		}

		logger.Debug().Str("archive", file.Name).Str("entry", entry.Name).Msg("Extracted archive entry")
		return &File{Name: path.Base(entry.Name), Bytes: data}, nil
	}

	logger.Debug().Str("archive", file.Name).Str("pattern", a.Pattern).Msg("No archive entry matched")
	return nil, nil
}

// Rename replaces the file name and keeps the bytes.
type Rename struct {
	Name string
}

func newRename(decl config.TransformDecl) (Operation, error) {
	if decl.Name == "" {
		return nil, errors.New(errors.ErrTransform, "rename operation requires a name")
	}
	if strings.ContainsAny(decl.Name, `/\`) || decl.Name == "." || decl.Name == ".." {
		return nil, errors.Newf(errors.ErrTransform, "rename target %q must be a plain file name", decl.Name)
	}
	return Rename{Name: decl.Name}, nil
}

func (r Rename) Apply(file File) (*File, error) {
	return &File{Name: r.Name, Bytes: file.Bytes}, nil
}
