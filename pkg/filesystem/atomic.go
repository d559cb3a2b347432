package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/types"
)

var tempSeq atomic.Uint64

// TempName returns a sibling path of target that is unique within this process.
func TempName(target, tag string) string {
	dir, base := filepath.Split(target)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s-%d-%d", base, tag, time.Now().UnixNano(), tempSeq.Add(1)))
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place, so readers observe either the old or the new content.
func WriteFileAtomic(fsys types.FS, path string, data []byte, perm fs.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := TempName(path, "tmp")
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

// CopyFile copies src to dst, creating dst's parent directory.
func CopyFile(fsys types.FS, src, dst string) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return fsys.WriteFile(dst, data, 0644)
}

// Exists reports whether path exists. Errors other than not-exist count as existing.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil || !IsNotExist(err)
}

// IsNotExist reports whether err means the file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
