package testutil

import (
	"io/fs"

	"github.com/arthur-debert/serverwrap/pkg/types"
)

// FaultyFS wraps a filesystem and lets tests intercept renames, which is
// where every atomic write and destination swap commits.
type FaultyFS struct {
	types.FS
	// OnRename runs before each rename; a non-nil error is returned instead
	// of renaming.
	OnRename func(oldpath, newpath string) error
	// AfterRename runs after each successful rename.
	AfterRename func(oldpath, newpath string)
}

// Rename implements types.FS.
func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if f.OnRename != nil {
		if err := f.OnRename(oldpath, newpath); err != nil {
			return &fs.PathError{Op: "rename", Path: newpath, Err: err}
		}
	}
	if err := f.FS.Rename(oldpath, newpath); err != nil {
		return err
	}
	if f.AfterRename != nil {
		f.AfterRename(oldpath, newpath)
	}
	return nil
}
