package launcher

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/serverwrap/pkg/cache"
	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/filesystem"
	"github.com/arthur-debert/serverwrap/pkg/internal/hashutil"
	"github.com/arthur-debert/serverwrap/pkg/ui"
)

// Verification results of CacheRows.
const (
	CheckOK         = "ok"
	CheckMismatch   = "hash differs"
	CheckOpaque     = "present"
	CheckMissing    = "missing"
	CheckUnreadable = "unreadable"
)

// CacheRows lists the entries of every destination store under the cache
// root. With verify each object is read back and compared with its token
// when the token is a content hash; objects rewritten by transforms report
// CheckMismatch. Stores are only read.
func (l *Launcher) CacheRows(verify bool) ([]ui.CacheRow, error) {
	cfg, err := config.Load(l.opts.Paths.ConfigPath())
	if err != nil {
		return nil, err
	}
	root := l.opts.Paths.CacheRoot(cfg.CacheDir)

	dirs, err := l.opts.FS.ReadDir(root)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read cache root %s", root)
	}

	var rows []ui.CacheRow
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		store, err := cache.Open(l.opts.FS, filepath.Join(root, d.Name()))
		if err != nil {
			return nil, err
		}
		for _, info := range store.List() {
			row := ui.CacheRow{
				Destination: d.Name(),
				Key:         info.Key,
				File:        info.Name,
				Token:       info.Token.String(),
				UpdatedAt:   info.UpdatedAt,
			}
			if verify {
				row.Check = l.check(info)
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Destination < rows[j].Destination })
	return rows, nil
}

func (l *Launcher) check(info cache.Info) string {
	data, err := l.opts.FS.ReadFile(info.Path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return CheckMissing
		}
		return CheckUnreadable
	}
	if !info.Token.IsContentHash() {
		return CheckOpaque
	}
	ok, err := hashutil.Verify(info.Token.Algorithm, info.Token.Value, data)
	if err != nil {
		return CheckUnreadable
	}
	if !ok {
		return CheckMismatch
	}
	return CheckOK
}
