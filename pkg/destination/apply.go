package destination

import (
	"path/filepath"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/filesystem"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/status"
	"github.com/arthur-debert/serverwrap/pkg/types"
)

// Apply replaces the destination directory with exactly the prepared items.
//
// The new tree is written to a sibling staging directory first. The current
// directory is then renamed aside, the staging directory renamed into place
// and the old tree removed. If the swap fails the previous directory is
// restored.
func (p *Prepared) Apply(fsys types.FS) error {
	logger := logging.GetLogger("destination").With().Str("destination", p.Name).Str("path", p.Root).Logger()

	if p.Root == "" {
		return errors.Newf(errors.ErrConfigInvalid, "destination %s has no path", p.Name)
	}
	root := filepath.Clean(p.Root)
	if err := fsys.MkdirAll(filepath.Dir(root), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create parent of %s", root)
	}

	staging := filesystem.TempName(root, "staging")
	if err := fsys.MkdirAll(staging, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create staging directory for %s", root)
	}

	names := make(map[string]string, len(p.Items))
	for _, item := range p.Items {
		name := item.Reference.Name()
		if other, dup := names[name]; dup {
			logger.Warn().Str("file", name).Str("key", item.Key).Str("first", other).Msg("Two sources produce the same file, keeping the first")
			continue
		}
		names[name] = item.Key

		if err := item.Reference.CopyTo(fsys, staging); err != nil {
			_ = fsys.RemoveAll(staging)
			return err
		}
	}

	if err := swap(fsys, staging, root); err != nil {
		_ = fsys.RemoveAll(staging)
		return err
	}
	logger.Info().Int("files", len(names)).Msg("Destination applied")
	return nil
}

func swap(fsys types.FS, staging, root string) error {
	if !filesystem.Exists(fsys, root) {
		if err := fsys.Rename(staging, root); err != nil {
			return errors.Wrapf(err, errors.ErrIO, "failed to move %s into place", root)
		}
		return nil
	}

	old := filesystem.TempName(root, "old")
	if err := fsys.Rename(root, old); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to move %s aside", root)
	}
	if err := fsys.Rename(staging, root); err != nil {
		_ = fsys.Rename(old, root)
		return errors.Wrapf(err, errors.ErrIO, "failed to move %s into place", root)
	}
	if err := fsys.RemoveAll(old); err != nil {
		logger := logging.GetLogger("destination")
		logger.Warn().Err(err).Str("path", old).Msg("Failed to remove previous destination tree")
	}
	return nil
}

// ApplyAll applies every prepared destination. Failures are logged and
// reported; the destinations that were applied are returned.
func ApplyAll(fsys types.FS, w *status.Writer, prepared []*Prepared) []*Prepared {
	logger := logging.GetLogger("destination")
	applied := make([]*Prepared, 0, len(prepared))
	for _, p := range prepared {
		if err := p.Apply(fsys); err != nil {
			logger.Error().Err(err).Str("destination", p.Name).Msg("Failed to apply destination")
			w.Write(status.Textf("Failed to update destination `%s`...", p.Name))
			continue
		}
		applied = append(applied, p)
	}
	return applied
}

// Change is a source downloaded during this cycle.
type Change struct {
	Destination string
	Key         string
}

// Changes lists the items whose artifact was replaced during this cycle.
func Changes(prepared []*Prepared) []Change {
	var changes []Change
	for _, p := range prepared {
		for _, item := range p.Items {
			if item.Reference.Changed() {
				changes = append(changes, Change{Destination: p.Name, Key: item.Key})
			}
		}
	}
	return changes
}

// ChangedKeys returns the keys of changes, in order.
func ChangedKeys(changes []Change) []string {
	keys := make([]string, 0, len(changes))
	for _, c := range changes {
		keys = append(keys, c.Key)
	}
	return keys
}
