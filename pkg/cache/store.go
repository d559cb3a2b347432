package cache

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/filesystem"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/types"
)

const (
	indexFile   = "index.toml"
	objectsDir  = "objects"
	indexFormat = 1
)

type record struct {
	Algorithm string    `toml:"algorithm"`
	Value     string    `toml:"value"`
	Name      string    `toml:"name"`
	Object    string    `toml:"object"`
	UpdatedAt time.Time `toml:"updated_at"`
}

type index struct {
	Version int               `toml:"version"`
	Entries map[string]record `toml:"entries"`
}

type slot struct {
	token     Token
	name      string
	object    string // slash-separated, relative to the store root
	updatedAt time.Time
	changed   bool
}

// Store is the cache of one destination. It is safe for concurrent use.
type Store struct {
	fs   types.FS
	root string

	mu     sync.Mutex
	slots  map[string]*slot
	closed bool
}

// Open loads the store rooted at root. A missing root is an empty store. An
// index that cannot be decoded is discarded with a warning so the next cycle
// re-downloads everything instead of failing.
func Open(fsys types.FS, root string) (*Store, error) {
	logger := logging.GetLogger("cache").With().Str("root", root).Logger()

	s := &Store{
		fs:    fsys,
		root:  root,
		slots: make(map[string]*slot),
	}

	data, err := fsys.ReadFile(filepath.Join(root, indexFile))
	if err != nil {
		if filesystem.IsNotExist(err) {
			logger.Debug().Msg("No cache index, starting empty")
			return s, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read cache index in %s", root)
	}

	var idx index
	if err := toml.Unmarshal(data, &idx); err != nil {
		logger.Warn().Err(err).Msg("Cache index is corrupt, starting empty")
		return s, nil
	}

	for key, rec := range idx.Entries {
		if rec.Object == "" || rec.Name == "" {
			continue
		}
		if _, err := fsys.Stat(filepath.Join(root, filepath.FromSlash(rec.Object))); err != nil {
			logger.Debug().Str("key", key).Str("object", rec.Object).Msg("Cached object missing, dropping entry")
			continue
		}
		s.slots[key] = &slot{
			token:     Token{Algorithm: rec.Algorithm, Value: rec.Value},
			name:      rec.Name,
			object:    rec.Object,
			updatedAt: rec.UpdatedAt,
		}
	}

	logger.Debug().Int("entries", len(s.slots)).Msg("Cache opened")
	return s, nil
}

// Root returns the directory the store lives in.
func (s *Store) Root() string {
	return s.root
}

// Entry returns the slot for key. It does not touch the disk.
func (s *Store) Entry(key string) *Entry {
	return &Entry{store: s, key: key}
}

// Close persists the index and removes unreferenced objects. Calling Close
// again is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	idx := index{Version: indexFormat, Entries: make(map[string]record, len(s.slots))}
	for key, sl := range s.slots {
		idx.Entries[key] = record{
			Algorithm: sl.token.Algorithm,
			Value:     sl.token.Value,
			Name:      sl.name,
			Object:    sl.object,
			UpdatedAt: sl.updatedAt,
		}
	}

	data, err := toml.Marshal(idx)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode cache index")
	}
	if err := filesystem.WriteFileAtomic(s.fs, filepath.Join(s.root, indexFile), data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write cache index in %s", s.root)
	}

	s.prune()
	s.closed = true
	return nil
}

// prune removes object directories that no slot points at. Failures are
// logged; stale objects only cost disk space.
func (s *Store) prune() {
	live := make(map[string]bool, len(s.slots))
	for _, sl := range s.slots {
		live[sl.object] = true
		live[path.Dir(sl.object)] = true
		live[path.Dir(path.Dir(sl.object))] = true
	}

	objects := filepath.Join(s.root, objectsDir)
	keyDirs, err := s.fs.ReadDir(objects)
	if err != nil {
		return
	}
	for _, keyDir := range keyDirs {
		keyRel := path.Join(objectsDir, keyDir.Name())
		if !live[keyRel] {
			s.remove(keyRel)
			continue
		}
		tokenDirs, err := s.fs.ReadDir(filepath.Join(s.root, filepath.FromSlash(keyRel)))
		if err != nil {
			continue
		}
		for _, tokenDir := range tokenDirs {
			tokenRel := path.Join(keyRel, tokenDir.Name())
			if !live[tokenRel] {
				s.remove(tokenRel)
				continue
			}
			files, err := s.fs.ReadDir(filepath.Join(s.root, filepath.FromSlash(tokenRel)))
			if err != nil {
				continue
			}
			for _, f := range files {
				if fileRel := path.Join(tokenRel, f.Name()); !live[fileRel] {
					s.remove(fileRel)
				}
			}
		}
	}
}

func (s *Store) remove(rel string) {
	logger := logging.GetLogger("cache").With().Str("root", s.root).Str("object", rel).Logger()
	if err := s.fs.RemoveAll(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil {
		logger.Warn().Err(err).Msg("Failed to remove stale cache object")
		return
	}
	logger.Debug().Msg("Removed stale cache object")
}

// Info describes one cache entry.
type Info struct {
	Key       string
	Token     Token
	Name      string
	Path      string
	UpdatedAt time.Time
}

// List returns every entry sorted by key.
func (s *Store) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]Info, 0, len(s.slots))
	for key, sl := range s.slots {
		infos = append(infos, Info{
			Key:       key,
			Token:     sl.token,
			Name:      sl.name,
			Path:      filepath.Join(s.root, filepath.FromSlash(sl.object)),
			UpdatedAt: sl.updatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// escapeKey makes a source key usable as a single path element.
func escapeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
