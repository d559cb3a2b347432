package cache

import (
	"path"
	"path/filepath"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/filesystem"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/transform"
	"github.com/arthur-debert/serverwrap/pkg/types"
)

// now is replaced in tests.
var now = time.Now

// Entry is the cache slot of one source key.
type Entry struct {
	store *Store
	key   string
}

// Key returns the source key this entry belongs to.
func (e *Entry) Key() string {
	return e.key
}

// TryUpdate compares token with the stored one. The result is matched when
// an artifact is stored under an equal token; otherwise it carries an
// Updater for committing a replacement.
func (e *Entry) TryUpdate(token Token) UpdateResult {
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[e.key]; ok && sl.token.Equal(token) {
		ref := s.referenceLocked(sl)
		return UpdateResult{reference: &ref}
	}
	return UpdateResult{updater: &Updater{entry: e, token: token}}
}

// Existing returns the last committed artifact regardless of its token.
func (e *Entry) Existing() (Reference, bool) {
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[e.key]
	if !ok {
		return Reference{}, false
	}
	return s.referenceLocked(sl), true
}

// Token returns the token of the stored artifact.
func (e *Entry) Token() (Token, bool) {
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[e.key]
	if !ok {
		return Token{}, false
	}
	return sl.token, true
}

func (s *Store) referenceLocked(sl *slot) Reference {
	return Reference{
		path:    filepath.Join(s.root, filepath.FromSlash(sl.object)),
		name:    sl.name,
		changed: sl.changed,
	}
}

// UpdateResult is the outcome of TryUpdate: exactly one of Reference or
// Updater is set.
type UpdateResult struct {
	reference *Reference
	updater   *Updater
}

// Matched reports whether the cached artifact is current.
func (r UpdateResult) Matched() bool {
	return r.reference != nil
}

// Reference returns the current artifact of a matched result.
func (r UpdateResult) Reference() (Reference, bool) {
	if r.reference == nil {
		return Reference{}, false
	}
	return *r.reference, true
}

// Updater returns the write capability of a mismatched result.
func (r UpdateResult) Updater() (*Updater, bool) {
	return r.updater, r.updater != nil
}

// Updater replaces the artifact of one entry. It can be used once.
type Updater struct {
	entry *Entry
	token Token
	used  bool
}

// Token returns the token the new artifact will be stored under.
func (u *Updater) Token() Token {
	return u.token
}

// Update writes file as the entry's new artifact and returns a Reference that
// reports Changed. If writing fails the entry keeps its previous artifact.
func (u *Updater) Update(file transform.File) (Reference, error) {
	s := u.entry.store

	s.mu.Lock()
	if u.used {
		s.mu.Unlock()
		return Reference{}, errors.New(errors.ErrInternal, "cache updater already used").
			WithDetail("key", u.entry.key)
	}
	u.used = true
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return Reference{}, errors.New(errors.ErrInternal, "cache store is closed").
			WithDetail("key", u.entry.key)
	}

	name := filepath.Base(file.Name)
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return Reference{}, errors.Newf(errors.ErrInvalidInput, "invalid artifact file name %q", file.Name)
	}

	object := path.Join(objectsDir, escapeKey(u.entry.key), u.token.id(), name)
	target := filepath.Join(s.root, filepath.FromSlash(object))
	if err := writeObject(s.fs, target, file.Bytes); err != nil {
		return Reference{}, errors.Wrapf(err, errors.ErrIO, "failed to write cache object for %s", u.entry.key).
			WithDetail("path", target)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = s.fs.Remove(target)
		return Reference{}, errors.New(errors.ErrInternal, "cache store closed during update").
			WithDetail("key", u.entry.key)
	}
	sl := &slot{
		token:     u.token,
		name:      name,
		object:    object,
		updatedAt: now().UTC(),
		changed:   true,
	}
	s.slots[u.entry.key] = sl
	ref := s.referenceLocked(sl)
	s.mu.Unlock()

	logger := logging.GetLogger("cache")
	logger.Debug().
		Str("root", s.root).
		Str("key", u.entry.key).
		Str("token", u.token.String()).
		Int("bytes", len(file.Bytes)).
		Msg("Cache entry updated")

	return ref, nil
}

func writeObject(fsys types.FS, target string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(fsys, target, data, 0644)
}

// Reference is a handle to a cached artifact.
type Reference struct {
	path    string
	name    string
	changed bool
}

// Name returns the file name the artifact is materialized under.
func (r Reference) Name() string {
	return r.name
}

// Path returns the location of the cached bytes.
func (r Reference) Path() string {
	return r.path
}

// Changed reports whether the artifact was committed during this store session.
func (r Reference) Changed() bool {
	return r.changed
}

// CopyTo copies the artifact into dir under its Name.
func (r Reference) CopyTo(fsys types.FS, dir string) error {
	if r.path == "" {
		return errors.New(errors.ErrInternal, "copy of empty cache reference")
	}
	if err := filesystem.CopyFile(fsys, r.path, filepath.Join(dir, r.name)); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to copy %s into %s", r.name, dir)
	}
	return nil
}
