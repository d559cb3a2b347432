package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/serverwrap/pkg/errors"
)

// Registry maps names to values of one kind. It is safe for concurrent use.
type Registry[T any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty registry. kind labels the values in error messages,
// e.g. "transform operation".
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:  kind,
		items: make(map[string]T),
	}
}

// Register adds an item under name. Names are unique.
func (r *Registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "%s %q is already registered", r.kind, name)
	}

	r.items[name] = item
	return nil
}

// MustRegister registers an item and panics on failure. Meant for init().
func (r *Registry[T]) MustRegister(name string, item T) {
	if err := r.Register(name, item); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
}

// Get retrieves an item. Unknown names yield ErrNotFound listing the known ones.
func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	item, exists := r.items[name]
	r.mu.RUnlock()

	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "unknown %s %q (known: %s)",
			r.kind, name, strings.Join(r.Names(), ", ")).
			WithDetail("name", name)
	}
	return item, nil
}

// Has checks if an item is registered
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

// Names returns all registered names in sorted order
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
