package registry

import (
	"fmt"
	"sync"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
)

// Registry is a thread-safe, ordered name to item map.
type Registry[T any] struct {
	kind    string
	mu      sync.RWMutex
	items   map[string]T
	order   []string
	aliases map[string]string
}

// New creates an empty Registry. kind names what it holds in error
// messages, e.g. "patch type".
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		items:   make(map[string]T),
		aliases: make(map[string]string),
	}
}

// Register adds item under name.
func (r *Registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(name) {
		return errors.Newf(errors.ErrAlreadyExists, "%s '%s' is already registered", r.kind, name)
	}
	r.items[name] = item
	r.order = append(r.order, name)
	return nil
}

// Alias makes alias resolve to the registered name target.
func (r *Registry[T]) Alias(alias, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[target]; !ok {
		return errors.Newf(errors.ErrNotFound, "%s '%s' not found", r.kind, target)
	}
	if alias == "" || r.taken(alias) {
		return errors.Newf(errors.ErrAlreadyExists, "%s alias '%s' is not available", r.kind, alias)
	}
	r.aliases[alias] = target
	return nil
}

func (r *Registry[T]) taken(name string) bool {
	_, item := r.items[name]
	_, alias := r.aliases[name]
	return item || alias
}

// Lookup returns the item for name or one of its aliases.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[name]; ok {
		name = target
	}
	item, ok := r.items[name]
	return item, ok
}

// Get is Lookup with a coded error listing the known names.
func (r *Registry[T]) Get(name string) (T, error) {
	item, ok := r.Lookup(name)
	if !ok {
		return item, errors.Newf(errors.ErrNotFound, "unknown %s '%s'", r.kind, name).
			WithDetail("available", r.Names())
	}
	return item, nil
}

// Has reports whether name or an alias of that name is registered.
func (r *Registry[T]) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names lists registered names in registration order. Aliases are left out.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Count returns the number of registered items
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// MustRegister registers an item and panics if registration fails.
// Registrations happen in init functions, where a failure is a programming
// error.
func MustRegister[T any](r *Registry[T], name string, item T) {
	if err := r.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
