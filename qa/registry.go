package qa

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrCheckAlreadyRegistered = errors.New("check already registered")

// Registry holds checks by ID, preserving registration order. Profiles refer
// to checks by ID only; the registry is where the runner resolves them.
type Registry struct {
	mu      sync.RWMutex
	entries []*Check
	index   map[string]*Check
}

// NewRegistry creates an empty check registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*Check)}
}

// Register adds a check to the registry. The check must have a non-empty ID
// and a run function; duplicate IDs are rejected.
func (r *Registry) Register(chk *Check) error {
	if chk == nil {
		return fmt.Errorf("cannot register nil check")
	}
	id := strings.TrimSpace(chk.ID)
	if id == "" {
		return fmt.Errorf("cannot register check with empty ID")
	}
	if chk.Run == nil {
		return fmt.Errorf("cannot register check %q without a run function", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[id]; ok {
		return fmt.Errorf("%w: %q", ErrCheckAlreadyRegistered, id)
	}
	r.entries = append(r.entries, chk)
	r.index[id] = chk
	return nil
}

// Lookup returns the check registered under the given ID.
func (r *Registry) Lookup(id string) (*Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chk, ok := r.index[id]
	return chk, ok
}

// Checks returns all registered checks in registration order.
func (r *Registry) Checks() []*Check {
	r.mu.RLock()
	defer r.mu.RUnlock()
	checks := make([]*Check, len(r.entries))
	copy(checks, r.entries)
	return checks
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide check registry. Check packages
// register into it from their init functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a check to the default registry.
func Register(chk *Check) error {
	return defaultRegistry.Register(chk)
}

// MustRegister adds a check to the default registry and panics on error.
// Intended for use in init functions of check packages.
func MustRegister(chk *Check) {
	if err := defaultRegistry.Register(chk); err != nil {
		panic(err)
	}
}

// Lookup returns a check from the default registry.
func Lookup(id string) (*Check, bool) {
	return defaultRegistry.Lookup(id)
}
