// Package dsgen is the runtime support library for code generated by the
// dsgen command.
package dsgen

import (
	"sort"
	"sync"
)

// Mode controls how a Registry constructs missing instances
type Mode int

const (
	// Relaxed lets concurrent first callers race to construct an instance.
	// Exactly one constructed value is stored and every caller receives
	// that stored value; the losing constructions are discarded.
	Relaxed Mode = iota

	// Serialized runs construction under the registry lock so each key is
	// constructed exactly once.
	Serialized
)

// String returns the string representation of the mode
func (m Mode) String() string {
	if m == Serialized {
		return "serialized"
	}
	return "relaxed"
}

// Registry caches one instance per key for the life of the process
type Registry struct {
	mode      Mode
	instances sync.Map // key -> instance
	mu        sync.Mutex
}

// NewRegistry creates an empty registry. The mode defaults to Relaxed.
func NewRegistry(mode ...Mode) *Registry {
	r := &Registry{}
	if len(mode) > 0 {
		r.mode = mode[0]
	}
	return r
}

// Mode returns the construction mode of the registry
func (r *Registry) Mode() Mode {
	return r.mode
}

// Resolve returns the instance stored under key, calling create when the
// key has no instance yet. Instances are never evicted.
func Resolve[T any](r *Registry, key string, create func() T) T {
	if v, ok := r.instances.Load(key); ok {
		return v.(T)
	}

	if r.mode == Serialized {
		r.mu.Lock()
		defer r.mu.Unlock()
		if v, ok := r.instances.Load(key); ok {
			return v.(T)
		}
		v := create()
		r.instances.Store(key, v)
		return v
	}

	actual, _ := r.instances.LoadOrStore(key, create())
	return actual.(T)
}

// Lookup returns the instance stored under key without constructing one
func (r *Registry) Lookup(key string) (interface{}, bool) {
	return r.instances.Load(key)
}

// Keys returns the keys that currently hold an instance, sorted
func (r *Registry) Keys() []string {
	var keys []string
	r.instances.Range(func(k, _ interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}
