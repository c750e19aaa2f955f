package bot

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Names of the built-in profiles.
const (
	TieredProfile    = "tiered"
	PatternedProfile = "patterned"
)

// ErrUnknownProfile is returned when no policy is registered under a name.
var ErrUnknownProfile = errors.New("unknown profile")

// Registry maps profile names to policies.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// DefaultRegistry returns a registry holding the built-in profiles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	tiered, err := NewTierPolicy(TieredProfile, DefaultTierRules())
	if err != nil {
		panic(err)
	}
	patterned, err := NewPatternPolicy(PatternedProfile, DefaultPatternRules())
	if err != nil {
		panic(err)
	}
	r.Register(tiered)
	r.Register(patterned)
	return r
}

// Register adds p, replacing any policy with the same name.
func (r *Registry) Register(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name()] = p
}

// Get returns the policy registered under name.
func (r *Registry) Get(name string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Names returns the registered profile names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.policies))
}

// Policies returns the registered policies sorted by name.
func (r *Registry) Policies() []Policy {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Policy, 0, len(names))
	for _, name := range names {
		if p, ok := r.policies[name]; ok {
			out = append(out, p)
		}
	}
	return out
}
