package behavior

import (
	"fmt"
	"sort"
)

// Registry indexes Domains by class.
//
// Invariant: each class is registered at most once.
type Registry struct {
	domains map[string]*Domain
}

// NewRegistry returns a Registry holding domains.
//
// Postcondition: returns error on class collision.
func NewRegistry(domains ...*Domain) (*Registry, error) {
	r := &Registry{domains: make(map[string]*Domain, len(domains))}
	for _, d := range domains {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register stores d under its class.
//
// Precondition: d must not be nil.
// Postcondition: returns error on class collision.
func (r *Registry) Register(d *Domain) error {
	if prev, exists := r.domains[d.Class]; exists {
		return fmt.Errorf("behavior.Registry: class %q already has domain %q", d.Class, prev.ID)
	}
	r.domains[d.Class] = d
	return nil
}

// DomainFor returns the domain for class, or false if none is registered.
func (r *Registry) DomainFor(class string) (*Domain, bool) {
	d, ok := r.domains[class]
	return d, ok
}

// Load reads every domain in dir into a Registry.
func Load(dir string) (*Registry, error) {
	ds, err := LoadDomains(dir)
	if err != nil {
		return nil, err
	}
	return NewRegistry(ds...)
}

// Domains returns every registered domain, sorted by class.
func (r *Registry) Domains() []*Domain {
	out := make([]*Domain, 0, len(r.domains))
	for _, d := range r.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}
