package ability

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/castbot/internal/client"
)

// Tracking names the status-tracking policy attached to an entry.
type Tracking string

const (
	TrackNone           Tracking = "none"
	TrackBuff           Tracking = "buff"
	TrackDebuff         Tracking = "debuff"
	TrackAlwaysInactive Tracking = "always_inactive"
	TrackRage           Tracking = "rage"
)

// Valid reports whether t is a known policy. The empty string means none.
func (t Tracking) Valid() bool {
	switch t {
	case "", TrackNone, TrackBuff, TrackDebuff, TrackAlwaysInactive, TrackRage:
		return true
	}
	return false
}

// Level is one stage of a stacking (rage) ability.
type Level struct {
	Candidates []*Aliased `yaml:"candidates"`
}

// Entry is one tracked ability or item of a class profile.
//
// Candidates are ordered most desirable first. Tracks lists the effect names
// to look for in the status feed when they differ from the ability names, as
// for a cure that watches the poison it removes.
type Entry struct {
	ID         string     `yaml:"id"`
	Kind       Kind       `yaml:"kind"`
	Tracker    Tracking   `yaml:"tracker"`
	Consumable bool       `yaml:"consumable"`
	Tracks     []string   `yaml:"tracks"`
	Candidates []*Aliased `yaml:"candidates"`
	Levels     []*Level   `yaml:"levels"`
}

// Validate checks the entry's required fields.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return errors.New("entry has empty id")
	}
	var errs []string
	if !e.Kind.Valid() {
		errs = append(errs, fmt.Sprintf("kind must be one of [spell, item, mount], got %q", e.Kind))
	}
	if !e.Tracker.Valid() {
		errs = append(errs, fmt.Sprintf("tracker %q is not a known policy", e.Tracker))
	}
	if e.Tracker == TrackRage {
		if len(e.Levels) == 0 {
			errs = append(errs, "rage tracker requires at least one level")
		}
		for i, l := range e.Levels {
			if err := validateCandidates(l.Candidates); err != nil {
				errs = append(errs, fmt.Sprintf("level %d: %v", i+1, err))
			}
		}
	} else if err := validateCandidates(e.Candidates); err != nil {
		errs = append(errs, err.Error())
	}
	if e.Consumable && !e.Kind.Contains() {
		errs = append(errs, "consumable entries must be items or mounts")
	}
	if len(errs) > 0 {
		return fmt.Errorf("entry %q: %s", e.ID, strings.Join(errs, "; "))
	}
	return nil
}

func validateCandidates(cs []*Aliased) error {
	if len(cs) == 0 {
		return errors.New("at least one candidate is required")
	}
	for i, c := range cs {
		if c == nil || len(c.Names) == 0 {
			return fmt.Errorf("candidate %d has no names", i)
		}
		for _, n := range c.Names {
			if strings.TrimSpace(n) == "" {
				return fmt.Errorf("candidate %d has an empty name", i)
			}
		}
		if c.Cost < 0 || c.Restore < 0 || c.DurationSecs < 0 || c.RechargeSecs < 0 {
			return fmt.Errorf("candidate %q has a negative attribute", c.Name())
		}
	}
	return nil
}

// Profile is the priority table for one character class.
type Profile struct {
	Class    string          `yaml:"class"`
	Resource client.Resource `yaml:"resource"`
	Entries  []*Entry        `yaml:"entries"`
}

// Validate checks the profile and every entry, reporting all violations.
//
// Postcondition: nil return guarantees a non-empty class, a valid resource,
// valid entries and unique entry IDs.
func (p *Profile) Validate() error {
	if p.Class == "" {
		return errors.New("ability.Profile: class must not be empty")
	}
	var errs []string
	if !p.Resource.Valid() {
		errs = append(errs, fmt.Sprintf("resource must be one of [health, mana, energy], got %q", p.Resource))
	}
	seen := make(map[string]struct{}, len(p.Entries))
	for _, e := range p.Entries {
		if e == nil {
			errs = append(errs, "nil entry")
			continue
		}
		if err := e.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
		if _, dup := seen[e.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate entry id %q", e.ID))
		}
		seen[e.ID] = struct{}{}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability.Profile %q: %s", p.Class, strings.Join(errs, "; "))
	}
	return nil
}

// Entry returns the entry with id, or false if the profile has none.
func (p *Profile) Entry(id string) (*Entry, bool) {
	for _, e := range p.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Registry holds every loaded Profile keyed by class. It is read-only after
// loading and may be shared between sessions.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry builds a Registry from profiles.
//
// Postcondition: returns an error if any profile is invalid or two profiles
// share a class.
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.profiles[p.Class]; dup {
			return nil, fmt.Errorf("ability.Registry: duplicate class %q", p.Class)
		}
		r.profiles[p.Class] = p
	}
	return r, nil
}

// Profile returns the profile for class, or (nil, false) if not found.
func (r *Registry) Profile(class string) (*Profile, bool) {
	p, ok := r.profiles[class]
	return p, ok
}

// Classes returns the registered class IDs in sorted order.
func (r *Registry) Classes() []string {
	out := make([]string, 0, len(r.profiles))
	for c := range r.profiles {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

// LoadDirectory reads every *.yaml file in dir as one Profile and returns a
// populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading profile dir %q: %w", dir, err)
	}
	var profiles []*Profile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return NewRegistry(profiles...)
}

// LoadFile parses a single profile file.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	var f yamlProfileFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	if f.Profile == nil {
		return nil, fmt.Errorf("parsing %q: missing top-level 'profile' key", path)
	}
	if err := f.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("validating %q: %w", path, err)
	}
	return f.Profile, nil
}
