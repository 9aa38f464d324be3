// Package behavior defines a character's top-level decision chain as data.
//
// A Domain is an ordered list of rules; the first rule that is eligible acts
// and ends the tick. Rule preconditions are evaluated as Lua hooks.
package behavior

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/game/ability"
)

// Action names the leaf rule a Rule compiles to.
type Action string

const (
	ActBuff    Action = "buff"
	ActCure    Action = "cure"
	ActHeal    Action = "heal"
	ActRestore Action = "restore"
	ActDebuff  Action = "debuff"
	ActToggle  Action = "toggle"
	ActAttack  Action = "attack"
	ActRage    Action = "rage"
)

// Targets names who a rule acts on.
type Targets string

const (
	TargetSelf     Targets = "self"
	TargetGroup    Targets = "group"
	TargetHostiles Targets = "hostiles"
)

// allowed lists the targets each action accepts; the first is the default.
var allowed = map[Action][]Targets{
	ActBuff:    {TargetSelf, TargetGroup},
	ActCure:    {TargetSelf, TargetGroup},
	ActHeal:    {TargetGroup},
	ActRestore: {TargetSelf},
	ActDebuff:  {TargetHostiles},
	ActToggle:  {TargetSelf},
	ActAttack:  {TargetHostiles},
	ActRage:    {TargetSelf},
}

// Rule is one step of a behavior chain.
//
// Precondition: Ability names an entry of the class profile.
// Precondition: Precondition is a Lua function name; empty means always applicable.
type Rule struct {
	ID           string          `yaml:"id"`
	Action       Action          `yaml:"action"`
	Ability      string          `yaml:"ability"`
	Targets      Targets         `yaml:"targets"`
	Threshold    int             `yaml:"threshold"` // percent; heal and restore only
	Resource     client.Resource `yaml:"resource"`  // restore only; defaults to health
	Flag         string          `yaml:"flag"`      // group cures: remote ally flag; defaults to Ability
	Precondition string          `yaml:"precondition"`
}

// target returns the rule's targets with the action default applied.
func (r *Rule) target() Targets {
	if r.Targets == "" {
		if ts, ok := allowed[r.Action]; ok {
			return ts[0]
		}
	}
	return r.Targets
}

func (r *Rule) flag() string {
	if r.Flag == "" {
		return r.Ability
	}
	return r.Flag
}

func (r *Rule) resource() client.Resource {
	if r.Resource == "" {
		return client.Health
	}
	return r.Resource
}

// Domain is the behavior chain for one character class.
//
// Invariant: rule IDs are unique; rules are evaluated in declaration order.
type Domain struct {
	ID          string  `yaml:"id"`
	Class       string  `yaml:"class"`
	Description string  `yaml:"description"`
	Scripts     string  `yaml:"scripts"` // script directory, relative to the domain file
	Rules       []*Rule `yaml:"rules"`
}

// Validate checks the domain's own fields.
//
// Postcondition: nil return guarantees non-empty ID and Class, at least one
// rule, unique rule IDs, known actions and targets, and thresholds in [0, 100].
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("behavior.Domain: ID must not be empty")
	}
	if d.Class == "" {
		return fmt.Errorf("behavior.Domain %q: class must not be empty", d.ID)
	}
	if len(d.Rules) == 0 {
		return fmt.Errorf("behavior.Domain %q: must have at least one rule", d.ID)
	}
	var errs []error
	seen := make(map[string]struct{}, len(d.Rules))
	for i, r := range d.Rules {
		if r == nil || r.ID == "" {
			errs = append(errs, fmt.Errorf("rule %d has empty ID", i))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate rule ID %q", r.ID))
		}
		seen[r.ID] = struct{}{}
		if r.Ability == "" {
			errs = append(errs, fmt.Errorf("rule %q: ability must not be empty", r.ID))
		}
		ts, ok := allowed[r.Action]
		if !ok {
			errs = append(errs, fmt.Errorf("rule %q: unknown action %q", r.ID, r.Action))
			continue
		}
		if !containsTarget(ts, r.target()) {
			errs = append(errs, fmt.Errorf("rule %q: action %s does not accept targets %q", r.ID, r.Action, r.Targets))
		}
		if r.Threshold < 0 || r.Threshold > 100 {
			errs = append(errs, fmt.Errorf("rule %q: threshold %d outside [0, 100]", r.ID, r.Threshold))
		}
		if r.Action == ActRestore {
			if r.Threshold == 0 {
				errs = append(errs, fmt.Errorf("rule %q: restore requires a threshold", r.ID))
			}
			if !r.resource().Valid() {
				errs = append(errs, fmt.Errorf("rule %q: unknown resource %q", r.ID, r.Resource))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("behavior.Domain %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

func containsTarget(ts []Targets, t Targets) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}

// CheckProfile verifies every rule against the class profile it will run on.
//
// Postcondition: nil return guarantees each rule names an existing entry,
// rage rules name rage entries and restore rules name consumables.
func (d *Domain) CheckProfile(p *ability.Profile) error {
	if p.Class != d.Class {
		return fmt.Errorf("behavior.Domain %q: written for class %q, profile is %q", d.ID, d.Class, p.Class)
	}
	var errs []error
	for _, r := range d.Rules {
		e, ok := p.Entry(r.Ability)
		if !ok {
			errs = append(errs, fmt.Errorf("rule %q: profile has no entry %q", r.ID, r.Ability))
			continue
		}
		if (r.Action == ActRage) != (e.Tracker == ability.TrackRage) {
			errs = append(errs, fmt.Errorf("rule %q: action %s does not fit entry %q tracked as %q", r.ID, r.Action, e.ID, e.Tracker))
		}
		if r.Action == ActRestore && !e.Consumable {
			errs = append(errs, fmt.Errorf("rule %q: restore needs a consumable entry, %q is not", r.ID, e.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("behavior.Domain %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// yamlDomainFile wraps the YAML top-level key.
type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomains reads all *.yaml files from dir and returns parsed Domains.
// A relative Scripts directory is resolved against dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("behavior.LoadDomains: reading %q: %w", dir, err)
	}
	var domains []*Domain
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("behavior.LoadDomains: reading %s: %w", e.Name(), err)
		}
		var doc yamlDomainFile
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		err = dec.Decode(&doc)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("behavior.LoadDomains: parsing %s: %w", e.Name(), err)
		}
		if doc.Domain == nil {
			return nil, fmt.Errorf("behavior.LoadDomains: %s missing top-level 'domain' key", e.Name())
		}
		if err := doc.Domain.Validate(); err != nil {
			return nil, err
		}
		if doc.Domain.Scripts != "" && !filepath.IsAbs(doc.Domain.Scripts) {
			doc.Domain.Scripts = filepath.Join(dir, doc.Domain.Scripts)
		}
		domains = append(domains, doc.Domain)
	}
	return domains, nil
}
