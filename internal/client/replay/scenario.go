// Package replay drives the client collaborators from a scripted scenario so
// behavior chains can be dry-run without a game client.
//
// A Scenario describes the character, its group and a list of frames; each
// frame changes the observable state at a given tick. A Recorder stands in
// for the input injector and keeps every send for inspection.
package replay

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/castbot/internal/client"
)

// DefaultInterval is the tick interval used when a scenario names none.
const DefaultInterval = 500 * time.Millisecond

// Epoch is the manual-clock start of every replay.
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Meter is a [current, max] pair.
type Meter [2]int

// AllySpec declares a group member.
type AllySpec struct {
	Name      string                    `yaml:"name"`
	Select    string                    `yaml:"select"`
	Local     bool                      `yaml:"local"`
	Resources map[client.Resource]Meter `yaml:"resources"`
}

// HostileSpec declares a hostile in range.
type HostileSpec struct {
	Name    string `yaml:"name"`
	Select  string `yaml:"select"`
	Effects string `yaml:"effects"`
}

// AllyFrame changes one ally. Health applies to remote allies; Resources
// and Effects to local ones.
type AllyFrame struct {
	Health    *Meter                    `yaml:"health"`
	Resources map[client.Resource]Meter `yaml:"resources"`
	Effects   *string                   `yaml:"effects"`
	Flags     map[string]bool           `yaml:"flags"`
}

// Frame is the set of changes applied at tick At. Absent fields leave the
// state unchanged; Hostiles, when present, replaces the hostile list.
type Frame struct {
	At        int                       `yaml:"at"`
	Resources map[client.Resource]Meter `yaml:"resources"`
	Effects   *string                   `yaml:"effects"`
	Abilities []client.Owned            `yaml:"abilities"`
	Items     []client.Owned            `yaml:"items"`
	Allies    map[string]AllyFrame      `yaml:"allies"`
	Hostiles  *[]HostileSpec            `yaml:"hostiles"`
}

// Scenario is a scripted run of one character.
type Scenario struct {
	Name      string         `yaml:"name"`
	Class     string         `yaml:"class"`
	Character string         `yaml:"character"`
	Select    string         `yaml:"select"` // the character's own key in the group
	Interval  time.Duration  `yaml:"interval"`
	Ticks     int            `yaml:"ticks"`
	Abilities []client.Owned `yaml:"abilities"`
	Items     []client.Owned `yaml:"items"`
	Allies    []AllySpec     `yaml:"allies"`
	Frames    []Frame        `yaml:"frames"`
	Expect    []Sent         `yaml:"expect"`
}

// Validate checks the scenario and reports every violation.
//
// Postcondition: nil return guarantees non-empty Name, Class and Character,
// Ticks > 0, unique ally names, known resources and frames inside the run
// that reference declared allies only.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("replay.Scenario: name must not be empty")
	}
	var errs []error
	if s.Class == "" {
		errs = append(errs, errors.New("class must not be empty"))
	}
	if s.Character == "" {
		errs = append(errs, errors.New("character must not be empty"))
	}
	if s.Ticks <= 0 {
		errs = append(errs, fmt.Errorf("ticks must be > 0, got %d", s.Ticks))
	}
	if s.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval must not be negative, got %s", s.Interval))
	}
	allies := make(map[string]bool, len(s.Allies))
	for _, a := range s.Allies {
		if a.Name == "" || a.Name == s.Character {
			errs = append(errs, fmt.Errorf("ally name %q is empty or names the character", a.Name))
			continue
		}
		if _, dup := allies[a.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate ally %q", a.Name))
		}
		allies[a.Name] = a.Local
		errs = append(errs, checkResources("ally "+a.Name, a.Resources)...)
	}
	for i, f := range s.Frames {
		where := fmt.Sprintf("frame %d", i)
		if f.At < 0 || f.At >= s.Ticks {
			errs = append(errs, fmt.Errorf("%s: at %d outside [0, %d)", where, f.At, s.Ticks))
		}
		errs = append(errs, checkResources(where, f.Resources)...)
		for name, af := range f.Allies {
			local, ok := allies[name]
			if !ok {
				errs = append(errs, fmt.Errorf("%s: unknown ally %q", where, name))
				continue
			}
			if !local && (af.Resources != nil || af.Effects != nil) {
				errs = append(errs, fmt.Errorf("%s: remote ally %q has no readable state", where, name))
			}
			errs = append(errs, checkResources(where+" ally "+name, af.Resources)...)
		}
	}
	for i, e := range s.Expect {
		if len(e.Keys) == 0 {
			errs = append(errs, fmt.Errorf("expect %d: keys must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("replay.Scenario %q: %w", s.Name, errors.Join(errs...))
	}
	return nil
}

func checkResources(where string, rs map[client.Resource]Meter) []error {
	var errs []error
	for r, m := range rs {
		if !r.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown resource %q", where, r))
		}
		if m[0] < 0 || m[1] < 0 {
			errs = append(errs, fmt.Errorf("%s: negative %s meter", where, r))
		}
	}
	return errs
}

// Step returns the scenario's tick interval with the default applied.
func (s *Scenario) Step() time.Duration {
	if s.Interval == 0 {
		return DefaultInterval
	}
	return s.Interval
}

// yamlScenarioFile wraps the YAML top-level key.
type yamlScenarioFile struct {
	Scenario *Scenario `yaml:"scenario"`
}

// Load reads and validates the scenario at path. Frames are sorted by tick,
// keeping file order within a tick.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay.Load: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var doc yamlScenarioFile
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("replay.Load: parsing %s: %w", path, err)
	}
	if doc.Scenario == nil {
		return nil, fmt.Errorf("replay.Load: %s missing top-level 'scenario' key", path)
	}
	if err := doc.Scenario.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(doc.Scenario.Frames, func(i, j int) bool {
		return doc.Scenario.Frames[i].At < doc.Scenario.Frames[j].At
	})
	return doc.Scenario, nil
}
