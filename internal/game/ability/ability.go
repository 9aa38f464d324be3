// Package ability holds the static ability and item definitions a character
// may resolve against: name variants, costs and timing attributes, grouped into
// per-class priority tables loaded from YAML.
package ability

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Kind selects how an ability's names are matched against owned entries.
type Kind string

const (
	// Spell names must match an owned ability exactly.
	Spell Kind = "spell"
	// Item names match when contained in an owned item's display name.
	Item Kind = "item"
	// Mount names match like items.
	Mount Kind = "mount"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case Spell, Item, Mount:
		return true
	}
	return false
}

// Contains reports whether names of this kind match by containment.
func (k Kind) Contains() bool {
	return k == Item || k == Mount
}

// Aliased is one ability or item under all of its known name variants.
//
// Invariant: every entry in Names refers to the same in-game effect.
// Values are immutable once loaded.
type Aliased struct {
	Names []string `yaml:"names"`
	Cost  int      `yaml:"cost"`
	// DurationSecs is how long the effect lasts, in seconds.
	DurationSecs float64 `yaml:"duration"`
	// RechargeSecs is the secondary delay before the ability can be used again.
	RechargeSecs float64 `yaml:"recharge"`
	Restore      int     `yaml:"restore"`
}

// Name returns the preferred display name (the first variant).
func (a *Aliased) Name() string {
	if len(a.Names) == 0 {
		return ""
	}
	return a.Names[0]
}

// Duration returns DurationSecs as a time.Duration.
func (a *Aliased) Duration() time.Duration {
	return seconds(a.DurationSecs)
}

// Recharge returns RechargeSecs as a time.Duration.
func (a *Aliased) Recharge() time.Duration {
	return seconds(a.RechargeSecs)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

var apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "")

// Normalize folds case and removes apostrophe variants so that
// "Ancestor's Touch" and "ANCESTORS TOUCH" compare equal.
func Normalize(s string) string {
	return strings.TrimSpace(cases.Fold().String(apostrophes.Replace(s)))
}

// Matches reports whether display matches any of names. When contains is true
// a variant contained in display counts as a match; otherwise the normalized
// strings must be equal.
func Matches(display string, names []string, contains bool) bool {
	d := Normalize(display)
	if d == "" {
		return false
	}
	for _, n := range names {
		v := Normalize(n)
		if v == "" {
			continue
		}
		if d == v || (contains && strings.Contains(d, v)) {
			return true
		}
	}
	return false
}
