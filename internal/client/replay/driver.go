package replay

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client"
)

// DefaultSelect is the character's own group key when a scenario names none.
const DefaultSelect = "F1"

// Driver owns the in-memory client state of one scenario and applies its
// frames tick by tick.
//
// It is not safe for concurrent use; the runner's tick owns it.
type Driver struct {
	Self   *client.State
	Roster *client.Roster

	// OnLeave, when set, is called for every hostile a frame removes.
	OnLeave func(id uuid.UUID)

	sc     *Scenario
	logger *zap.Logger
	allies map[string]*client.Ally
	states map[string]*client.State
	next   int
}

// NewDriver builds the character's state, its group (the character first,
// as a local ally) and an empty hostile list from sc.
//
// Precondition: sc must be valid; logger must be non-nil.
func NewDriver(sc *Scenario, logger *zap.Logger) *Driver {
	d := &Driver{
		Self:   client.NewState(),
		sc:     sc,
		logger: logger.With(zap.String("scenario", sc.Name)),
		allies: make(map[string]*client.Ally, len(sc.Allies)+1),
		states: make(map[string]*client.State, len(sc.Allies)+1),
	}
	d.Self.SetAbilities(sc.Abilities)
	d.Self.SetItems(sc.Items)

	sel := sc.Select
	if sel == "" {
		sel = DefaultSelect
	}
	self := client.NewLocalAlly(sc.Character, sel, d.Self)
	d.allies[sc.Character] = self
	d.states[sc.Character] = d.Self
	group := []*client.Ally{self}
	for _, spec := range sc.Allies {
		var a *client.Ally
		if spec.Local {
			st := client.NewState()
			setResources(st, spec.Resources)
			a = client.NewLocalAlly(spec.Name, spec.Select, st)
			d.states[spec.Name] = st
		} else {
			a = client.NewAlly(spec.Name, spec.Select)
		}
		d.allies[spec.Name] = a
		group = append(group, a)
	}
	d.Roster = client.NewRoster(group, client.NewHostileList())
	return d
}

func setResources(st *client.State, rs map[client.Resource]Meter) {
	for r, m := range rs {
		st.SetResource(r, m[0], m[1])
	}
}

// State returns the readable state of a local group member, or nil.
func (d *Driver) State(name string) *client.State {
	return d.states[name]
}

// Apply applies every not yet applied frame whose tick is at most tick.
func (d *Driver) Apply(tick int) {
	for d.next < len(d.sc.Frames) && d.sc.Frames[d.next].At <= tick {
		d.apply(&d.sc.Frames[d.next])
		d.next++
	}
}

// Done reports whether every frame has been applied.
func (d *Driver) Done() bool { return d.next >= len(d.sc.Frames) }

func (d *Driver) apply(f *Frame) {
	setResources(d.Self, f.Resources)
	if f.Effects != nil {
		d.Self.SetEffects(*f.Effects)
	}
	if f.Abilities != nil {
		d.Self.SetAbilities(f.Abilities)
	}
	if f.Items != nil {
		d.Self.SetItems(f.Items)
	}
	for name, af := range f.Allies {
		a := d.allies[name]
		if af.Health != nil {
			a.SetHealth(af.Health[0], af.Health[1])
		}
		if st := d.states[name]; st != nil {
			setResources(st, af.Resources)
			if af.Effects != nil {
				st.SetEffects(*af.Effects)
			}
		}
		for k, on := range af.Flags {
			a.SetFlag(k, on)
		}
	}
	if f.Hostiles != nil {
		d.replaceHostiles(*f.Hostiles)
	}
	d.logger.Debug("frame applied", zap.Int("at", f.At))
}

// replaceHostiles installs specs as the hostile list. Hostiles whose name
// is still present keep their identity so per-target trackers survive.
func (d *Driver) replaceHostiles(specs []HostileSpec) {
	list := d.Roster.Hostiles
	byName := make(map[string]*client.Hostile, list.Len())
	for i := 0; i < list.Len(); i++ {
		h := list.At(i)
		byName[h.Name] = h
	}
	kept := make(map[uuid.UUID]bool, len(specs))
	next := make([]*client.Hostile, 0, len(specs))
	for _, spec := range specs {
		h, ok := byName[spec.Name]
		if !ok || kept[h.ID] {
			h = client.NewHostile(spec.Name, spec.Select)
		}
		h.SelectKey = spec.Select
		h.SetEffects(spec.Effects)
		kept[h.ID] = true
		next = append(next, h)
	}
	for i := list.Len() - 1; i >= 0; i-- {
		h := list.At(i)
		list.Remove(h.ID)
		if !kept[h.ID] && d.OnLeave != nil {
			d.OnLeave(h.ID)
		}
	}
	for _, h := range next {
		list.Add(h)
	}
}
