package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/behavior"
	"github.com/cory-johannsen/castbot/internal/scripting"
)

// Dirs locates the content a run is assembled from.
type Dirs struct {
	Profiles  string
	Behaviors string
	Scripts   string // shared scripts; empty disables scripting
}

// LoadContent loads profiles and behaviors, checks every behavior against its
// class profile, and loads scripts: the shared directory into the global VM
// and each domain's own directory under the domain ID.
//
// Postcondition: on success every behavior domain fits a loaded profile.
func LoadContent(dirs Dirs, instLimit int, logger *zap.Logger) (Content, error) {
	profiles, err := ability.LoadDirectory(dirs.Profiles)
	if err != nil {
		return Content{}, fmt.Errorf("loading profiles: %w", err)
	}
	behaviors, err := behavior.Load(dirs.Behaviors)
	if err != nil {
		return Content{}, fmt.Errorf("loading behaviors: %w", err)
	}
	var errs []error
	for _, d := range behaviors.Domains() {
		p, ok := profiles.Profile(d.Class)
		if !ok {
			errs = append(errs, fmt.Errorf("behavior %q: no profile for class %q", d.ID, d.Class))
			continue
		}
		if err := d.CheckProfile(p); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Content{}, errors.Join(errs...)
	}
	logger.Info("content loaded",
		zap.Strings("classes", profiles.Classes()),
		zap.Int("behaviors", len(behaviors.Domains())),
	)

	c := Content{Profiles: profiles, Behaviors: behaviors}
	if dirs.Scripts == "" {
		logger.Info("scripting disabled")
		return c, nil
	}
	mgr := scripting.NewManager(logger, instLimit)
	if _, err := os.Stat(dirs.Scripts); err == nil {
		if err := mgr.LoadGlobal(dirs.Scripts); err != nil {
			mgr.Close()
			return Content{}, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		mgr.Close()
		return Content{}, fmt.Errorf("loading scripts: %w", err)
	}
	for _, d := range behaviors.Domains() {
		if d.Scripts == "" {
			continue
		}
		if err := mgr.Load(d.ID, d.Scripts); err != nil {
			mgr.Close()
			return Content{}, err
		}
	}
	c.Scripts = mgr
	return c, nil
}

// Close releases the content's script VMs.
func (c Content) Close() {
	if c.Scripts != nil {
		c.Scripts.Close()
	}
}
