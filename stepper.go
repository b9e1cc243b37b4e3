package swarmstep

import (
	"errors"
	"sync"

	"github.com/gogpu/swarmstep/tensor"
)

// ErrNoStepper is returned when an operation needs a stepper but none
// has been registered.
var ErrNoStepper = errors.New("swarmstep: no stepper registered")

// Stepper is the boundary to the external simulation kernels. The core
// hands a stepper validated views and accessors; the stepper hands back
// raw buffers that must independently pass the same validation before
// reuse.
//
// Implementations live in backend packages (backend/cpu, backend/native)
// and are registered process-wide via RegisterStepper.
type Stepper interface {
	// Name returns the stepper name (e.g. "cpu", "wgpu").
	Name() string

	// Init acquires the stepper's resources. Called once during
	// registration; a failing Init prevents registration.
	Init() error

	// Close releases the stepper's resources.
	Close()

	// Bake precomputes scene illumination into the scene's baked
	// buffer, with dims selecting the baking dimensionality.
	Bake(scene *Scene, dims int) error

	// Respawn re-places the drones of every environment whose reset
	// flag is nonzero, drawing positions from the respawn zones.
	// Drones is mutated in place.
	Respawn(reset tensor.View[uint8], respawns *Respawns, drones *Drones) error

	// Physics advances the drones one step under the given movement
	// command, colliding against the scene's wall segments. Drones is
	// mutated in place.
	Physics(movement *Movement, scene *Scene, drones *Drones) error

	// Render produces one observation frame per drone.
	Render(drones *Drones, scene *Scene) (*Render, error)
}

var (
	stepperMu sync.RWMutex
	stepper   Stepper
)

// RegisterStepper installs a stepper as the process-wide active one.
//
// Only one stepper can be active; subsequent calls replace (and Close)
// the previous one. The stepper's Init is called during registration;
// if it fails, the previous stepper stays active and the error is
// returned.
func RegisterStepper(s Stepper) error {
	if s == nil {
		return errors.New("swarmstep: stepper must not be nil")
	}
	if err := s.Init(); err != nil {
		return err
	}
	propagateLogger(s, Logger())

	stepperMu.Lock()
	old := stepper
	stepper = s
	stepperMu.Unlock()

	if old != nil {
		old.Close()
	}
	Logger().Info("swarmstep: stepper registered", "name", s.Name())
	return nil
}

// ActiveStepper returns the registered stepper, or nil if none.
func ActiveStepper() Stepper {
	stepperMu.RLock()
	s := stepper
	stepperMu.RUnlock()
	return s
}
