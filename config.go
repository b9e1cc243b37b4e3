package swarmstep

import (
	"fmt"
	"sync/atomic"
)

// Config holds the process-wide simulation parameters. The core only
// stores and forwards these values; interpreting them is the steppers'
// business (restitution shapes collision response in the physics step,
// drone count sizes allocations, FOV shapes the render step).
type Config struct {
	// Restitution is the energy fraction kept on collision, in [0, 1].
	Restitution float32

	// DroneCount is the number of drones per environment, >= 1.
	DroneCount int

	// FOV is the render field of view in degrees, in (0, 360).
	FOV float32
}

// DefaultConfig returns the configuration used until Configure is
// called.
func DefaultConfig() Config {
	return Config{
		Restitution: 0.5,
		DroneCount:  1,
		FOV:         130,
	}
}

var configPtr atomic.Pointer[Config]

func init() {
	cfg := DefaultConfig()
	configPtr.Store(&cfg)
}

// Configure validates and installs the process-wide configuration.
// Call it once at startup before registering a stepper; steppers read
// the configuration at each step, so late changes affect subsequent
// steps only.
func Configure(cfg Config) error {
	if cfg.Restitution < 0 || cfg.Restitution > 1 {
		return fmt.Errorf("swarmstep: restitution %v outside [0, 1]", cfg.Restitution)
	}
	if cfg.DroneCount < 1 {
		return fmt.Errorf("swarmstep: drone count %d, need at least 1", cfg.DroneCount)
	}
	if cfg.FOV <= 0 || cfg.FOV >= 360 {
		return fmt.Errorf("swarmstep: field of view %v outside (0, 360)", cfg.FOV)
	}
	configPtr.Store(&cfg)
	Logger().Info("swarmstep: configured",
		"restitution", cfg.Restitution,
		"drones", cfg.DroneCount,
		"fov", cfg.FOV)
	return nil
}

// CurrentConfig returns the active configuration.
func CurrentConfig() Config {
	return *configPtr.Load()
}
