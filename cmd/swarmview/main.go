// Command swarmview runs a batched drone simulation and serves the
// rendered observations: as a live websocket stream, as a PNG
// snapshot, or both.
//
// Usage:
//
//	swarmview -envs 16 -drones 2 -steps 600 -addr :8080 -snapshot out.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"

	"github.com/pkg/profile"

	"github.com/gogpu/swarmstep"
	"github.com/gogpu/swarmstep/backend/cpu"
	"github.com/gogpu/swarmstep/backend/native"
	"github.com/gogpu/swarmstep/tensor"
)

func main() {
	var (
		envs        = flag.Int("envs", 16, "number of environments")
		drones      = flag.Int("drones", 1, "drones per environment")
		steps       = flag.Int("steps", 600, "simulation steps to run")
		backend     = flag.String("backend", "wgpu", "stepper backend: cpu or wgpu")
		addr        = flag.String("addr", "", "websocket listen address (empty disables streaming)")
		snapshot    = flag.String("snapshot", "", "write final observations to this PNG (empty disables)")
		seed        = flag.Uint64("seed", 1, "world generation and respawn seed")
		restitution = flag.Float64("restitution", 0.5, "collision restitution in [0, 1]")
		fov         = flag.Float64("fov", 130, "render field of view in degrees")
		every       = flag.Int("every", 4, "render and stream every N steps")
		profileMode = flag.String("profile", "", "write a profile: cpu or mem")
		verbose     = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()

	if err := run(*envs, *drones, *steps, *backend, *addr, *snapshot, *seed,
		float32(*restitution), float32(*fov), *every, *profileMode, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "swarmview:", err)
		os.Exit(1)
	}
}

func run(envs, dronesPerEnv, steps int, backend, addr, snapshot string, seed uint64,
	restitution, fov float32, every int, profileMode string, verbose bool,
) error {
	switch profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if verbose {
		swarmstep.SetLogger(log)
	}

	if err := swarmstep.Configure(swarmstep.Config{
		Restitution: restitution,
		DroneCount:  dronesPerEnv,
		FOV:         fov,
	}); err != nil {
		return err
	}

	switch backend {
	case "cpu":
		if err := swarmstep.RegisterStepper(cpu.New(cpu.WithSeed(seed))); err != nil {
			return err
		}
	case "wgpu":
		if err := swarmstep.RegisterStepper(native.New(cpu.WithSeed(seed))); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}
	stepper := swarmstep.ActiveStepper()
	defer stepper.Close()

	rng := rand.New(rand.NewPCG(seed, seed<<1|1))
	scene, respawns, err := genWorld(rng, envs)
	if err != nil {
		return fmt.Errorf("generate world: %w", err)
	}
	droneState, err := swarmstep.EmptyDrones(envs)
	if err != nil {
		return err
	}
	movement, err := swarmstep.ZeroMovement(droneState)
	if err != nil {
		return err
	}

	if err := stepper.Bake(scene, 2); err != nil {
		return fmt.Errorf("bake: %w", err)
	}

	// Place every drone before the first step.
	allReset := make([]uint8, envs)
	for i := range allReset {
		allReset[i] = 1
	}
	resetAll, err := tensor.FromSlice(allReset, envs)
	if err != nil {
		return err
	}
	if err := stepper.Respawn(resetAll, respawns, droneState); err != nil {
		return fmt.Errorf("respawn: %w", err)
	}

	var viewers *hub
	if addr != "" {
		viewers = newHub(log)
		defer viewers.Close()
		mux := http.NewServeMux()
		mux.Handle("/ws", viewers)
		go func() {
			log.Info("streaming observations", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Warn("stream server stopped", "err", err)
			}
		}()
	}

	var last *swarmstep.Render
	for step := range steps {
		randomCommands(rng, movement)
		if err := stepper.Physics(movement, scene, droneState); err != nil {
			return fmt.Errorf("physics at step %d: %w", step, err)
		}
		if every > 0 && step%every == 0 {
			last, err = stepper.Render(droneState, scene)
			if err != nil {
				return fmt.Errorf("render at step %d: %w", step, err)
			}
			if viewers != nil {
				viewers.Broadcast(&frame{
					Step:   step,
					Envs:   envs,
					Drones: dronesPerEnv,
					Width:  swarmstep.ResWidth,
					Screen: last.Screen.Data(),
				})
			}
		}
	}

	if snapshot != "" {
		if last == nil {
			last, err = stepper.Render(droneState, scene)
			if err != nil {
				return fmt.Errorf("final render: %w", err)
			}
		}
		if err := writeSnapshot(snapshot, last); err != nil {
			return err
		}
		log.Info("snapshot written", "path", snapshot)
	}
	return nil
}

// randomCommands fills the movement bundle with a fresh random policy
// step: each command uniform in {-1, 0, +1}.
func randomCommands(rng *rand.Rand, m *swarmstep.Movement) {
	for _, view := range []tensor.View[int32]{m.Mesial, m.Lateral, m.Yaw} {
		data := view.Data()
		for i := range data {
			data[i] = int32(rng.IntN(3)) - 1
		}
	}
}
