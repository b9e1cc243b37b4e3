package swarmstep

import (
	"fmt"

	"github.com/gogpu/swarmstep/ragged"
	"github.com/gogpu/swarmstep/tensor"
)

// Scene bundles the static geometry of every environment. Groups are
// environments throughout:
//
//   - Lights:   [N, 3] rows of (x, y, intensity)
//   - Lines:    [N, 2, 2] wall segments, two endpoints each
//   - Textures: [N, 3] texel colors along the walls
//   - Baked:    [N] per-texel illumination, same widths as Textures
//   - Frame:    [F, 2, 2] the drone silhouette segments, shared by all
//     environments
//
// Baked is derived at construction: it always has exactly the texture
// widths and starts life filled with a constant placeholder until the
// external baking kernel overwrites it.
type Scene struct {
	Lights   *ragged.Array[float32]
	Lines    *ragged.Array[float32]
	Textures *ragged.Array[float32]
	Baked    *ragged.Array[float32]
	Frame    tensor.View[float32]
}

// NewScene builds a Scene from raw per-environment geometry. Widths
// views pair with their value views positionally; starts and inverse
// indices are derived inside the ragged constructors. The environment
// counts of the three ragged fields must agree.
func NewScene(
	lights tensor.View[float32], lightWidths tensor.View[int32],
	lines tensor.View[float32], lineWidths tensor.View[int32],
	textures tensor.View[float32], texWidths tensor.View[int32],
	frame tensor.View[float32],
) (*Scene, error) {
	if err := wantRank("scene lights", lights, 2); err != nil {
		return nil, err
	}
	if err := wantRank("scene lines", lines, 3); err != nil {
		return nil, err
	}
	if err := wantRank("scene textures", textures, 2); err != nil {
		return nil, err
	}
	if err := wantRank("scene frame", frame, 3); err != nil {
		return nil, err
	}

	lightsR, err := ragged.New(lights, lightWidths)
	if err != nil {
		return nil, fmt.Errorf("scene lights: %w", err)
	}
	linesR, err := ragged.New(lines, lineWidths)
	if err != nil {
		return nil, fmt.Errorf("scene lines: %w", err)
	}
	texR, err := ragged.New(textures, texWidths)
	if err != nil {
		return nil, fmt.Errorf("scene textures: %w", err)
	}

	// Placeholder illumination: all ones until the baking kernel runs.
	baked := tensor.Ones[float32](textures.Size(0))
	bakedR, err := ragged.New(baked, texWidths)
	if err != nil {
		return nil, fmt.Errorf("scene baked: %w", err)
	}

	s := &Scene{
		Lights:   lightsR,
		Lines:    linesR,
		Textures: texR,
		Baked:    bakedR,
		Frame:    frame,
	}
	if err := s.checkEnvCounts(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkEnvCounts verifies that all ragged fields agree on the number
// of environments.
func (s *Scene) checkEnvCounts() error {
	n := s.Lights.Groups()
	if s.Lines.Groups() != n || s.Textures.Groups() != n || s.Baked.Groups() != n {
		return fmt.Errorf("%w: scene group counts lights=%d lines=%d textures=%d baked=%d",
			ErrConsistency, n, s.Lines.Groups(), s.Textures.Groups(), s.Baked.Groups())
	}
	return nil
}

// Envs returns the number of environments in the scene.
func (s *Scene) Envs() int { return s.Lights.Groups() }

// wantRank checks a view's rank against an aggregate's expectation.
func wantRank[T tensor.Elem](what string, v tensor.View[T], rank int) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %s view is zero", tensor.ErrValidation, what)
	}
	if v.Rank() != rank {
		return fmt.Errorf("%w: %s has rank %d, want %d",
			tensor.ErrRankMismatch, what, v.Rank(), rank)
	}
	return nil
}
