package native

import (
	"strings"
	"testing"

	"github.com/gogpu/swarmstep"
	"github.com/gogpu/swarmstep/tensor"
)

func TestStepperName(t *testing.T) {
	if got := New().Name(); got != "wgpu" {
		t.Errorf("Name() = %q, want \"wgpu\"", got)
	}
}

func TestShaderSourcesDeclareEntryPoint(t *testing.T) {
	for _, src := range []struct {
		name, wgsl string
	}{
		{"physics", physicsShaderSource},
		{"respawn", respawnShaderSource},
	} {
		if !strings.Contains(src.wgsl, "fn main(") {
			t.Errorf("%s shader has no main entry point", src.name)
		}
		if !strings.Contains(src.wgsl, "@workgroup_size(64)") {
			t.Errorf("%s shader workgroup size does not match dispatch math", src.name)
		}
	}
}

func TestStatePackingRoundTrip(t *testing.T) {
	d, err := swarmstep.NewDrones(
		mustView(t, []float32{10, 20, 30, 40, 50, 60}, 3, 2),
		mustView(t, seq(12), 3, 2, 2),
		mustView(t, []float32{1, 2, 3, 4, 5, 6}, 3, 2),
		mustView(t, seq(12), 3, 2, 2),
	)
	if err != nil {
		t.Fatal(err)
	}

	state := packState(d)
	if len(state) != 6*stateStride {
		t.Fatalf("packed state has %d floats, want %d", len(state), 6*stateStride)
	}

	// Zero the views, unpack, and expect the originals back.
	for _, v := range []tensor.View[float32]{d.Angles, d.Positions, d.AngMomenta, d.Momenta} {
		data := v.Data()
		for i := range data {
			data[i] = 0
		}
	}
	unpackState(d, state)

	if d.Angles.Data()[3] != 40 {
		t.Errorf("angle[3] = %v after round trip, want 40", d.Angles.Data()[3])
	}
	if d.AngMomenta.Data()[5] != 6 {
		t.Errorf("angmom[5] = %v after round trip, want 6", d.AngMomenta.Data()[5])
	}
	pos := d.Positions.Data()
	for i, want := range seq(12) {
		if pos[i] != want {
			t.Fatalf("positions[%d] = %v after round trip, want %v", i, pos[i], want)
		}
	}
}

func TestPackCommandsInterleaves(t *testing.T) {
	mv, err := swarmstep.NewMovement(
		mustViewI(t, []int32{1, 2}, 1, 2),
		mustViewI(t, []int32{3, 4}, 1, 2),
		mustViewI(t, []int32{5, 6}, 1, 2),
	)
	if err != nil {
		t.Fatal(err)
	}
	got := packCommands(mv)
	want := []int32{1, 3, 5, 2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("packCommands = %v, want %v", got, want)
		}
	}
}

func TestPackZonesLayout(t *testing.T) {
	widths, err := tensor.FromSlice([]int32{1, 2}, 2)
	if err != nil {
		t.Fatal(err)
	}
	r, err := swarmstep.BuildRespawns(
		mustView(t, []float32{1, 2, 10, 20, 100, 200}, 3, 1, 2),
		mustView(t, []float32{3, 30, 300}, 3, 1),
		mustView(t, []float32{4, 5, 40, 50, 400, 500}, 3, 2),
		mustView(t, []float32{6, 7, 60, 70, 600, 700}, 3, 2),
		widths,
	)
	if err != nil {
		t.Fatal(err)
	}

	got := packZones(r)
	want := []float32{
		1, 2, 3, 4, 5, 6, 7,
		10, 20, 30, 40, 50, 60, 70,
		100, 200, 300, 400, 500, 600, 700,
	}
	if len(got) != len(want) {
		t.Fatalf("packZones produced %d floats, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("packZones[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExpandFlags(t *testing.T) {
	got := expandFlags([]uint8{0, 1, 255})
	if got[0] != 0 || got[1] != 1 || got[2] != 255 {
		t.Errorf("expandFlags = %v", got)
	}
}

func TestFallbackWithoutGPU(t *testing.T) {
	// A stepper that never ran Init has no device; every operation must
	// still work through the CPU fallback.
	s := New()
	if err := s.fallback.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.fallback.Close()

	d, err := swarmstep.EmptyDrones(1)
	if err != nil {
		t.Fatal(err)
	}
	scene := boxScene(t)
	mv, err := swarmstep.ZeroMovement(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Physics(mv, scene, d); err != nil {
		t.Errorf("Physics without GPU: %v", err)
	}
	if _, err := s.Render(d, scene); err != nil {
		t.Errorf("Render without GPU: %v", err)
	}
	if err := s.Bake(scene, 2); err != nil {
		t.Errorf("Bake without GPU: %v", err)
	}
}

func boxScene(t *testing.T) *swarmstep.Scene {
	t.Helper()
	lines := mustView(t, []float32{
		-5, -5, 5, -5,
		5, -5, 5, 5,
		5, 5, -5, 5,
		-5, 5, -5, -5,
	}, 4, 2, 2)
	lineW := mustViewI(t, []int32{4}, 1)
	lights := mustView(t, []float32{0, 0, 1}, 1, 3)
	lightW := mustViewI(t, []int32{1}, 1)
	textures := tensor.Ones[float32](4, 3)
	texW := mustViewI(t, []int32{4}, 1)
	frame := mustView(t, []float32{-0.2, 0, 0.2, 0}, 1, 2, 2)
	s, err := swarmstep.NewScene(lights, lightW, lines, lineW, textures, texW, frame)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustView(t *testing.T, data []float32, shape ...int) tensor.View[float32] {
	t.Helper()
	v, err := tensor.FromSlice(data, shape...)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func mustViewI(t *testing.T, data []int32, shape ...int) tensor.View[int32] {
	t.Helper()
	v, err := tensor.FromSlice(data, shape...)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func seq(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i)
	}
	return out
}
