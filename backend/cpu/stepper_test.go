package cpu

import (
	"math"
	"testing"

	"github.com/gogpu/swarmstep"
	"github.com/gogpu/swarmstep/tensor"
)

// boxWorld builds identical square-room environments: four walls around
// [-5, 5]^2, one light at the center, eight texels per environment, one
// respawn zone covering most of the room, and one silhouette segment
// per drone.
func boxWorld(t *testing.T, envs int) (*swarmstep.Scene, *swarmstep.Drones, *swarmstep.Respawns) {
	t.Helper()

	box := []float32{
		-5, -5, 5, -5,
		5, -5, 5, 5,
		5, 5, -5, 5,
		-5, 5, -5, -5,
	}
	var lines, lights, textures []float32
	var lineW, lightW, texW []int32
	for range envs {
		lines = append(lines, box...)
		lineW = append(lineW, 4)
		lights = append(lights, 0, 0, 1)
		lightW = append(lightW, 1)
		for range 8 {
			textures = append(textures, 1, 1, 1)
		}
		texW = append(texW, 8)
	}

	linesV, err := tensor.FromSlice(lines, envs*4, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	lineWV, err := tensor.FromSlice(lineW, envs)
	if err != nil {
		t.Fatal(err)
	}
	lightsV, err := tensor.FromSlice(lights, envs, 3)
	if err != nil {
		t.Fatal(err)
	}
	lightWV, err := tensor.FromSlice(lightW, envs)
	if err != nil {
		t.Fatal(err)
	}
	texV, err := tensor.FromSlice(textures, envs*8, 3)
	if err != nil {
		t.Fatal(err)
	}
	texWV, err := tensor.FromSlice(texW, envs)
	if err != nil {
		t.Fatal(err)
	}
	frameV, err := tensor.FromSlice([]float32{-0.2, 0, 0.2, 0}, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	scene, err := swarmstep.NewScene(lightsV, lightWV, linesV, lineWV, texV, texWV, frameV)
	if err != nil {
		t.Fatal(err)
	}

	var centers, radii, lowers, uppers []float32
	var zoneW []int32
	for range envs {
		centers = append(centers, 0, 0)
		radii = append(radii, 10)
		lowers = append(lowers, -4, -4)
		uppers = append(uppers, 4, 4)
		zoneW = append(zoneW, 1)
	}
	centersV, err := tensor.FromSlice(centers, envs, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	radiiV, err := tensor.FromSlice(radii, envs, 1)
	if err != nil {
		t.Fatal(err)
	}
	lowersV, err := tensor.FromSlice(lowers, envs, 2)
	if err != nil {
		t.Fatal(err)
	}
	uppersV, err := tensor.FromSlice(uppers, envs, 2)
	if err != nil {
		t.Fatal(err)
	}
	zoneWV, err := tensor.FromSlice(zoneW, envs)
	if err != nil {
		t.Fatal(err)
	}
	respawns, err := swarmstep.BuildRespawns(centersV, radiiV, lowersV, uppersV, zoneWV)
	if err != nil {
		t.Fatal(err)
	}

	drones, err := swarmstep.EmptyDrones(envs)
	if err != nil {
		t.Fatal(err)
	}
	return scene, drones, respawns
}

func newStepper(t *testing.T) *Stepper {
	t.Helper()
	s := New(WithSeed(42), WithWorkers(2))
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestRespawnTouchesOnlyFlaggedEnvs(t *testing.T) {
	s := newStepper(t)
	_, drones, respawns := boxWorld(t, 2)

	// Sentinel state in both environments.
	pos := drones.Positions.Data()
	for i := range pos {
		pos[i] = 99
	}
	drones.Angles.Data()[0] = 123
	drones.Angles.Data()[1] = 123

	reset, err := tensor.FromSlice([]uint8{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Respawn(reset, respawns, drones); err != nil {
		t.Fatal(err)
	}

	if pos[0] == 99 && pos[1] == 99 {
		t.Error("flagged environment 0 was not respawned")
	}
	if pos[2] != 99 || pos[3] != 99 || drones.Angles.Data()[1] != 123 {
		t.Error("unflagged environment 1 was modified")
	}

	// Respawned drones land inside the zone.
	d := math.Hypot(float64(pos[0]), float64(pos[1]))
	if d > 10 {
		t.Errorf("respawned drone %v outside zone radius", d)
	}
	if pos[0] < -4 || pos[0] > 4 || pos[1] < -4 || pos[1] > 4 {
		t.Errorf("respawned drone (%v, %v) outside zone box", pos[0], pos[1])
	}
}

func TestRespawnEnvCountMismatch(t *testing.T) {
	s := newStepper(t)
	_, drones, respawns := boxWorld(t, 2)
	reset, err := tensor.FromSlice([]uint8{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Respawn(reset, respawns, drones); err == nil {
		t.Error("Respawn accepted mismatched environment counts")
	}
}

func TestPhysicsAtRestStaysPut(t *testing.T) {
	s := newStepper(t)
	scene, drones, _ := boxWorld(t, 1)
	mv, err := swarmstep.ZeroMovement(drones)
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		if err := s.Physics(mv, scene, drones); err != nil {
			t.Fatal(err)
		}
	}
	pos := drones.Positions.Data()
	if pos[0] != 0 || pos[1] != 0 {
		t.Errorf("drone drifted to (%v, %v) with no command and no momentum", pos[0], pos[1])
	}
}

func TestPhysicsThrustMovesForward(t *testing.T) {
	s := newStepper(t)
	scene, drones, _ := boxWorld(t, 1)
	mv, err := swarmstep.ZeroMovement(drones)
	if err != nil {
		t.Fatal(err)
	}
	mv.Mesial.Data()[0] = 1 // heading is 0 degrees, +x

	for range 30 {
		if err := s.Physics(mv, scene, drones); err != nil {
			t.Fatal(err)
		}
	}
	pos := drones.Positions.Data()
	if pos[0] <= 0 {
		t.Errorf("x = %v after sustained forward thrust, want > 0", pos[0])
	}
	if math.Abs(float64(pos[1])) > 1e-4 {
		t.Errorf("y = %v after pure mesial thrust, want ~0", pos[1])
	}
}

func TestPhysicsStaysInsideBox(t *testing.T) {
	s := newStepper(t)
	scene, drones, _ := boxWorld(t, 1)
	mv, err := swarmstep.ZeroMovement(drones)
	if err != nil {
		t.Fatal(err)
	}
	mv.Mesial.Data()[0] = 1

	// Long enough to reach the wall many times over.
	for range 2000 {
		if err := s.Physics(mv, scene, drones); err != nil {
			t.Fatal(err)
		}
		pos := drones.Positions.Data()
		if pos[0] < -5.01 || pos[0] > 5.01 || pos[1] < -5.01 || pos[1] > 5.01 {
			t.Fatalf("drone escaped the box: (%v, %v)", pos[0], pos[1])
		}
	}
}

func TestBakeFillsIllumination(t *testing.T) {
	s := newStepper(t)
	scene, _, _ := boxWorld(t, 2)

	if err := s.Bake(scene, 2); err != nil {
		t.Fatal(err)
	}
	for i, v := range scene.Baked.Vals().Data() {
		if v <= 0 {
			t.Errorf("baked[%d] = %v, want > 0 with an unoccluded center light", i, v)
		}
		if v > 1 {
			t.Errorf("baked[%d] = %v, want <= light intensity", i, v)
		}
	}
}

func TestBakeOcclusion(t *testing.T) {
	s := newStepper(t)

	// One wall to bake texels on, one blocking wall between it and the
	// light at the origin.
	lines, err := tensor.FromSlice([]float32{
		-5, 3, 5, 3, // target wall
		-5, 1, 5, 1, // occluder
	}, 2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	lineW, err := tensor.FromSlice([]int32{2}, 1)
	if err != nil {
		t.Fatal(err)
	}
	lights, err := tensor.FromSlice([]float32{0, 0, 1}, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	lightW, err := tensor.FromSlice([]int32{1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	textures := tensor.Ones[float32](4, 3)
	texW, err := tensor.FromSlice([]int32{4}, 1)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := tensor.FromSlice([]float32{-0.2, 0, 0.2, 0}, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	scene, err := swarmstep.NewScene(lights, lightW, lines, lineW, textures, texW, frame)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Bake(scene, 2); err != nil {
		t.Fatal(err)
	}

	// Texels on the target wall (first half of the chain) see nothing:
	// the occluder sits between them and the light. Texels on the
	// occluder itself are lit.
	baked := scene.Baked.Vals().Data()
	if baked[0] != 0 || baked[1] != 0 {
		t.Errorf("occluded texels baked to %v, %v, want 0", baked[0], baked[1])
	}
	if baked[2] <= 0 || baked[3] <= 0 {
		t.Errorf("unoccluded texels baked to %v, %v, want > 0", baked[2], baked[3])
	}
}

func TestBakeRejectsBadDims(t *testing.T) {
	s := newStepper(t)
	scene, _, _ := boxWorld(t, 1)
	if err := s.Bake(scene, 0); err == nil {
		t.Error("Bake accepted dims 0")
	}
	if err := s.Bake(scene, 4); err == nil {
		t.Error("Bake accepted dims 4")
	}
}

func TestRenderInsideBoxHitsEverywhere(t *testing.T) {
	s := newStepper(t)
	scene, drones, _ := boxWorld(t, 1)
	if err := s.Bake(scene, 2); err != nil {
		t.Fatal(err)
	}

	out, err := s.Render(drones, scene)
	if err != nil {
		t.Fatal(err)
	}

	if out.Indices.Size(2) != swarmstep.ResWidth {
		t.Fatalf("render width %d, want %d", out.Indices.Size(2), swarmstep.ResWidth)
	}
	idx := out.Indices.Data()
	dist := out.Distances.Data()
	screen := out.Screen.Data()
	texW := float32(8)
	for r, id := range idx {
		if id < 0 || id > 3 {
			t.Fatalf("ray %d hit index %d, want a wall in [0, 3] from inside a closed box", r, id)
		}
		if dist[r] <= 0 || dist[r] > 8 {
			t.Errorf("ray %d distance %v, want within the box diagonal", r, dist[r])
		}
		if screen[r] < 0 {
			t.Errorf("ray %d screen %v, want >= 0", r, screen[r])
		}
		loc := out.Locations.Data()[r]
		if loc < 0 || loc > texW {
			t.Errorf("ray %d texel coordinate %v outside [0, %v]", r, loc, texW)
		}
	}
}

func TestRenderSeesOtherDrones(t *testing.T) {
	if err := swarmstep.Configure(swarmstep.Config{Restitution: 0.5, DroneCount: 2, FOV: 130}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := swarmstep.Configure(swarmstep.DefaultConfig()); err != nil {
			t.Fatal(err)
		}
	})

	s := newStepper(t)
	scene, drones, _ := boxWorld(t, 1)

	// Drone 0 at the origin looking +x, drone 1 directly ahead with its
	// silhouette broadside to the ray fan.
	pos := drones.Positions.Data()
	pos[2] = 2 // drone 1 x
	pos[3] = 0
	drones.Angles.Data()[1] = 90

	out, err := s.Render(drones, scene)
	if err != nil {
		t.Fatal(err)
	}

	// Some ray of drone 0 must hit drone 1's silhouette: index beyond
	// the 4 static walls.
	found := false
	for _, id := range out.Indices.Data()[:swarmstep.ResWidth] {
		if id >= 4 {
			found = true
			break
		}
	}
	if !found {
		t.Error("no ray of drone 0 hit drone 1's silhouette straight ahead")
	}
}

func TestStepperName(t *testing.T) {
	if got := New().Name(); got != "cpu" {
		t.Errorf("Name() = %q, want \"cpu\"", got)
	}
}
