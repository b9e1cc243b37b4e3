package main

import (
	"math"
	"math/rand/v2"

	"github.com/gogpu/swarmstep"
	"github.com/gogpu/swarmstep/tensor"
)

// texelsPerUnit sets texture resolution along walls.
const texelsPerUnit = 2

// genWorld builds envs procedural room environments: a rectangular
// shell, a few random interior walls, wall-mounted lights and one
// respawn zone in the middle of each room.
func genWorld(rng *rand.Rand, envs int) (*swarmstep.Scene, *swarmstep.Respawns, error) {
	var (
		lines, lights, textures    []float32
		lineW, lightW, texW        []int32
		centers, radii, lows, higs []float32
		zoneW                      []int32
	)

	for range envs {
		half := 4 + rng.Float32()*4 // room half-extent in [4, 8)

		walls := [][4]float32{
			{-half, -half, half, -half},
			{half, -half, half, half},
			{half, half, -half, half},
			{-half, half, -half, -half},
		}
		for range 1 + rng.IntN(3) {
			// Interior wall: an axis-aligned segment that stops short of
			// the shell so rooms stay connected.
			x := (rng.Float32()*2 - 1) * half * 0.6
			y := (rng.Float32()*2 - 1) * half * 0.6
			l := 1 + rng.Float32()*half*0.5
			if rng.IntN(2) == 0 {
				walls = append(walls, [4]float32{x, y, x + l, y})
			} else {
				walls = append(walls, [4]float32{x, y, x, y + l})
			}
		}

		var envTexels int32
		for _, w := range walls {
			lines = append(lines, w[0], w[1], w[2], w[3])
			l := math.Hypot(float64(w[2]-w[0]), float64(w[3]-w[1]))
			n := int32(texelsPerUnit)
			if l > 1 {
				n = int32(texelsPerUnit * l)
			}
			for range n {
				shade := 0.4 + rng.Float32()*0.6
				textures = append(textures, shade, shade*0.9, shade*0.8)
			}
			envTexels += n
		}
		lineW = append(lineW, int32(len(walls)))
		texW = append(texW, envTexels)

		nLights := 1 + rng.IntN(3)
		for range nLights {
			lights = append(lights,
				(rng.Float32()*2-1)*half*0.8,
				(rng.Float32()*2-1)*half*0.8,
				0.5+rng.Float32())
		}
		lightW = append(lightW, int32(nLights))

		centers = append(centers, 0, 0)
		radii = append(radii, half)
		lows = append(lows, -half*0.8, -half*0.8)
		higs = append(higs, half*0.8, half*0.8)
		zoneW = append(zoneW, 1)
	}

	// Drone silhouette: a small cross, shared by every environment.
	frame, err := tensor.FromSlice([]float32{
		-0.2, 0, 0.2, 0,
		0, -0.2, 0, 0.2,
	}, 2, 2, 2)
	if err != nil {
		return nil, nil, err
	}

	linesV, err := tensor.FromSlice(lines, len(lines)/4, 2, 2)
	if err != nil {
		return nil, nil, err
	}
	lineWV, err := tensor.FromSlice(lineW, envs)
	if err != nil {
		return nil, nil, err
	}
	lightsV, err := tensor.FromSlice(lights, len(lights)/3, 3)
	if err != nil {
		return nil, nil, err
	}
	lightWV, err := tensor.FromSlice(lightW, envs)
	if err != nil {
		return nil, nil, err
	}
	texV, err := tensor.FromSlice(textures, len(textures)/3, 3)
	if err != nil {
		return nil, nil, err
	}
	texWV, err := tensor.FromSlice(texW, envs)
	if err != nil {
		return nil, nil, err
	}
	scene, err := swarmstep.NewScene(lightsV, lightWV, linesV, lineWV, texV, texWV, frame)
	if err != nil {
		return nil, nil, err
	}

	centersV, err := tensor.FromSlice(centers, envs, 1, 2)
	if err != nil {
		return nil, nil, err
	}
	radiiV, err := tensor.FromSlice(radii, envs, 1)
	if err != nil {
		return nil, nil, err
	}
	lowsV, err := tensor.FromSlice(lows, envs, 2)
	if err != nil {
		return nil, nil, err
	}
	higsV, err := tensor.FromSlice(higs, envs, 2)
	if err != nil {
		return nil, nil, err
	}
	zoneWV, err := tensor.FromSlice(zoneW, envs)
	if err != nil {
		return nil, nil, err
	}
	respawns, err := swarmstep.BuildRespawns(centersV, radiiV, lowsV, higsV, zoneWV)
	if err != nil {
		return nil, nil, err
	}
	return scene, respawns, nil
}
