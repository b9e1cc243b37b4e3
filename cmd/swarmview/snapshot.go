package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/swarmstep"
)

// snapshotScale upscales the observation strip so individual rays are
// visible in the output image.
const snapshotScale = 8

// writeSnapshot renders the screen buffer as a grayscale PNG: one row
// per drone, one column per ray, scaled up with nearest neighbor so
// the blocky observation structure stays visible.
func writeSnapshot(path string, r *swarmstep.Render) error {
	e, a, w := r.Screen.Size(0), r.Screen.Size(1), r.Screen.Size(2)
	screen := r.Screen.Data()

	var peak float32
	for _, v := range screen {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	src := image.NewGray(image.Rect(0, 0, w, e*a))
	for row := range e * a {
		for col := range w {
			v := screen[row*w+col] / peak
			src.SetGray(col, row, gray(v))
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w*snapshotScale, e*a*snapshotScale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

func gray(v float32) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return color.Gray{Y: uint8(v * 255)}
}
