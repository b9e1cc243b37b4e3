package swarmstep

import (
	"errors"
	"testing"

	"github.com/gogpu/swarmstep/ragged"
	"github.com/gogpu/swarmstep/tensor"
)

func raggedOf(t *testing.T, widths []int32, elemShape ...int) *ragged.Array[float32] {
	t.Helper()
	var total int32
	for _, w := range widths {
		total += w
	}
	n := int(total)
	for _, s := range elemShape {
		n *= s
	}
	r, err := ragged.FromSlices(make([]float32, n), widths, elemShape...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewRespawnsGroupCountMismatch(t *testing.T) {
	// Four raggeds where one has 5 groups instead of 4: construction
	// must fail with a consistency error before any accessor exists.
	centers := raggedOf(t, []int32{1, 1, 1, 1}, 1, 2)
	radii := raggedOf(t, []int32{1, 1, 1, 1, 1}, 1) // 5 groups
	lowers := raggedOf(t, []int32{1, 1, 1, 1}, 2)
	uppers := raggedOf(t, []int32{1, 1, 1, 1}, 2)

	_, err := NewRespawns(centers, radii, lowers, uppers)
	if !errors.Is(err, ErrConsistency) {
		t.Errorf("NewRespawns with 4-vs-5 groups: err = %v, want ErrConsistency", err)
	}
}

func TestNewRespawnsOK(t *testing.T) {
	centers := raggedOf(t, []int32{1, 2}, 1, 2)
	radii := raggedOf(t, []int32{1, 2}, 1)
	lowers := raggedOf(t, []int32{1, 2}, 2)
	uppers := raggedOf(t, []int32{1, 2}, 2)

	r, err := NewRespawns(centers, radii, lowers, uppers)
	if err != nil {
		t.Fatalf("NewRespawns failed: %v", err)
	}
	if r.Envs() != 2 {
		t.Errorf("Envs() = %d, want 2", r.Envs())
	}
}

func TestBuildRespawnsSharedWidths(t *testing.T) {
	widths, err := tensor.FromSlice([]int32{1, 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	centers := tensor.Zeros[float32](2, 1, 2)
	radii := tensor.Zeros[float32](2, 1)
	lowers := tensor.Zeros[float32](2, 2)
	uppers := tensor.Zeros[float32](2, 2)

	r, err := BuildRespawns(centers, radii, lowers, uppers, widths)
	if err != nil {
		t.Fatalf("BuildRespawns failed: %v", err)
	}
	if r.Centers.Groups() != r.Uppers.Groups() {
		t.Errorf("group counts differ: %d vs %d", r.Centers.Groups(), r.Uppers.Groups())
	}
}

func TestBuildRespawnsValueMismatch(t *testing.T) {
	widths, err := tensor.FromSlice([]int32{1, 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	centers := tensor.Zeros[float32](3, 1, 2) // 3 rows, widths sum to 2
	radii := tensor.Zeros[float32](2, 1)
	lowers := tensor.Zeros[float32](2, 2)
	uppers := tensor.Zeros[float32](2, 2)

	_, err = BuildRespawns(centers, radii, lowers, uppers, widths)
	if !errors.Is(err, tensor.ErrValidation) {
		t.Errorf("BuildRespawns with row mismatch: err = %v, want ErrValidation", err)
	}
}
