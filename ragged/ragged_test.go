package ragged

import (
	"errors"
	"testing"

	"github.com/gogpu/swarmstep/tensor"
)

func mustArray(t *testing.T, vals []float32, widths []int32, elemShape ...int) *Array[float32] {
	t.Helper()
	r, err := FromSlices(vals, widths, elemShape...)
	if err != nil {
		t.Fatalf("FromSlices(%v, %v) failed: %v", vals, widths, err)
	}
	return r
}

func TestNewDerivesIndices(t *testing.T) {
	r := mustArray(t, []float32{1, 2, 3, 4, 5}, []int32{2, 0, 3})

	wantStarts := []int32{0, 2, 2}
	for g, s := range r.StartsView().Data() {
		if s != wantStarts[g] {
			t.Errorf("starts[%d] = %d, want %d", g, s, wantStarts[g])
		}
	}
	wantInverse := []int32{0, 0, 2, 2, 2}
	for i, g := range r.InverseView().Data() {
		if g != wantInverse[i] {
			t.Errorf("inverse[%d] = %d, want %d", i, g, wantInverse[i])
		}
	}
}

func TestNewIdempotent(t *testing.T) {
	vals := []float32{1, 2, 3, 4, 5, 6}
	widths := []int32{1, 3, 0, 2}

	a := mustArray(t, vals, widths)
	b := mustArray(t, vals, widths)

	as, bs := a.StartsView().Data(), b.StartsView().Data()
	for i := range as {
		if as[i] != bs[i] {
			t.Errorf("starts differ at %d: %d vs %d", i, as[i], bs[i])
		}
	}
	ai, bi := a.InverseView().Data(), b.InverseView().Data()
	for i := range ai {
		if ai[i] != bi[i] {
			t.Errorf("inverse differ at %d: %d vs %d", i, ai[i], bi[i])
		}
	}
}

func TestNewAllEmptyGroups(t *testing.T) {
	r := mustArray(t, nil, []int32{0, 0, 0})
	if r.Groups() != 3 {
		t.Errorf("Groups() = %d, want 3", r.Groups())
	}
	if n := len(r.InverseView().Data()); n != 0 {
		t.Errorf("len(inverse) = %d, want 0", n)
	}
	acc := r.Accessor()
	for g := 0; g < 3; g++ {
		if got := acc.At(g).Len(); got != 0 {
			t.Errorf("At(%d).Len() = %d, want 0", g, got)
		}
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		vals   []float32
		widths []int32
	}{
		{"sum exceeds vals", []float32{1, 2}, []int32{2, 1}},
		{"sum below vals", []float32{1, 2, 3}, []int32{1, 1}},
		{"negative width", []float32{1, 2}, []int32{3, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSlices(tt.vals, tt.widths)
			if err == nil {
				t.Fatalf("FromSlices(%v, %v) succeeded, want validation error", tt.vals, tt.widths)
			}
			if !errors.Is(err, tensor.ErrValidation) {
				t.Errorf("error %v does not wrap tensor.ErrValidation", err)
			}
		})
	}
}

func TestNewRejectsRank0Widths(t *testing.T) {
	vals := tensor.Zeros[float32](0)
	badWidths := tensor.Zeros[int32](0, 0) // rank 2
	if _, err := New(vals, badWidths); !errors.Is(err, tensor.ErrValidation) {
		t.Errorf("New with rank-2 widths: err = %v, want ErrValidation", err)
	}
}

func TestSize(t *testing.T) {
	r := mustArray(t, make([]float32, 10), []int32{2, 3}, 2) // vals [5, 2]
	if got := r.Size(0); got != 2 {
		t.Errorf("Size(0) = %d, want group count 2", got)
	}
	if got := r.Size(1); got != 2 {
		t.Errorf("Size(1) = %d, want trailing extent 2", got)
	}
	if got := r.Groups(); got != 2 {
		t.Errorf("Groups() = %d, want 2", got)
	}
}
