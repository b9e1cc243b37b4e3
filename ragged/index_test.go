package ragged

import (
	"math/rand/v2"
	"testing"
)

func TestStarts(t *testing.T) {
	tests := []struct {
		name   string
		widths []int32
		want   []int32
	}{
		{"empty", []int32{}, []int32{}},
		{"single group", []int32{5}, []int32{0}},
		{"all zero", []int32{0, 0, 0}, []int32{0, 0, 0}},
		{"mixed", []int32{2, 0, 3}, []int32{0, 2, 2}},
		{"leading zero", []int32{0, 4}, []int32{0, 0}},
		{"trailing zero", []int32{4, 0}, []int32{0, 4}},
		{"uniform", []int32{3, 3, 3}, []int32{0, 3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Starts(tt.widths)
			if len(got) != len(tt.want) {
				t.Fatalf("Starts(%v) = %v, want %v", tt.widths, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Starts(%v)[%d] = %d, want %d", tt.widths, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStartsRecurrence(t *testing.T) {
	// starts[0] == 0 and starts[g+1] == starts[g] + widths[g] for all
	// non-negative widths.
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 100; trial++ {
		widths := make([]int32, rng.IntN(20))
		for i := range widths {
			widths[i] = int32(rng.IntN(7)) // zeros are common on purpose
		}
		starts := Starts(widths)
		if len(starts) != len(widths) {
			t.Fatalf("len(starts) = %d, want %d", len(starts), len(widths))
		}
		if len(starts) > 0 && starts[0] != 0 {
			t.Fatalf("starts[0] = %d, want 0 (widths %v)", starts[0], widths)
		}
		for g := 0; g+1 < len(starts); g++ {
			if starts[g+1] != starts[g]+widths[g] {
				t.Fatalf("starts[%d] = %d, want starts[%d]+widths[%d] = %d (widths %v)",
					g+1, starts[g+1], g, g, starts[g]+widths[g], widths)
			}
		}
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name   string
		widths []int32
		want   []int32
	}{
		{"empty", []int32{}, []int32{}},
		{"single group", []int32{5}, []int32{0, 0, 0, 0, 0}},
		{"all zero", []int32{0, 0, 0}, []int32{}},
		{"empty middle group", []int32{2, 0, 3}, []int32{0, 0, 2, 2, 2}},
		{"empty first group", []int32{0, 2}, []int32{1, 1}},
		{"run of empty groups", []int32{1, 0, 0, 0, 2}, []int32{0, 4, 4}},
		{"trailing empty", []int32{3, 0}, []int32{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Inverse(tt.widths)
			if len(got) != len(tt.want) {
				t.Fatalf("Inverse(%v) = %v, want %v", tt.widths, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Inverse(%v)[%d] = %d, want %d", tt.widths, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestInverseRangeProperty(t *testing.T) {
	// For every flat index i, inverse[i] names a non-empty group whose
	// [start, start+width) range contains i.
	rng := rand.New(rand.NewPCG(3, 4))
	for trial := 0; trial < 100; trial++ {
		widths := make([]int32, 1+rng.IntN(16))
		for i := range widths {
			widths[i] = int32(rng.IntN(5))
		}
		starts := Starts(widths)
		inverse := Inverse(widths)

		var total int32
		for _, w := range widths {
			total += w
		}
		if int32(len(inverse)) != total {
			t.Fatalf("len(inverse) = %d, want %d (widths %v)", len(inverse), total, widths)
		}

		prev := int32(0)
		for i, g := range inverse {
			if widths[g] <= 0 {
				t.Fatalf("inverse[%d] = %d names empty group (widths %v)", i, g, widths)
			}
			if int32(i) < starts[g] || int32(i) >= starts[g]+widths[g] {
				t.Fatalf("inverse[%d] = %d out of group range [%d,%d) (widths %v)",
					i, g, starts[g], starts[g]+widths[g], widths)
			}
			if g < prev {
				t.Fatalf("inverse not monotonic at %d: %v (widths %v)", i, inverse, widths)
			}
			prev = g
		}
	}
}

func BenchmarkInverse(b *testing.B) {
	widths := make([]int32, 1024)
	for i := range widths {
		widths[i] = int32(i % 9) // includes empty groups
	}
	b.ReportAllocs()
	for b.Loop() {
		Inverse(widths)
	}
}
