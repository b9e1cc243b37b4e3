package ragged

import (
	"sync"
	"testing"
)

func TestAccessorAt(t *testing.T) {
	// widths=[2,0,3] over 5 scalar values: group 1 is a zero-length
	// view at offset 2, group 2 covers the last three elements.
	r := mustArray(t, []float32{10, 11, 20, 21, 22}, []int32{2, 0, 3})
	acc := r.Accessor()

	g0 := acc.At(0)
	if g0.Len() != 2 || g0.Data()[0] != 10 || g0.Data()[1] != 11 {
		t.Errorf("At(0) = %v (len %d), want [10 11]", g0.Data(), g0.Len())
	}

	g1 := acc.At(1)
	if g1.Len() != 0 || len(g1.Data()) != 0 {
		t.Errorf("At(1) = %v (len %d), want empty view", g1.Data(), g1.Len())
	}

	g2 := acc.At(2)
	if g2.Len() != 3 {
		t.Fatalf("At(2).Len() = %d, want 3", g2.Len())
	}
	for i, want := range []float32{20, 21, 22} {
		if g2.Data()[i] != want {
			t.Errorf("At(2).Data()[%d] = %v, want %v", i, g2.Data()[i], want)
		}
	}
}

func TestAccessorAtRank2(t *testing.T) {
	// Two groups of [w, 3] rows; rows must come back intact.
	vals := []float32{
		0, 1, 2, // group 0, row 0
		3, 4, 5, // group 1, row 0
		6, 7, 8, // group 1, row 1
	}
	r := mustArray(t, vals, []int32{1, 2}, 3)
	acc := r.Accessor()

	row := acc.At(1).Row(1)
	if len(row) != 3 || row[0] != 6 || row[2] != 8 {
		t.Errorf("At(1).Row(1) = %v, want [6 7 8]", row)
	}
	if got := acc.At(1).Size(1); got != 3 {
		t.Errorf("At(1).Size(1) = %d, want 3", got)
	}
}

func TestAccessorSize(t *testing.T) {
	r := mustArray(t, make([]float32, 12), []int32{1, 3}, 3) // vals [4, 3]
	acc := r.Accessor()

	if got := acc.Size(0); got != 2 {
		t.Errorf("Size(0) = %d, want group count 2", got)
	}
	// Size(d) for d > 0 reports vals.Size(d-1): the group indirection
	// shifts axes by one.
	if got := acc.Size(1); got != 4 {
		t.Errorf("Size(1) = %d, want vals.Size(0) = 4", got)
	}
	if got := acc.Size(2); got != 3 {
		t.Errorf("Size(2) = %d, want vals.Size(1) = 3", got)
	}
}

func TestGroupSizeZeroTraps(t *testing.T) {
	r := mustArray(t, make([]float32, 3), []int32{3})
	g := r.Accessor().At(0)

	defer func() {
		if recover() == nil {
			t.Errorf("Group.Size(0) did not panic; sentinel trap lost")
		}
	}()
	_ = g.Size(0)
}

func TestAccessorWidthAndGroupOf(t *testing.T) {
	r := mustArray(t, make([]float32, 5), []int32{2, 0, 3})
	acc := r.Accessor()

	if got := acc.Width(1); got != 0 {
		t.Errorf("Width(1) = %d, want 0", got)
	}
	if got := acc.GroupOf(4); got != 2 {
		t.Errorf("GroupOf(4) = %d, want 2", got)
	}
}

func TestAccessorConcurrentReads(t *testing.T) {
	r := mustArray(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, []int32{3, 0, 5})
	acc := r.Accessor()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < 1000; iter++ {
				for g := 0; g < acc.Groups(); g++ {
					view := acc.At(g)
					if view.Len() != int(acc.Width(g)) {
						t.Errorf("At(%d).Len() = %d, want %d", g, view.Len(), acc.Width(g))
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkAccessorAt(b *testing.B) {
	widths := make([]int32, 256)
	total := 0
	for i := range widths {
		widths[i] = int32(i % 5)
		total += i % 5
	}
	r, err := FromSlices(make([]float32, total*2), widths, 2)
	if err != nil {
		b.Fatal(err)
	}
	acc := r.Accessor()
	b.ReportAllocs()
	for b.Loop() {
		for g := 0; g < acc.Groups(); g++ {
			if acc.At(g).Len() < 0 {
				b.Fatal("impossible")
			}
		}
	}
}
