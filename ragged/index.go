package ragged

// Starts computes the exclusive prefix sum of widths: starts[g] is the
// flat offset of group g's first element. An empty group's start points
// at the position immediately following the previous group.
func Starts(widths []int32) []int32 {
	starts := make([]int32, len(widths))
	var acc int32
	for g, w := range widths {
		starts[g] = acc
		acc += w
	}
	return starts
}

// Inverse computes the per-element group mapping: inverse[i] = g such
// that starts[g] <= i < starts[g]+widths[g]. Elements of empty groups
// do not exist, so inverse always names a group with positive width.
//
// The construction is a scatter-add of a 1 marker at every group start
// into a zero array, followed by an inclusive prefix scan minus one.
// Both halves are single bulk passes with no per-group inner loop, so
// the same shape maps directly onto a device scatter + scan. The marker
// array is one longer than the element count: trailing empty groups
// have start == N, and the extra slot absorbs their markers.
//
// The add (rather than a plain overwrite) is what makes runs of empty
// groups correct: k groups sharing a start contribute k to the marker,
// advancing the scanned group id past all of them. widths=[2,0,3]
// yields inverse=[0,0,2,2,2] — element 2 belongs to group 2, not the
// empty group 1.
func Inverse(widths []int32) []int32 {
	starts := Starts(widths)
	var n int32
	for _, w := range widths {
		n += w
	}

	marks := make([]int32, n+1)
	for _, s := range starts {
		marks[s]++
	}

	inverse := make([]int32, n)
	var acc int32
	for i := range inverse {
		acc += marks[i]
		inverse[i] = acc - 1
	}
	return inverse
}
