package swarmstep

import "errors"

// ErrConsistency is the root error for cross-field invariant failures
// in composite aggregates — e.g. the four respawn ragged arrays not
// sharing one group count. Like validation errors it is fatal to the
// calling operation and never retried: a partially consistent bundle
// is unsafe to hand to a parallel kernel.
var ErrConsistency = errors.New("swarmstep: aggregate consistency violated")
