// Package cpu implements the reference simulation stepper on the host.
// It is the fallback when no GPU is available and the oracle the native
// backend is checked against.
package cpu

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/gogpu/swarmstep/internal/parallel"
)

// Stepper runs the simulation kernels on the host, fanning work out
// across environments with a worker pool. All methods are safe for
// concurrent use with SetLogger; the simulation methods themselves must
// not run concurrently with each other on the same bundles, since they
// mutate drone state in place.
type Stepper struct {
	logger atomic.Pointer[slog.Logger]
	pool   *parallel.Pool

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Stepper.
type Option func(*Stepper)

// WithWorkers sets the worker count for the environment fan-out.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Stepper) { s.pool = parallel.New(n) }
}

// WithSeed makes respawn placement deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Stepper) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// New creates a CPU stepper. Resources are acquired lazily in Init.
func New(opts ...Option) *Stepper {
	s := &Stepper{}
	s.logger.Store(nopLogger())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "cpu".
func (s *Stepper) Name() string { return "cpu" }

// Init acquires the worker pool and seeds the random source if the
// options did not.
func (s *Stepper) Init() error {
	if s.pool == nil {
		s.pool = parallel.New(0)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.log().Debug("cpu stepper initialized", "workers", s.pool.Workers())
	return nil
}

// Close joins the worker pool.
func (s *Stepper) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SetLogger installs the logger. Safe to call at any time.
func (s *Stepper) SetLogger(l *slog.Logger) {
	if l == nil {
		l = nopLogger()
	}
	s.logger.Store(l)
}

func (s *Stepper) log() *slog.Logger { return s.logger.Load() }

// random runs fn with the stepper's random source under its lock.
func (s *Stepper) random(fn func(*rand.Rand)) {
	s.mu.Lock()
	fn(s.rng)
	s.mu.Unlock()
}

type silentHandler struct{}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (silentHandler) WithAttrs([]slog.Attr) slog.Handler        { return silentHandler{} }
func (silentHandler) WithGroup(string) slog.Handler             { return silentHandler{} }

func nopLogger() *slog.Logger { return slog.New(silentHandler{}) }
