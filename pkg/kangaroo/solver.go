package kangaroo

import (
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
)

// runState is the solver lifecycle. Stopped and Solved are terminal for the
// worker pool; a fresh Init is required before another Start.
type runState int

const (
	stateUninitialized runState = iota
	stateInitialized
	stateRunning
	stateStopped
	stateSolved
)

func (st runState) String() string {
	switch st {
	case stateUninitialized:
		return "uninitialized"
	case stateInitialized:
		return "initialized"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	case stateSolved:
		return "solved"
	default:
		return "unknown"
	}
}

// Solver is one independent kangaroo solving instance. Callers may hold any
// number of them; there is no process-wide state. The zero value is not
// usable, construct with NewSolver.
type Solver struct {
	mu    sync.Mutex
	log   *slog.Logger
	state runState

	cfg   *solverConfig
	jumps *jumpTable
	table *dpTable
	slots []*walkerSlot

	stopFlag atomic.Bool
	solved   atomic.Bool
	foundKey atomic.Pointer[uint256.Int]

	totalJumps          atomic.Uint64
	distinguishedPoints atomic.Uint64
	collisionsFound     atomic.Uint64
	falseCollisions     atomic.Uint64
	redundantPoints     atomic.Uint64
	threadsActive       atomic.Int32

	wg          sync.WaitGroup
	startedAt   time.Time
	elapsedBase time.Duration
}

// NewSolver creates an idle solver.
func NewSolver() *Solver {
	return &Solver{log: slog.Default()}
}

// WithLogger sets the logger used by lifecycle transitions and workers.
func (s *Solver) WithLogger(logger *slog.Logger) *Solver {
	if logger != nil {
		s.log = logger
	}
	return s
}

// Init validates cfg and prepares a fresh run: jump table, empty
// distinguished-point table, seeded walkers, zeroed counters. It fails
// without touching prior state, and is rejected while workers are active.
func (s *Solver) Init(cfg Config) error {
	parsed, err := parseConfig(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateRunning {
		return ErrAlreadyRunning
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	s.cfg = parsed
	s.jumps = newJumpTable(parsed.span)
	s.table = newDPTable()
	s.slots = newHerd(rng, parsed)

	s.stopFlag.Store(false)
	s.solved.Store(false)
	s.foundKey.Store(nil)
	s.totalJumps.Store(0)
	s.distinguishedPoints.Store(0)
	s.collisionsFound.Store(0)
	s.falseCollisions.Store(0)
	s.redundantPoints.Store(0)
	s.elapsedBase = 0
	s.state = stateInitialized

	s.log.Info("solver initialized",
		"range_start", cfg.RangeStartHex,
		"range_end", cfg.RangeEndHex,
		"threads", parsed.threads,
		"distinguished_bits", parsed.distinguishedBits,
		"expected_jumps", expectedJumps(parsed.span))
	return nil
}

// newHerd seeds one walker per worker, alternating tame and wild by herd ID.
// A single-threaded solver still gets one walker of each kind; its worker
// interleaves them.
func newHerd(rng *rand.Rand, cfg *solverConfig) []*walkerSlot {
	count := cfg.threads
	if count < 2 {
		count = 2
	}

	slots := make([]*walkerSlot, count)
	for i := range slots {
		kind := Tame
		if i%2 == 1 {
			kind = Wild
		}
		slots[i] = &walkerSlot{w: newWalker(rng, cfg, kind, i)}
	}
	return slots
}

// Start spawns the worker pool. It fails unless the solver sits in the
// initialized state: running solvers, stopped runs, and solved runs all need
// a fresh Init (or a checkpoint load) first.
func (s *Solver) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrAlreadyRunning
	case stateInitialized:
	default:
		return ErrNotInitialized
	}

	s.stopFlag.Store(false)
	s.startedAt = time.Now()
	s.state = stateRunning

	for i := 0; i < s.cfg.threads; i++ {
		var assigned []*walkerSlot
		for j := i; j < len(s.slots); j += s.cfg.threads {
			assigned = append(assigned, s.slots[j])
		}
		s.wg.Add(1)
		s.threadsActive.Add(1)
		go s.worker(i, assigned)
	}

	s.log.Info("solver started", "threads", s.cfg.threads, "walkers", len(s.slots))
	return nil
}

// Stop signals cancellation and joins every worker. Idempotent: calling it on
// an idle or already-stopped solver is a no-op.
func (s *Solver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateRunning {
		return
	}

	s.stopFlag.Store(true)
	s.wg.Wait()

	s.elapsedBase += time.Since(s.startedAt)
	if s.solved.Load() {
		s.state = stateSolved
	} else {
		s.state = stateStopped
	}

	s.log.Info("solver stopped",
		"state", s.state.String(),
		"total_jumps", s.totalJumps.Load(),
		"distinguished_points", s.distinguishedPoints.Load())
}

// IsRunning reports whether the worker pool is active. Workers drain on their
// own once a key is found, so a solved run reports false even before Stop
// joins them.
func (s *Solver) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateRunning && !s.solved.Load()
}

// IsSolved reports whether a verified key has been found.
func (s *Solver) IsSolved() bool {
	return s.solved.Load()
}
