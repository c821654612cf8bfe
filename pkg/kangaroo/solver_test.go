package kangaroo

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// newQuietSolver builds a solver that does not write test noise.
func newQuietSolver() *Solver {
	return NewSolver().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// waitForJumps blocks until the solver has taken at least n jumps, solved the
// instance, or a generous deadline passes.
func waitForJumps(t *testing.T, s *Solver, n uint64) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if s.Stats().TotalJumps >= n || s.IsSolved() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Solver did not reach %d jumps in time", n)
}

func TestInit_Validation(t *testing.T) {
	valid, _ := testConfig(t, 0xbeef, 24, 2, 8)

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"malformed target", func(c *Config) { c.TargetHex = "zz" }, ErrInvalidPoint},
		{"target off curve", func(c *Config) {
			c.TargetHex = "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b9"
		}, ErrInvalidPoint},
		{"reversed range", func(c *Config) { c.RangeStartHex, c.RangeEndHex = c.RangeEndHex, c.RangeStartHex }, ErrInvalidRange},
		{"empty range", func(c *Config) { c.RangeEndHex = c.RangeStartHex }, ErrInvalidRange},
		{"range above order", func(c *Config) {
			c.RangeEndHex = "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
		}, ErrInvalidRange},
		{"zero threads", func(c *Config) { c.Threads = 0 }, ErrInvalidConfig},
		{"too many threads", func(c *Config) { c.Threads = 65 }, ErrInvalidConfig},
		{"zero distinguished bits", func(c *Config) { c.DistinguishedBits = 0 }, ErrInvalidConfig},
		{"oversized distinguished bits", func(c *Config) { c.DistinguishedBits = 33 }, ErrInvalidConfig},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			require.ErrorIs(t, newQuietSolver().Init(cfg), tc.want)
		})
	}
}

func TestInit_FailureLeavesStateUntouched(t *testing.T) {
	cfg, _ := testConfig(t, 0xbeef, 24, 2, 8)

	solver := newQuietSolver()
	require.NoError(t, solver.Init(cfg))
	before := solver.Stats()

	bad := cfg
	bad.TargetHex = "02ff"
	require.ErrorIs(t, solver.Init(bad), ErrInvalidPoint)

	// The earlier configuration is still live and startable.
	require.Equal(t, before.RangeStart, solver.Stats().RangeStart)
	require.Equal(t, before.RangeEnd, solver.Stats().RangeEnd)
	require.NoError(t, solver.Start())
	solver.Stop()
}

func TestLifecycle_StateMachine(t *testing.T) {
	cfg, _ := testConfig(t, 0xbeef, 24, 2, 8)
	solver := newQuietSolver()

	// Start before Init.
	require.ErrorIs(t, solver.Start(), ErrNotInitialized)

	// Stop before anything is a no-op.
	solver.Stop()

	require.NoError(t, solver.Init(cfg))
	require.NoError(t, solver.Start())

	// Double start.
	require.ErrorIs(t, solver.Start(), ErrAlreadyRunning)

	// Init while running.
	require.ErrorIs(t, solver.Init(cfg), ErrAlreadyRunning)

	solver.Stop()
	require.Zero(t, solver.Stats().ThreadsActive)

	// Stopped runs need a fresh Init before another Start.
	require.ErrorIs(t, solver.Start(), ErrNotInitialized)
	require.NoError(t, solver.Init(cfg))
	require.NoError(t, solver.Start())
	solver.Stop()
}

func TestStop_Idempotent(t *testing.T) {
	cfg, _ := testConfig(t, 0xbeef, 24, 4, 8)

	solver := newQuietSolver()
	require.NoError(t, solver.Init(cfg))
	require.NoError(t, solver.Start())

	solver.Stop()
	solver.Stop()
	require.Zero(t, solver.Stats().ThreadsActive)
}

func TestStop_ConcurrentWithSave(t *testing.T) {
	cfg, _ := testConfig(t, 0xbeef, 24, 4, 8)
	path := filepath.Join(t.TempDir(), "race.checkpoint")

	solver := newQuietSolver()
	require.NoError(t, solver.Init(cfg))
	require.NoError(t, solver.Start())
	waitForJumps(t, solver, 10000)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			solver.Stop()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Save may run before or after the joins finish; either way it
			// must return, not deadlock.
			_ = solver.SaveCheckpoint(path)
		}()
	}
	wg.Wait()

	require.Zero(t, solver.Stats().ThreadsActive)
}

func TestWorkerFault_DoesNotLeakSlotLock(t *testing.T) {
	cfg, _ := testConfig(t, 0xbeef, 24, 2, 8)
	path := filepath.Join(t.TempDir(), "fault.checkpoint")

	solver := newQuietSolver()
	require.NoError(t, solver.Init(cfg))

	// A nil distance makes the first jump fault inside the step.
	solver.slots[0].w.distance = nil

	solver.wg.Add(1)
	solver.threadsActive.Add(1)
	solver.worker(0, solver.slots[:1])

	require.Zero(t, solver.Stats().ThreadsActive)

	// Repair the walker state; the fault itself must not have left its slot
	// lock held.
	solver.slots[0].w.distance = uint256.NewInt(1)

	done := make(chan error, 1)
	go func() { done <- solver.SaveCheckpoint(path) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("SaveCheckpoint blocked on a slot lock after a worker fault")
	}

	// Stop stays a no-op on this never-started solver.
	solver.Stop()
}

func TestIsRunning_FalseOnceSolved(t *testing.T) {
	// High distinguished bits keep the run from solving on its own.
	cfg, _ := testConfig(t, 0xbeef, 24, 2, 20)

	solver := newQuietSolver()
	require.NoError(t, solver.Init(cfg))
	require.NoError(t, solver.Start())
	require.True(t, solver.IsRunning())

	solver.foundKey.Store(uint256.NewInt(0xbeef))
	solver.solved.Store(true)

	require.False(t, solver.IsRunning())
	require.True(t, solver.IsSolved())

	solver.Stop()
	require.Zero(t, solver.Stats().ThreadsActive)

	// A solved run needs a fresh Init before another Start.
	require.ErrorIs(t, solver.Start(), ErrNotInitialized)
}

func TestStats_Snapshot(t *testing.T) {
	cfg, parsed := testConfig(t, 0xbeef, 24, 2, 8)

	solver := newQuietSolver()
	st := solver.Stats()
	require.Zero(t, st.TotalJumps)
	require.Empty(t, st.RangeStart)
	require.False(t, st.Solved)

	require.NoError(t, solver.Init(cfg))
	st = solver.Stats()
	require.Equal(t, ecc.FormatScalarHex(parsed.rangeStart), st.RangeStart)
	require.Equal(t, ecc.FormatScalarHex(parsed.rangeEnd), st.RangeEnd)
	require.Equal(t, expectedJumps(parsed.span), st.ExpectedJumps)
	require.Empty(t, st.FoundKey)

	require.NoError(t, solver.Start())
	waitForJumps(t, solver, 20000)
	solver.Stop()

	st = solver.Stats()
	require.NotZero(t, st.TotalJumps)
	require.NotZero(t, st.DistinguishedPoints)
	require.Zero(t, st.ThreadsActive)
}

func TestSolver_FindsKeyOnSmallRange(t *testing.T) {
	if testing.Short() {
		t.Skip("solving even a small range takes a few seconds")
	}

	const key = 0x9e3779 // arbitrary scalar inside [1, 2^24]
	cfg, _ := testConfig(t, key, 24, 4, 6)

	solver := newQuietSolver()
	require.NoError(t, solver.Init(cfg))
	require.NoError(t, solver.Start())
	defer solver.Stop()

	deadline := time.Now().Add(120 * time.Second)
	for !solver.IsSolved() && time.Now().Before(deadline) {
		time.Sleep(25 * time.Millisecond)
	}
	require.True(t, solver.IsSolved(), "solver did not find the key within the budget")

	st := solver.Stats()
	require.Equal(t, ecc.FormatScalarHex(uint256.NewInt(key)), st.FoundKey)
	require.NotZero(t, st.CollisionsFound)
}

func TestSolver_ResumeFromCheckpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("resuming a run takes a few seconds")
	}

	const key = 0x1234567 // inside [1, 2^28]
	cfg, _ := testConfig(t, key, 28, 4, 8)
	path := filepath.Join(t.TempDir(), "resume.checkpoint")

	first := newQuietSolver()
	require.NoError(t, first.Init(cfg))
	require.NoError(t, first.Start())
	waitForJumps(t, first, 100000)
	first.Stop()
	require.NoError(t, first.SaveCheckpoint(path))
	progress := first.Stats().TotalJumps

	second := newQuietSolver()
	require.NoError(t, second.Init(cfg))
	require.NoError(t, second.LoadCheckpoint(path))
	require.NoError(t, second.Start())
	defer second.Stop()

	deadline := time.Now().Add(120 * time.Second)
	for !second.IsSolved() && time.Now().Before(deadline) {
		time.Sleep(25 * time.Millisecond)
	}
	require.True(t, second.IsSolved(), "resumed solver did not finish")

	st := second.Stats()
	require.Equal(t, ecc.FormatScalarHex(uint256.NewInt(key)), st.FoundKey)
	require.GreaterOrEqual(t, st.TotalJumps, progress, "resumed counters must continue, not restart")
}
