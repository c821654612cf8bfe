package kangaroo

import (
	"time"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// Stats is the flat point-in-time snapshot handed across the control
// boundary. Hex fields use 64-digit lowercase scalars, matching the
// checkpoint format.
type Stats struct {
	TotalJumps          uint64 `json:"total_jumps"`
	DistinguishedPoints uint64 `json:"distinguished_points"`
	CollisionsFound     uint64 `json:"collisions_found"`
	FalseCollisions     uint64 `json:"false_collisions"`
	RedundantPoints     uint64 `json:"redundant_points"`

	// ExpectedJumps is the birthday-bound work estimate for the configured
	// range, the basis for ETA display in surrounding tooling.
	ExpectedJumps uint64 `json:"expected_jumps"`

	ElapsedSeconds uint64 `json:"elapsed_time"`
	ThreadsActive  int32  `json:"threads_active"`

	RangeStart string `json:"current_range_start"`
	RangeEnd   string `json:"current_range_end"`

	// FoundKey is empty until Solved is true.
	FoundKey string `json:"found_key"`
	Solved   bool   `json:"is_solved"`
}

// Stats returns a consistent snapshot of the run. Safe to call from any
// goroutine in any state; an uninitialized solver reports zeroes.
func (s *Solver) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalJumps:          s.totalJumps.Load(),
		DistinguishedPoints: s.distinguishedPoints.Load(),
		CollisionsFound:     s.collisionsFound.Load(),
		FalseCollisions:     s.falseCollisions.Load(),
		RedundantPoints:     s.redundantPoints.Load(),
		ThreadsActive:       s.threadsActive.Load(),
	}

	if s.cfg != nil {
		st.ExpectedJumps = expectedJumps(s.cfg.span)
		st.RangeStart = ecc.FormatScalarHex(s.cfg.rangeStart)
		st.RangeEnd = ecc.FormatScalarHex(s.cfg.rangeEnd)
	}

	elapsed := s.elapsedBase
	if s.state == stateRunning {
		elapsed += time.Since(s.startedAt)
	}
	st.ElapsedSeconds = uint64(elapsed / time.Second)

	if s.solved.Load() {
		st.Solved = true
		if key := s.foundKey.Load(); key != nil {
			st.FoundKey = ecc.FormatScalarHex(key)
		}
	}
	return st
}
