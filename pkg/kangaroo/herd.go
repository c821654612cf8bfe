package kangaroo

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// jumpFlushBatch is how many loop iterations a worker accumulates locally
// before adding them to the shared jump counter.
const jumpFlushBatch = 1024

// walkerSlot wraps a walker so checkpointing can copy its state while the
// owning worker keeps stepping it. The lock is held for single jumps only.
type walkerSlot struct {
	mu sync.Mutex
	w  *walker
}

// worker drives its assigned walkers in a tight jump loop until the stop or
// solved flag is observed. A panic inside the loop takes down only this
// worker: it is logged and the active count drops, siblings keep walking.
func (s *Solver) worker(id int, slots []*walkerSlot) {
	logger := s.log.With("worker", id)

	defer s.wg.Done()
	defer s.threadsActive.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker exited on internal fault", "panic", r)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(id)<<17))
	jt := s.jumps

	// Wild walkers reseed once they have wandered several spans past any
	// distance a collision could still use.
	wildLimit := new(uint256.Int).Lsh(s.cfg.span, 2)
	if s.cfg.span.BitLen() > 253 {
		wildLimit.SetAllOne()
	}

	var localJumps uint64
	defer func() {
		if localJumps > 0 {
			s.totalJumps.Add(localJumps)
		}
	}()

	for {
		if s.stopFlag.Load() || s.solved.Load() {
			return
		}

		for _, slot := range slots {
			s.stepSlot(logger, rng, slot, jt, wildLimit)

			localJumps++
			if localJumps >= jumpFlushBatch {
				s.totalJumps.Add(localJumps)
				localJumps = 0
			}
		}
	}
}

// stepSlot advances one walker under its slot lock. The unlock is deferred so
// the lock is released even when the step faults and the worker's recover
// fires; checkpointing keeps working after a worker dies.
func (s *Solver) stepSlot(logger *slog.Logger, rng *rand.Rand, slot *walkerSlot, jt *jumpTable, wildLimit *uint256.Int) {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	s.step(logger, rng, slot.w, jt, wildLimit)
}

// step advances one walker by one iteration: distinguished check, then jump,
// then the overrun restart rules.
func (s *Solver) step(logger *slog.Logger, rng *rand.Rand, w *walker, jt *jumpTable, wildLimit *uint256.Int) {
	x := ecc.CanonicalX(w.position)

	if isDistinguished(&x, s.cfg.dpMask) {
		if s.emitDistinguished(logger, rng, w, &x) {
			// Tame walkers restart from a fresh anchor after every emission.
			return
		}
	}

	var step *uint256.Int
	w.position, step = jt.next(w.position, &x)
	w.distance.Add(w.distance, step)

	if w.overrun(s.cfg, wildLimit) {
		if w.kind == Tame {
			w.reseedTame(rng, s.cfg)
		} else {
			w.reseedWild(rng, s.cfg)
		}
	}
}

// emitDistinguished inserts the walker's current point into the shared table
// and resolves any cross-kind collision. It reports whether the walker was
// reseeded.
func (s *Solver) emitDistinguished(logger *slog.Logger, rng *rand.Rand, w *walker, x *[32]byte) bool {
	rec := dpRecord{
		kind:     w.kind,
		distance: new(uint256.Int).Set(w.distance),
		ownerID:  w.herdID,
	}

	result, existing := s.table.insert(x, rec)
	switch result {
	case insertedNew:
		s.distinguishedPoints.Add(1)

	case redundantSameKind:
		s.redundantPoints.Add(1)

	case crossKindCollision:
		s.collisionsFound.Add(1)

		tameDist, wildDist := rec.distance, existing.distance
		if rec.kind == Wild {
			tameDist, wildDist = existing.distance, rec.distance
		}

		candidate := resolveCandidate(tameDist, wildDist)
		if verifyCandidate(candidate, s.cfg.target) {
			s.foundKey.Store(candidate)
			if s.solved.CompareAndSwap(false, true) {
				logger.Info("key found", "key", ecc.FormatScalarHex(candidate))
			}
		} else {
			s.falseCollisions.Add(1)
			logger.Debug("false collision discarded",
				"candidate", ecc.FormatScalarHex(candidate))
		}
	}

	if w.kind == Tame {
		w.reseedTame(rng, s.cfg)
		return true
	}
	return false
}
