package kangaroo

import (
	"encoding/binary"
	"math/rand"

	"github.com/holiman/uint256"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// Kind distinguishes the two herds. Tame walkers start from known scalars so
// their distance is an absolute discrete log; wild walkers start from the
// target so their distance is relative to the unknown key.
type Kind int

const (
	Tame Kind = iota
	Wild
)

// String returns the lowercase herd name used in logs and checkpoints.
func (k Kind) String() string {
	if k == Tame {
		return "tame"
	}
	return "wild"
}

// walker is one kangaroo: a current position and the cumulative jump distance
// that produced it. Exclusively owned by its worker; checkpointing copies it
// under the owning slot lock.
type walker struct {
	kind     Kind
	herdID   int
	position ecc.Point
	distance *uint256.Int
}

// randomInRange draws a scalar in [start, start+span). The modulo bias is
// negligible over cryptographic-scale spans and irrelevant to correctness.
func randomInRange(rng *rand.Rand, start, span *uint256.Int) *uint256.Int {
	var raw [32]byte
	binary.BigEndian.PutUint64(raw[0:], rng.Uint64())
	binary.BigEndian.PutUint64(raw[8:], rng.Uint64())
	binary.BigEndian.PutUint64(raw[16:], rng.Uint64())
	binary.BigEndian.PutUint64(raw[24:], rng.Uint64())

	r := new(uint256.Int).SetBytes(raw[:])
	r.Mod(r, span)
	return r.Add(r, start)
}

// reseedTame moves w to a fresh anchor k*G with distance k drawn uniformly
// from the configured range.
func (w *walker) reseedTame(rng *rand.Rand, cfg *solverConfig) {
	k := randomInRange(rng, cfg.rangeStart, cfg.span)
	w.position = ecc.ScalarBaseMult(ecc.ToModN(k))
	w.distance = k
}

// reseedWild moves w to target + j*G for a fresh offset j within the range
// span, keeping the tame-minus-wild collision arithmetic intact while
// breaking out of an exhausted trajectory.
func (w *walker) reseedWild(rng *rand.Rand, cfg *solverConfig) {
	j := randomInRange(rng, uint256.NewInt(0), cfg.span)
	w.position = ecc.Add(cfg.target, ecc.ScalarBaseMult(ecc.ToModN(j)))
	w.distance = j
}

// newWalker seeds a walker for its herd. The first wild walker of a run
// starts exactly at the target with distance zero; further wild replicas get
// random offsets so they do not retrace the same trajectory in lockstep.
func newWalker(rng *rand.Rand, cfg *solverConfig, kind Kind, herdID int) *walker {
	w := &walker{kind: kind, herdID: herdID}
	switch {
	case kind == Tame:
		w.reseedTame(rng, cfg)
	case herdID <= 1:
		w.position = cfg.target
		w.distance = uint256.NewInt(0)
	default:
		w.reseedWild(rng, cfg)
	}
	return w
}

// isDistinguished reports whether the low distinguished bits of a canonical
// x-coordinate are all zero.
func isDistinguished(x *[32]byte, mask uint32) bool {
	return binary.BigEndian.Uint32(x[28:32])&mask == 0
}

// overrun reports whether w has walked past the useful region and should be
// reseeded: past the range end for tame walkers, past four range spans for
// wild ones.
func (w *walker) overrun(cfg *solverConfig, wildLimit *uint256.Int) bool {
	if w.kind == Tame {
		return w.distance.Cmp(cfg.rangeEnd) > 0
	}
	return w.distance.Cmp(wildLimit) > 0
}
