package kangaroo

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// jumpTable holds the precomputed pseudorandom steps shared read-only by every
// walker. Entry i carries the point distance_i*G alongside distance_i, so a
// jump is one point addition plus one fixed-width add.
type jumpTable struct {
	points    [jumpTableSize]ecc.Point
	distances [jumpTableSize]*uint256.Int
}

// newJumpTable derives the table from the range size. Distances are
// 2^(rangeBits/2 - 8) plus the entry index, so the mean step scales with
// sqrt(range)/|table| and the walk stays inside the birthday-bound efficiency
// regime.
func newJumpTable(span *uint256.Int) *jumpTable {
	rangeBits := span.BitLen()
	baseBits := rangeBits/2 - 8
	if baseBits < 1 {
		baseBits = 1
	}

	base := new(uint256.Int).Lsh(uint256.NewInt(1), uint(baseBits))

	jt := &jumpTable{}
	for i := 0; i < jumpTableSize; i++ {
		d := new(uint256.Int).AddUint64(base, uint64(i+1))
		jt.distances[i] = d
		jt.points[i] = ecc.ScalarBaseMult(ecc.ToModN(d))
	}
	return jt
}

// index selects the jump for a point from the low byte of its canonical
// x-coordinate. Pure function of the point, so a reloaded walk replays the
// identical trajectory.
func (jt *jumpTable) index(x *[32]byte) int {
	return int(x[31])
}

// next advances p by one jump and returns the new point together with the
// distance contributed by the step.
func (jt *jumpTable) next(p ecc.Point, x *[32]byte) (ecc.Point, *uint256.Int) {
	i := jt.index(x)
	return ecc.Add(p, jt.points[i]), jt.distances[i]
}

// expectedJumps estimates total work as 1.25*sqrt(span), the birthday-bound
// factor the surrounding tooling has always used for its ETA display.
func expectedJumps(span *uint256.Int) uint64 {
	root := new(uint256.Int).Sqrt(span)
	if !root.IsUint64() {
		return math.MaxUint64
	}
	r := root.Uint64()
	if r > math.MaxUint64/5*4 {
		return math.MaxUint64
	}
	return r + r/4
}
