package kangaroo

import (
	"github.com/holiman/uint256"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// resolveCandidate turns a tame/wild distance pair for one x-coordinate into
// a candidate discrete log: k = (tame - wild) mod n. The tame distance is an
// absolute scalar and the wild distance is an offset from the unknown key, so
// when both walks stand on the same point the difference is the key.
func resolveCandidate(tameDistance, wildDistance *uint256.Int) *uint256.Int {
	t := ecc.ToModN(tameDistance)
	w := ecc.ToModN(wildDistance)
	w.Negate()
	t.Add(w)
	return ecc.FromModN(t)
}

// verifyCandidate checks a candidate against the target: true iff
// candidate*G == target. Non-injective jump collisions produce candidates
// that fail here; those are counted, not fatal.
func verifyCandidate(candidate *uint256.Int, target ecc.Point) bool {
	return ecc.Equal(ecc.ScalarBaseMult(ecc.ToModN(candidate)), target)
}
