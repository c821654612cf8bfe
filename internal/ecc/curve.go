// Package ecc wraps the decred secp256k1 primitives in the affine point and
// scalar operations the kangaroo walk needs: deterministic point addition,
// scalar multiplication, canonical x-coordinate extraction, and the hex codecs
// used at the solver boundary.
package ecc

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrInvalidPoint is returned when an encoded point is malformed or does not
// satisfy the curve equation.
var ErrInvalidPoint = errors.New("invalid curve point")

// Point is an affine secp256k1 point. The zero value is not valid; the point
// at infinity is represented explicitly via the Infinity flag.
type Point struct {
	X, Y     secp256k1.FieldVal
	Infinity bool
}

// InfinityPoint returns the identity element.
func InfinityPoint() Point {
	return Point{Infinity: true}
}

// Generator returns the secp256k1 base point G.
func Generator() Point {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	return ScalarBaseMult(&one)
}

// toJacobian converts p to Jacobian coordinates. The identity maps to the
// all-zero Jacobian point, which is what the decred arithmetic expects.
func (p *Point) toJacobian(result *secp256k1.JacobianPoint) {
	if p.Infinity {
		result.X.SetInt(0)
		result.Y.SetInt(0)
		result.Z.SetInt(0)
		return
	}
	result.X.Set(&p.X)
	result.Y.Set(&p.Y)
	result.Z.SetInt(1)
}

// fromJacobian normalizes a Jacobian point back to affine form.
func fromJacobian(j *secp256k1.JacobianPoint) Point {
	if (j.X.IsZero() && j.Y.IsZero()) || j.Z.IsZero() {
		return InfinityPoint()
	}
	j.ToAffine()
	var p Point
	p.X.Set(&j.X)
	p.Y.Set(&j.Y)
	return p
}

// Add returns p + q.
func Add(p, q Point) Point {
	var jp, jq, jr secp256k1.JacobianPoint
	p.toJacobian(&jp)
	q.toJacobian(&jq)
	secp256k1.AddNonConst(&jp, &jq, &jr)
	return fromJacobian(&jr)
}

// Double returns 2p.
func Double(p Point) Point {
	var jp, jr secp256k1.JacobianPoint
	p.toJacobian(&jp)
	secp256k1.DoubleNonConst(&jp, &jr)
	return fromJacobian(&jr)
}

// Negate returns -p.
func Negate(p Point) Point {
	if p.Infinity {
		return p
	}
	r := p
	r.Y.Normalize()
	r.Y.Negate(1).Normalize()
	return r
}

// ScalarMult returns k*p.
func ScalarMult(k *secp256k1.ModNScalar, p Point) Point {
	var jp, jr secp256k1.JacobianPoint
	p.toJacobian(&jp)
	secp256k1.ScalarMultNonConst(k, &jp, &jr)
	return fromJacobian(&jr)
}

// ScalarBaseMult returns k*G.
func ScalarBaseMult(k *secp256k1.ModNScalar) Point {
	var jr secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &jr)
	return fromJacobian(&jr)
}

// Equal reports whether p and q are the same point.
func Equal(p, q Point) bool {
	if p.Infinity || q.Infinity {
		return p.Infinity == q.Infinity
	}
	p.X.Normalize()
	p.Y.Normalize()
	q.X.Normalize()
	q.Y.Normalize()
	return p.X.Equals(&q.X) && p.Y.Equals(&q.Y)
}

// CanonicalX returns the 32-byte big-endian x-coordinate of p. The identity
// has no x-coordinate; callers never hand it a distinguished-point candidate,
// but it returns the zero array rather than panicking.
func CanonicalX(p Point) [32]byte {
	var out [32]byte
	if p.Infinity {
		return out
	}
	p.X.Normalize()
	p.X.PutBytes(&out)
	return out
}

// IsOnCurve reports whether p satisfies y² = x³ + 7. The identity counts as
// on-curve.
func IsOnCurve(p Point) bool {
	if p.Infinity {
		return true
	}
	p.X.Normalize()
	p.Y.Normalize()
	pub := secp256k1.NewPublicKey(&p.X, &p.Y)
	return pub.IsOnCurve()
}

// DecodePoint parses a SEC1 compressed (33-byte) or uncompressed (65-byte)
// point encoding. It fails with ErrInvalidPoint unless the coordinates are in
// field range and on the curve.
func DecodePoint(encoded []byte) (Point, error) {
	pub, err := secp256k1.ParsePubKey(encoded)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	var j secp256k1.JacobianPoint
	pub.AsJacobian(&j)
	return fromJacobian(&j), nil
}

// EncodeCompressed returns the 33-byte compressed SEC1 encoding of p.
// Encoding the identity is not meaningful; it yields a zeroed slice.
func EncodeCompressed(p Point) []byte {
	if p.Infinity {
		return make([]byte, 33)
	}
	p.X.Normalize()
	p.Y.Normalize()
	return secp256k1.NewPublicKey(&p.X, &p.Y).SerializeCompressed()
}
