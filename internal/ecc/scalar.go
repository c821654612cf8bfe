package ecc

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/holiman/uint256"
)

// ErrInvalidScalar is returned for hex strings that do not encode a scalar of
// at most 256 bits.
var ErrInvalidScalar = errors.New("invalid scalar encoding")

// curveOrderHex is the order of the secp256k1 group.
const curveOrderHex = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"

// CurveOrder returns the secp256k1 group order n as a fixed-width integer.
func CurveOrder() *uint256.Int {
	n, _ := ParseScalarHex(curveOrderHex)
	return n
}

// ParseScalarHex parses a big-endian hex scalar of at most 64 digits. An
// optional 0x prefix and odd digit counts are accepted, matching the loose hex
// the solver boundary has always been fed.
func ParseScalarHex(s string) (*uint256.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s) > 64 {
		return nil, ErrInvalidScalar
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidScalar
	}
	return new(uint256.Int).SetBytes(raw), nil
}

// FormatScalarHex renders v as 64 zero-padded lowercase hex digits, the
// fixed-width form the stats and checkpoint records use.
func FormatScalarHex(v *uint256.Int) string {
	b := v.Bytes32()
	return hex.EncodeToString(b[:])
}

// ToModN reduces v into a mod-n scalar for group arithmetic. Values at or
// above the group order wrap, which is the arithmetic the collision math
// wants.
func ToModN(v *uint256.Int) *secp256k1.ModNScalar {
	b := v.Bytes32()
	var s secp256k1.ModNScalar
	s.SetBytes(&b)
	return &s
}

// FromModN widens a mod-n scalar back to a fixed-width integer.
func FromModN(s *secp256k1.ModNScalar) *uint256.Int {
	var b [32]byte
	s.PutBytes(&b)
	return new(uint256.Int).SetBytes(b[:])
}

// ParsePointHex decodes a hex-encoded SEC1 point (compressed or
// uncompressed).
func ParsePointHex(s string) (Point, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	return DecodePoint(raw)
}

// FormatPointHex renders p as compressed SEC1 hex.
func FormatPointHex(p Point) string {
	return hex.EncodeToString(EncodeCompressed(p))
}
