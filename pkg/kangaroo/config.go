package kangaroo

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// Limits on the tunable parameters accepted by Init.
const (
	MaxThreads           = 64
	MaxDistinguishedBits = 32
	jumpTableSize        = 256
)

// Config carries the parameters for one solving run. The hex fields accept an
// optional 0x prefix; the target is a SEC1 compressed or uncompressed point.
type Config struct {
	// TargetHex is the public key whose discrete log is searched for.
	TargetHex string

	// RangeStartHex and RangeEndHex bound the scalar as a closed interval
	// [start, end].
	RangeStartHex string
	RangeEndHex   string

	// Threads is the worker count, 1 to MaxThreads.
	Threads int

	// DistinguishedBits is the number of trailing zero bits of the canonical
	// x-coordinate that make a point distinguished, 1 to MaxDistinguishedBits.
	DistinguishedBits int
}

// solverConfig is the validated, decoded form of Config. Immutable for the
// lifetime of a run.
type solverConfig struct {
	target            ecc.Point
	targetHex         string
	rangeStart        *uint256.Int
	rangeEnd          *uint256.Int
	span              *uint256.Int
	threads           int
	distinguishedBits int
	dpMask            uint32
}

// parseConfig validates cfg and decodes it into its working form. It mutates
// nothing on failure so a rejected Init leaves prior state untouched.
func parseConfig(cfg Config) (*solverConfig, error) {
	if cfg.Threads < 1 || cfg.Threads > MaxThreads {
		return nil, fmt.Errorf("%w: threads must be in [1,%d], got %d", ErrInvalidConfig, MaxThreads, cfg.Threads)
	}
	if cfg.DistinguishedBits < 1 || cfg.DistinguishedBits > MaxDistinguishedBits {
		return nil, fmt.Errorf("%w: distinguished bits must be in [1,%d], got %d", ErrInvalidConfig, MaxDistinguishedBits, cfg.DistinguishedBits)
	}

	target, err := ecc.ParsePointHex(cfg.TargetHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPoint, cfg.TargetHex)
	}
	if target.Infinity {
		return nil, fmt.Errorf("%w: target cannot be the identity", ErrInvalidPoint)
	}

	start, err := ecc.ParseScalarHex(cfg.RangeStartHex)
	if err != nil {
		return nil, fmt.Errorf("%w: bad range start %q", ErrInvalidRange, cfg.RangeStartHex)
	}
	end, err := ecc.ParseScalarHex(cfg.RangeEndHex)
	if err != nil {
		return nil, fmt.Errorf("%w: bad range end %q", ErrInvalidRange, cfg.RangeEndHex)
	}
	if start.Cmp(end) >= 0 {
		return nil, fmt.Errorf("%w: start >= end", ErrInvalidRange)
	}
	if end.Cmp(ecc.CurveOrder()) >= 0 {
		return nil, fmt.Errorf("%w: end exceeds the group order", ErrInvalidRange)
	}

	return &solverConfig{
		target:            target,
		targetHex:         ecc.FormatPointHex(target),
		rangeStart:        start,
		rangeEnd:          end,
		span:              new(uint256.Int).Sub(end, start),
		threads:           cfg.Threads,
		distinguishedBits: cfg.DistinguishedBits,
		dpMask:            uint32((uint64(1) << uint(cfg.DistinguishedBits)) - 1),
	}, nil
}
