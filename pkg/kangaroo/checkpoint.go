package kangaroo

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/holiman/uint256"

	"github.com/mahdiidarabi/ec-kangaroo/internal/ecc"
)

// checkpointVersion is bumped whenever the file layout changes.
const checkpointVersion = 1

// The checkpoint file is a single JSON document: the original tooling kept
// checkpoints human-readable, and resuming only ever reads one file, so a
// structured-text record beats a binary one.
type checkpointFile struct {
	Version   int              `json:"version"`
	CreatedAt int64            `json:"created_at"`
	Config    checkpointConfig `json:"config"`

	ElapsedSeconds uint64             `json:"elapsed_seconds"`
	Counters       checkpointCounters `json:"counters"`

	Solved   bool   `json:"is_solved"`
	FoundKey string `json:"found_key,omitempty"`

	Kangaroos           []checkpointKangaroo `json:"kangaroos"`
	DistinguishedPoints []checkpointDP       `json:"distinguished_points"`
}

type checkpointConfig struct {
	Target            string `json:"target"`
	RangeStart        string `json:"range_start"`
	RangeEnd          string `json:"range_end"`
	Threads           int    `json:"threads"`
	DistinguishedBits int    `json:"distinguished_bits"`
}

type checkpointCounters struct {
	TotalJumps          uint64 `json:"total_jumps"`
	DistinguishedPoints uint64 `json:"distinguished_points"`
	CollisionsFound     uint64 `json:"collisions_found"`
	FalseCollisions     uint64 `json:"false_collisions"`
	RedundantPoints     uint64 `json:"redundant_points"`
}

type checkpointKangaroo struct {
	Kind     string `json:"kind"`
	Position string `json:"position"`
	Distance string `json:"distance"`
	HerdID   int    `json:"herd_id"`
}

type checkpointDP struct {
	X        string `json:"x"`
	Kind     string `json:"kind"`
	Distance string `json:"distance"`
	OwnerID  int    `json:"owner_id"`
}

func kindFromString(s string) (Kind, bool) {
	switch s {
	case "tame":
		return Tame, true
	case "wild":
		return Wild, true
	default:
		return Tame, false
	}
}

// SaveCheckpoint writes a complete resumable snapshot to path. The file is
// written to a temporary sibling and renamed into place, so a crash mid-write
// never leaves a truncated checkpoint behind. Callable while running: walkers
// are paused one at a time while their state is copied, never for the
// duration of the file write.
func (s *Solver) SaveCheckpoint(path string) error {
	s.mu.Lock()
	if s.state == stateUninitialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	cfg := s.cfg
	table := s.table
	slots := s.slots

	elapsed := s.elapsedBase
	if s.state == stateRunning {
		elapsed += time.Since(s.startedAt)
	}
	s.mu.Unlock()

	ck := checkpointFile{
		Version:   checkpointVersion,
		CreatedAt: time.Now().Unix(),
		Config: checkpointConfig{
			Target:            cfg.targetHex,
			RangeStart:        ecc.FormatScalarHex(cfg.rangeStart),
			RangeEnd:          ecc.FormatScalarHex(cfg.rangeEnd),
			Threads:           cfg.threads,
			DistinguishedBits: cfg.distinguishedBits,
		},
		ElapsedSeconds: uint64(elapsed / time.Second),
		Counters: checkpointCounters{
			TotalJumps:          s.totalJumps.Load(),
			DistinguishedPoints: s.distinguishedPoints.Load(),
			CollisionsFound:     s.collisionsFound.Load(),
			FalseCollisions:     s.falseCollisions.Load(),
			RedundantPoints:     s.redundantPoints.Load(),
		},
		Solved: s.solved.Load(),
	}
	if key := s.foundKey.Load(); ck.Solved && key != nil {
		ck.FoundKey = ecc.FormatScalarHex(key)
	}

	ck.Kangaroos = make([]checkpointKangaroo, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		w := slot.w
		ck.Kangaroos = append(ck.Kangaroos, checkpointKangaroo{
			Kind:     w.kind.String(),
			Position: ecc.FormatPointHex(w.position),
			Distance: ecc.FormatScalarHex(w.distance),
			HerdID:   w.herdID,
		})
		slot.mu.Unlock()
	}

	for _, sp := range table.snapshot() {
		ck.DistinguishedPoints = append(ck.DistinguishedPoints, checkpointDP{
			X:        hex.EncodeToString(sp.x[:]),
			Kind:     sp.rec.kind.String(),
			Distance: ecc.FormatScalarHex(sp.rec.distance),
			OwnerID:  sp.rec.ownerID,
		})
	}

	return writeFileAtomic(path, ck)
}

func writeFileAtomic(path string, ck checkpointFile) error {
	data, err := json.MarshalIndent(ck, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint replaces the solver's in-memory state with a snapshot saved
// for the same target and range. The solver must be initialized and must not
// be running. On success the solver is ready to Start and resume the walk.
func (s *Solver) LoadCheckpoint(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateUninitialized:
		return ErrNotInitialized
	case stateRunning:
		return ErrAlreadyRunning
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}

	var ck checkpointFile
	if err := json.Unmarshal(data, &ck); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptCheckpoint, err)
	}
	if ck.Version != checkpointVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptCheckpoint, ck.Version)
	}

	if ck.Config.Target != s.cfg.targetHex ||
		ck.Config.RangeStart != ecc.FormatScalarHex(s.cfg.rangeStart) ||
		ck.Config.RangeEnd != ecc.FormatScalarHex(s.cfg.rangeEnd) ||
		ck.Config.DistinguishedBits != s.cfg.distinguishedBits {
		return ErrRangeMismatch
	}

	slots, err := decodeKangaroos(ck.Kangaroos)
	if err != nil {
		return err
	}
	points, err := decodeDistinguished(ck.DistinguishedPoints)
	if err != nil {
		return err
	}

	var foundKey *uint256.Int
	if ck.Solved {
		foundKey, err = ecc.ParseScalarHex(ck.FoundKey)
		if err != nil {
			return fmt.Errorf("%w: bad found key", ErrCorruptCheckpoint)
		}
	}

	s.slots = slots
	s.table.restore(points)
	s.totalJumps.Store(ck.Counters.TotalJumps)
	s.distinguishedPoints.Store(ck.Counters.DistinguishedPoints)
	s.collisionsFound.Store(ck.Counters.CollisionsFound)
	s.falseCollisions.Store(ck.Counters.FalseCollisions)
	s.redundantPoints.Store(ck.Counters.RedundantPoints)
	s.elapsedBase = time.Duration(ck.ElapsedSeconds) * time.Second
	s.solved.Store(ck.Solved)
	s.foundKey.Store(foundKey)
	s.stopFlag.Store(false)
	s.state = stateInitialized

	s.log.Info("checkpoint loaded",
		"path", path,
		"kangaroos", len(slots),
		"distinguished_points", len(points),
		"total_jumps", ck.Counters.TotalJumps)
	return nil
}

func decodeKangaroos(entries []checkpointKangaroo) ([]*walkerSlot, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no kangaroo states", ErrCorruptCheckpoint)
	}

	slots := make([]*walkerSlot, 0, len(entries))
	for _, e := range entries {
		kind, ok := kindFromString(e.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown kangaroo kind %q", ErrCorruptCheckpoint, e.Kind)
		}
		pos, err := ecc.ParsePointHex(e.Position)
		if err != nil {
			return nil, fmt.Errorf("%w: bad kangaroo position", ErrCorruptCheckpoint)
		}
		dist, err := ecc.ParseScalarHex(e.Distance)
		if err != nil {
			return nil, fmt.Errorf("%w: bad kangaroo distance", ErrCorruptCheckpoint)
		}
		slots = append(slots, &walkerSlot{w: &walker{
			kind:     kind,
			herdID:   e.HerdID,
			position: pos,
			distance: dist,
		}})
	}
	return slots, nil
}

func decodeDistinguished(entries []checkpointDP) ([]storedPoint, error) {
	points := make([]storedPoint, 0, len(entries))
	for _, e := range entries {
		raw, err := hex.DecodeString(e.X)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("%w: bad distinguished x", ErrCorruptCheckpoint)
		}
		kind, ok := kindFromString(e.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown distinguished kind %q", ErrCorruptCheckpoint, e.Kind)
		}
		dist, err := ecc.ParseScalarHex(e.Distance)
		if err != nil {
			return nil, fmt.Errorf("%w: bad distinguished distance", ErrCorruptCheckpoint)
		}

		var sp storedPoint
		copy(sp.x[:], raw)
		sp.rec = dpRecord{kind: kind, distance: dist, ownerID: e.OwnerID}
		points = append(points, sp)
	}
	return points, nil
}
