package kangaroo

import (
	"sync"

	"github.com/holiman/uint256"
)

const tableShards = 64

// dpRecord is one stored distinguished point. Immutable once inserted; the
// first walker to reach an x-coordinate owns its entry.
type dpRecord struct {
	kind     Kind
	distance *uint256.Int
	ownerID  int
}

// insertResult reports what an insert-or-collide found.
type insertResult int

const (
	insertedNew insertResult = iota
	redundantSameKind
	crossKindCollision
)

// dpTable is the shared distinguished-point store, sharded by the high byte
// of the x-coordinate so concurrent walkers rarely contend on one lock.
type dpTable struct {
	shards [tableShards]struct {
		mu      sync.RWMutex
		entries map[[32]byte]dpRecord
	}
}

func newDPTable() *dpTable {
	t := &dpTable{}
	for i := range t.shards {
		t.shards[i].entries = make(map[[32]byte]dpRecord)
	}
	return t
}

func (t *dpTable) shardFor(x *[32]byte) int {
	return int(x[0]) % tableShards
}

// insert records a distinguished point, atomically with the collision lookup.
// On a cross-kind hit the stored record is returned so the caller can resolve
// the candidate key; the new record is not stored in that case. Same-kind
// hits are discarded.
func (t *dpTable) insert(x *[32]byte, rec dpRecord) (insertResult, dpRecord) {
	shard := &t.shards[t.shardFor(x)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if existing, ok := shard.entries[*x]; ok {
		if existing.kind == rec.kind {
			return redundantSameKind, dpRecord{}
		}
		return crossKindCollision, existing
	}
	shard.entries[*x] = rec
	return insertedNew, dpRecord{}
}

// len returns the number of stored records.
func (t *dpTable) len() int {
	n := 0
	for i := range t.shards {
		t.shards[i].mu.RLock()
		n += len(t.shards[i].entries)
		t.shards[i].mu.RUnlock()
	}
	return n
}

// storedPoint is a table entry paired with its key, the form the checkpoint
// codec consumes.
type storedPoint struct {
	x   [32]byte
	rec dpRecord
}

// snapshot copies the table contents shard by shard. Each shard is held under
// a read lock only while it is copied, so walkers keep inserting into other
// shards during a checkpoint.
func (t *dpTable) snapshot() []storedPoint {
	out := make([]storedPoint, 0, t.len())
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.RLock()
		for x, rec := range shard.entries {
			out = append(out, storedPoint{x: x, rec: rec})
		}
		shard.mu.RUnlock()
	}
	return out
}

// restore replaces the table contents with a checkpointed snapshot.
func (t *dpTable) restore(points []storedPoint) {
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.Lock()
		shard.entries = make(map[[32]byte]dpRecord)
		shard.mu.Unlock()
	}
	for _, sp := range points {
		shard := &t.shards[t.shardFor(&sp.x)]
		shard.mu.Lock()
		shard.entries[sp.x] = sp.rec
		shard.mu.Unlock()
	}
}
