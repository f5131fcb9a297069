package engine

import "github.com/tczajka/wazir-drop/internal/board"

// Bound is the type of score stored in a table entry.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower // fail high: real score >= stored score
	BoundUpper // fail low: real score <= stored score
)

// TTEntry is one slot of a bucket: 16 bytes.
type TTEntry struct {
	Key   uint32 // high bits of the hash
	Move  board.Move
	Score int32
	Depth int16
	Bound Bound
	epoch uint8
}

// A bucket is one cache line of four entries.
type ttBucket struct {
	entries [4]TTEntry
}

// TransTable is the transposition table: power-of-two bucket count,
// bucket index from the hash low bits, 32-bit tag from the high bits.
// Single-searcher access, no locking.
type TransTable struct {
	buckets []ttBucket
	mask    uint64
	epoch   uint8
}

// NewTransTable creates a table of about sizeMB megabytes.
func NewTransTable(sizeMB int) *TransTable {
	numBuckets := uint64(1)
	for numBuckets*2*64 <= uint64(sizeMB)<<20 {
		numBuckets *= 2
	}
	return &TransTable{
		buckets: make([]ttBucket, numBuckets),
		mask:    numBuckets - 1,
		epoch:   1,
	}
}

// NewEpoch starts a new root search; entries of older epochs become
// preferred replacement victims.
func (tt *TransTable) NewEpoch() {
	tt.epoch++
	if tt.epoch == 0 {
		tt.epoch = 1
	}
}

// Probe returns the entry for a hash if its tag matches.
func (tt *TransTable) Probe(hash uint64) (TTEntry, bool) {
	bucket := &tt.buckets[hash&tt.mask]
	key := uint32(hash >> 32)
	for i := range bucket.entries {
		if e := &bucket.entries[i]; e.Key == key && e.Bound != BoundNone {
			return *e, true
		}
	}
	return TTEntry{}, false
}

// Store saves a search result. The victim is chosen in order of
// preference: the entry already holding this position, any entry from
// another epoch, then the shallowest entry.
func (tt *TransTable) Store(hash uint64, depth int, score int, bound Bound, move board.Move) {
	bucket := &tt.buckets[hash&tt.mask]
	key := uint32(hash >> 32)

	victim := &bucket.entries[0]
	bestRank := -1
	for i := range bucket.entries {
		e := &bucket.entries[i]
		rank := int(512 - e.Depth)
		if e.Bound == BoundNone || e.epoch != tt.epoch {
			rank += 1 << 12
		}
		if e.Key == key && e.Bound != BoundNone {
			rank += 1 << 13
		}
		if rank > bestRank {
			bestRank = rank
			victim = e
		}
	}

	*victim = TTEntry{
		Key:   key,
		Move:  move,
		Score: int32(score),
		Depth: int16(depth),
		Bound: bound,
		epoch: tt.epoch,
	}
}
