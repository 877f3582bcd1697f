package engine

import (
	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "exact"
	case TTLowerBound:
		return "lower"
	default:
		return "upper"
	}
}

// TTEntry is a 16-byte slot. Tag is the upper half of the Zobrist key; the
// lower half already picked the bucket.
type TTEntry struct {
	Tag        uint32
	BestMove   board.Move
	Score      int16
	Depth      uint8
	Flag       TTFlag
	Generation uint8 // 0 marks a slot never written
	_          [5]byte
}

const bucketSize = 4

type ttBucket [bucketSize]TTEntry

// TranspositionTable is a fixed array of 4-entry buckets, indexed by the
// low bits of the hash. It is not safe for concurrent use.
type TranspositionTable struct {
	buckets    []ttBucket
	mask       uint64
	generation uint8
}

// NewTranspositionTable creates a transposition table with the given size
// in MB, rounded down to a power-of-two bucket count.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / (bucketSize * 16))
	return &TranspositionTable{
		buckets:    make([]ttBucket, n),
		mask:       n - 1,
		generation: 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the first slot in the hash's bucket carrying its tag.
// A different position sharing bucket and tag is returned as a hit too, so
// a stored move must be checked against the legal move list before use.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	b := &tt.buckets[hash&tt.mask]
	tag := uint32(hash >> 32)
	for i := range b {
		if b[i].Generation != 0 && b[i].Tag == tag {
			return b[i], true
		}
	}
	return TTEntry{}, false
}

// Store writes a result. The slot is, in order of preference: the one
// already holding this tag, any slot from an
// older generation, or the shallowest slot with ties going to the oldest.
func (tt *TranspositionTable) Store(hash uint64, bestMove board.Move, score, depth int, flag TTFlag) {
	b := &tt.buckets[hash&tt.mask]
	tag := uint32(hash >> 32)
	gen := tt.generation

	victim := -1
	for i := range b {
		if b[i].Generation != 0 && b[i].Tag == tag {
			victim = i
			break
		}
	}
	if victim < 0 {
		for i := range b {
			if b[i].Generation != gen {
				victim = i
				break
			}
		}
	}
	if victim < 0 {
		victim = 0
		for i := 1; i < bucketSize; i++ {
			if b[i].Depth < b[victim].Depth ||
				(b[i].Depth == b[victim].Depth && gen-b[i].Generation > gen-b[victim].Generation) {
				victim = i
			}
		}
	}

	if depth < 0 {
		depth = 0
	}
	b[victim] = TTEntry{
		Tag:        tag,
		BestMove:   bestMove,
		Score:      int16(score),
		Depth:      uint8(depth),
		Flag:       flag,
		Generation: gen,
	}
}

// BumpGeneration makes every existing entry stale. Stale entries are still
// probed but are the first to be overwritten.
func (tt *TranspositionTable) BumpGeneration() {
	tt.generation++
	if tt.generation == 0 {
		tt.generation = 1
	}
}

// Generation returns the current generation counter.
func (tt *TranspositionTable) Generation() uint8 {
	return tt.generation
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	clear(tt.buckets)
	tt.generation = 1
}

// HashFull returns the permille of sampled slots written in the current generation.
func (tt *TranspositionTable) HashFull() int {
	sample := 250
	if sample > len(tt.buckets) {
		sample = len(tt.buckets)
	}
	used := 0
	for i := 0; i < sample; i++ {
		for _, e := range tt.buckets[i] {
			if e.Generation == tt.generation {
				used++
			}
		}
	}
	return used * 1000 / (sample * bucketSize)
}

// Buckets returns the number of buckets.
func (tt *TranspositionTable) Buckets() int {
	return len(tt.buckets)
}

// AdjustScoreToTT rebases a mate score from distance-to-root to
// distance-from-this-node before storing.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateThreshold {
		return score + ply
	}
	if score < -MateThreshold {
		return score - ply
	}
	return score
}

// AdjustScoreFromTT is the inverse of AdjustScoreToTT for the probing ply.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateThreshold {
		return score - ply
	}
	if score < -MateThreshold {
		return score + ply
	}
	return score
}
