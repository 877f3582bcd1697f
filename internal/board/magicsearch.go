package board

import (
	"errors"
	"math/bits"
)

// ErrMagicNotFound is returned when FindMagic exhausts its attempts.
var ErrMagicNotFound = errors.New("magic not found")

const magicAttempts = 10_000_000

// magicSet is every relevant occupancy of one square with its attack set.
type magicSet struct {
	mask    Bitboard
	bits    int
	occ     []Bitboard
	attacks []Bitboard
}

func newMagicSet(sq Square, bishop bool) *magicSet {
	mask := sliderMask(sq, bishop)
	n := mask.PopCount()
	s := &magicSet{
		mask:    mask,
		bits:    n,
		occ:     make([]Bitboard, 1<<n),
		attacks: make([]Bitboard, 1<<n),
	}
	for i := range s.occ {
		s.occ[i] = indexToOccupancy(i, n, mask)
		s.attacks[i] = slowAttacks(sq, s.occ[i], bishop)
	}
	return s
}

// collides reports whether magic sends two occupancies with different
// attack sets to the same slot. used and stamp let one scratch table
// serve many candidates without clearing.
func (s *magicSet) collides(magic uint64, used []Bitboard, seen []uint32, stamp uint32) bool {
	shift := 64 - s.bits
	for i, occ := range s.occ {
		idx := (uint64(occ) * magic) >> shift
		if seen[idx] != stamp {
			seen[idx] = stamp
			used[idx] = s.attacks[i]
		} else if used[idx] != s.attacks[i] {
			return true
		}
	}
	return false
}

// VerifyMagic reports whether magic indexes every occupancy subset of the
// square's mask without a destructive collision.
func VerifyMagic(sq Square, bishop bool, magic uint64) bool {
	s := newMagicSet(sq, bishop)
	n := 1 << s.bits
	return !s.collides(magic, make([]Bitboard, n), make([]uint32, n), 1)
}

// FindMagic searches sparse random multipliers for sq until one verifies.
// next supplies uniformly random 64-bit values.
func FindMagic(sq Square, bishop bool, next func() uint64) (uint64, error) {
	s := newMagicSet(sq, bishop)
	n := 1 << s.bits
	used := make([]Bitboard, n)
	seen := make([]uint32, n)

	for attempt := uint32(1); attempt <= magicAttempts; attempt++ {
		magic := next() & next() & next()
		if bits.OnesCount64((uint64(s.mask)*magic)&0xFF00000000000000) < 6 {
			continue
		}
		if !s.collides(magic, used, seen, attempt) {
			return magic, nil
		}
	}
	return 0, ErrMagicNotFound
}
