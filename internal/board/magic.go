package board

import "fmt"

// Magic bitboards map (square, masked occupancy) to a slider attack set
// with one multiply and shift. Tables are filled at init from the
// multipliers below; each multiplier is verified to have no destructive
// collision first, and a replacement is searched for if one fails.

// Magic holds the lookup parameters for one square.
type Magic struct {
	Mask   Bitboard // relevant occupancy, board edges excluded
	Magic  uint64
	Shift  uint8
	Offset uint32 // start of this square's slice of the attack table
}

func (m *Magic) index(occupied Bitboard) uint32 {
	return m.Offset + uint32((uint64(occupied&m.Mask)*m.Magic)>>m.Shift)
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	bishopTable [5248]Bitboard
	rookTable   [102400]Bitboard
)

// Multipliers, as produced by cmd/chess-magics.
var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

// magicSeed seeds the fallback search so that the built tables are
// identical from run to run.
const magicSeed = 0x5D1C4A7F00C0FFEE

func initMagics() {
	rng := newPRNG(magicSeed)
	fillMagics(&bishopMagics, bishopTable[:], &bishopMagicNumbers, true, rng)
	fillMagics(&rookMagics, rookTable[:], &rookMagicNumbers, false, rng)
}

func fillMagics(magics *[64]Magic, table []Bitboard, numbers *[64]uint64, bishop bool, rng *prng) {
	var offset uint32
	for sq := A1; sq <= H8; sq++ {
		mask := sliderMask(sq, bishop)
		bits := mask.PopCount()

		magic := numbers[sq]
		if !VerifyMagic(sq, bishop, magic) {
			found, err := FindMagic(sq, bishop, rng.next)
			if err != nil {
				panic(fmt.Sprintf("board: no magic for %v: %v", sq, err))
			}
			numbers[sq] = found
			magic = found
		}

		magics[sq] = Magic{
			Mask:   mask,
			Magic:  magic,
			Shift:  uint8(64 - bits),
			Offset: offset,
		}
		for i := 0; i < 1<<bits; i++ {
			occ := indexToOccupancy(i, bits, mask)
			table[magics[sq].index(occ)] = slowAttacks(sq, occ, bishop)
		}
		offset += 1 << bits
	}
	if int(offset) != len(table) {
		panic(fmt.Sprintf("board: magic table size %d, want %d", len(table), offset))
	}
}

// MagicMultipliers returns the multipliers in use, after any replacement.
func MagicMultipliers(bishop bool) [64]uint64 {
	if bishop {
		return bishopMagicNumbers
	}
	return rookMagicNumbers
}

// sliderMask returns the relevant occupancy for a slider on sq: its
// empty-board rays minus the last square of each ray.
func sliderMask(sq Square, bishop bool) Bitboard {
	if bishop {
		return bishopAttacksSlow(sq, 0) &^ edges
	}
	var mask Bitboard
	file, rank := sq.File(), sq.Rank()
	for f := 1; f < 7; f++ {
		if f != file {
			mask |= SquareBB(NewSquare(f, rank))
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= SquareBB(NewSquare(file, r))
		}
	}
	return mask
}

// indexToOccupancy maps the low bits of index onto the squares of mask.
func indexToOccupancy(index, bits int, mask Bitboard) Bitboard {
	var occ Bitboard
	for i := 0; i < bits; i++ {
		sq := mask.PopLSB()
		if index&(1<<i) != 0 {
			occ |= SquareBB(sq)
		}
	}
	return occ
}

func slowAttacks(sq Square, occupied Bitboard, bishop bool) Bitboard {
	if bishop {
		return bishopAttacksSlow(sq, occupied)
	}
	return rookAttacksSlow(sq, occupied)
}

func bishopAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, occupied, directions[4:])
}

func rookAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, occupied, directions[:4])
}

// rayAttacks marches each direction until the edge or the first blocker,
// which is included.
func rayAttacks(sq Square, occupied Bitboard, dirs [][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for onBoard(f, r) {
			s := SquareBB(NewSquare(f, r))
			attacks |= s
			if occupied&s != 0 {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}

func getBishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return bishopTable[bishopMagics[sq].index(occupied)]
}

func getRookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rookTable[rookMagics[sq].index(occupied)]
}
