package board

// Static attack tables, built once at package init and read-only afterwards.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
	pawnPushes    [2][64]Bitboard // [Color][Square] single push target

	betweenBB [64][64]Bitboard // squares strictly between two aligned squares
	lineBB    [64][64]Bitboard // full edge-to-edge line through two aligned squares
)

func init() {
	initLeaperAttacks()
	initLines()
	initMagics()
}

func initLeaperAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&NotFileA | (bb<<15)&NotFileH |
			(bb>>17)&NotFileH | (bb>>15)&NotFileA |
			(bb<<10)&NotFileAB | (bb<<6)&NotFileGH |
			(bb>>10)&NotFileGH | (bb>>6)&NotFileAB

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
		pawnPushes[White][sq] = bb.North()
		pawnPushes[Black][sq] = bb.South()
	}
}

var directions = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// initLines walks each of the eight rays from every square. Every square
// met on the way is aligned with the origin.
func initLines() {
	for sq := A1; sq <= H8; sq++ {
		for _, d := range directions {
			var between Bitboard
			f, r := sq.File()+d[0], sq.Rank()+d[1]
			for onBoard(f, r) {
				to := NewSquare(f, r)
				betweenBB[sq][to] = between
				between |= SquareBB(to)
				f += d[0]
				r += d[1]
			}
			// between now holds the whole ray; the line adds the opposite ray.
			var opposite Bitboard
			f, r = sq.File()-d[0], sq.Rank()-d[1]
			for onBoard(f, r) {
				opposite |= SquareBB(NewSquare(f, r))
				f -= d[0]
				r -= d[1]
			}
			line := between | opposite | SquareBB(sq)
			for ray := between; ray != 0; {
				lineBB[sq][ray.PopLSB()] = line
			}
		}
	}
}

func onBoard(f, r int) bool {
	return f >= 0 && f <= 7 && r >= 0 && r <= 7
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a c pawn on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// PawnPushes returns the single push target of a c pawn on sq.
func PawnPushes(sq Square, c Color) Bitboard {
	return pawnPushes[c][sq]
}

// BishopAttacks returns bishop attacks from sq, stopping at and including
// the first blocker in each direction.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return getBishopAttacks(sq, occupied)
}

// RookAttacks is BishopAttacks for the orthogonal directions.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return getRookAttacks(sq, occupied)
}

func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return getBishopAttacks(sq, occupied) | getRookAttacks(sq, occupied)
}

// Between returns the squares strictly between sq1 and sq2, empty if they
// are not on a common rank, file or diagonal.
func Between(sq1, sq2 Square) Bitboard {
	return betweenBB[sq1][sq2]
}

// Line returns the full line through sq1 and sq2, empty if not aligned.
func Line(sq1, sq2 Square) Bitboard {
	return lineBB[sq1][sq2]
}

// attackersByColor returns c's pieces attacking sq given the occupancy.
func (p *Position) attackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	pcs := &p.Pieces[c]
	return (pawnAttacks[c.Other()][sq] & pcs[Pawn]) |
		(knightAttacks[sq] & pcs[Knight]) |
		(kingAttacks[sq] & pcs[King]) |
		(getBishopAttacks(sq, occupied) & (pcs[Bishop] | pcs[Queen])) |
		(getRookAttacks(sq, occupied) & (pcs[Rook] | pcs[Queen]))
}

// IsSquareAttacked reports whether any piece of byColor attacks sq.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.attackersByColor(sq, byColor, p.AllOccupied) != 0
}

// controlled returns every square c's pieces attack, sliders seeing through
// nothing but the given occupancy.
func (p *Position) controlled(c Color, occupied Bitboard) Bitboard {
	pcs := &p.Pieces[c]
	var att Bitboard
	if c == White {
		att = pcs[Pawn].NorthEast() | pcs[Pawn].NorthWest()
	} else {
		att = pcs[Pawn].SouthEast() | pcs[Pawn].SouthWest()
	}
	for bb := pcs[Knight]; bb != 0; {
		att |= knightAttacks[bb.PopLSB()]
	}
	for bb := pcs[Bishop] | pcs[Queen]; bb != 0; {
		att |= getBishopAttacks(bb.PopLSB(), occupied)
	}
	for bb := pcs[Rook] | pcs[Queen]; bb != 0; {
		att |= getRookAttacks(bb.PopLSB(), occupied)
	}
	for bb := pcs[King]; bb != 0; {
		att |= kingAttacks[bb.PopLSB()]
	}
	return att
}

// ControlledSquares returns the set of squares c attacks in the current position.
func (p *Position) ControlledSquares(c Color) Bitboard {
	return p.controlled(c, p.AllOccupied)
}
