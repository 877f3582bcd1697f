package board

import (
	"fmt"
	"strings"
)

// CastlingRights holds the four independent castling flags.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Count returns how many of c's two rights remain.
func (cr CastlingRights) Count(c Color) int {
	side := (cr >> (2 * c)) & 3
	return int(side&1) + int(side>>1)
}

// castlingRevoke[sq] lists the rights lost when a move starts or ends on sq.
var castlingRevoke = func() (t [64]CastlingRights) {
	t[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	t[H1] = WhiteKingSideCastle
	t[A1] = WhiteQueenSideCastle
	t[E8] = BlackKingSideCastle | BlackQueenSideCastle
	t[H8] = BlackKingSideCastle
	t[A8] = BlackQueenSideCastle
	return t
}()

// Position is the mutable board state. A single Position is mutated in
// place by ApplyMove/ApplyUnmove pairs for the whole search tree.
type Position struct {
	Pieces      [2][6]Bitboard // [Color][PieceType]
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // square skipped by the last double push, NoSquare otherwise
	HalfMoveClock  int
	FullMoveNumber int

	Hash uint64
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy returns an independent copy of the position.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

// Equal compares every field, hash included.
func (p *Position) Equal(o *Position) bool {
	return *p == *o
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	return NewPiece(p.PieceTypeAt(sq, c), c)
}

// PieceTypeAt scans c's six bitboards for the piece on sq. The caller must
// already know the square holds a piece of that color; it panics otherwise.
func (p *Position) PieceTypeAt(sq Square, c Color) PieceType {
	bb := SquareBB(sq)
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return pt
		}
	}
	panic(fmt.Sprintf("board: no %v piece on %v", c, sq))
}

// KingSquare returns the square of c's king. It panics if there is none.
func (p *Position) KingSquare(c Color) Square {
	k := p.Pieces[c][King]
	if k == 0 {
		panic(fmt.Sprintf("board: %v has no king", c))
	}
	return k.LSB()
}

// IsCastleMove reports whether m is a king two-square shift for the side to move.
func (p *Position) IsCastleMove(m Move) bool {
	from, to := m.From(), m.To()
	if p.Pieces[p.SideToMove][King]&SquareBB(from) == 0 {
		return false
	}
	d := int(to) - int(from)
	return d == 2 || d == -2
}

// IsEnPassantMove reports whether m is a pawn capture onto the en passant square.
func (p *Position) IsEnPassantMove(m Move) bool {
	return p.EnPassant != NoSquare && m.To() == p.EnPassant &&
		p.Pieces[p.SideToMove][Pawn]&SquareBB(m.From()) != 0
}

// addPiece, removePiece and movePiece keep occupancy and hash in step with
// the piece bitboards.
func (p *Position) addPiece(c Color, pt PieceType, sq Square) {
	bb := SquareBB(sq)
	if p.AllOccupied&bb != 0 {
		panic(fmt.Sprintf("board: add %v %v onto occupied %v", c, pt, sq))
	}
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Hash ^= zobristPiece[c][pt][sq]
}

func (p *Position) removePiece(c Color, pt PieceType, sq Square) {
	bb := SquareBB(sq)
	if p.Pieces[c][pt]&bb == 0 {
		panic(fmt.Sprintf("board: remove absent %v %v from %v", c, pt, sq))
	}
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= zobristPiece[c][pt][sq]
}

func (p *Position) movePiece(c Color, pt PieceType, from, to Square) {
	p.removePiece(c, pt, from)
	p.addPiece(c, pt, to)
}

// castleRookSquares returns the rook's origin and destination for a king
// landing on kingTo.
func castleRookSquares(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}

// ApplyMove plays m, which must be legal in this position, and returns the
// record needed to take it back.
func (p *Position) ApplyMove(m Move) Unmove {
	us, them := p.SideToMove, p.SideToMove.Other()
	from, to := m.From(), m.To()

	u := Unmove{
		Move:           m,
		Captured:       NoPieceType,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		SideToMove:     us,
		Hash:           p.Hash,
	}

	pt := p.PieceTypeAt(from, us)
	castle := pt == King && (int(to)-int(from) == 2 || int(from)-int(to) == 2)

	if pt == Pawn && to == p.EnPassant {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.removePiece(them, Pawn, capSq)
		u.Captured = Pawn
		u.EnPassantTake = true
	} else if p.Occupied[them]&SquareBB(to) != 0 {
		u.Captured = p.PieceTypeAt(to, them)
		p.removePiece(them, u.Captured, to)
	}

	if promo := m.Promotion(); promo != NoPieceType {
		p.removePiece(us, Pawn, from)
		p.addPiece(us, promo, to)
	} else {
		p.movePiece(us, pt, from, to)
	}
	if castle {
		rf, rt := castleRookSquares(to)
		p.movePiece(us, Rook, rf, rt)
	}

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}
	if pt == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		p.EnPassant = (from + to) / 2
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	if rights := p.CastlingRights &^ (castlingRevoke[from] | castlingRevoke[to]); rights != p.CastlingRights {
		p.Hash ^= zobristCastling[p.CastlingRights] ^ zobristCastling[rights]
		p.CastlingRights = rights
	}

	if pt == Pawn || u.Captured != NoPieceType {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = them
	p.Hash ^= zobristSideToMove

	return u
}

// ApplyUnmove takes back the move recorded in u. The hash is restored from
// the record rather than recomputed.
func (p *Position) ApplyUnmove(u Unmove) {
	us, them := u.SideToMove, u.SideToMove.Other()
	from, to := u.Move.From(), u.Move.To()

	if promo := u.Move.Promotion(); promo != NoPieceType {
		p.removePiece(us, promo, to)
		p.addPiece(us, Pawn, from)
	} else {
		pt := p.PieceTypeAt(to, us)
		p.movePiece(us, pt, to, from)
		if pt == King && (int(to)-int(from) == 2 || int(from)-int(to) == 2) {
			rf, rt := castleRookSquares(to)
			p.movePiece(us, Rook, rt, rf)
		}
	}

	if u.EnPassantTake {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.addPiece(them, Pawn, capSq)
	} else if u.Captured != NoPieceType {
		p.addPiece(them, u.Captured, to)
	}

	p.SideToMove = us
	p.CastlingRights = u.CastlingRights
	p.EnPassant = u.EnPassant
	p.HalfMoveClock = u.HalfMoveClock
	p.FullMoveNumber = u.FullMoveNumber
	p.Hash = u.Hash
}

// ComputeHash recomputes the Zobrist key from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				hash ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}
	hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	return hash
}

// updateOccupied rebuilds the occupancy unions from the piece bitboards.
func (p *Position) updateOccupied() {
	p.Occupied = [2]Bitboard{}
	for pt := Pawn; pt <= King; pt++ {
		p.Occupied[White] |= p.Pieces[White][pt]
		p.Occupied[Black] |= p.Pieces[Black][pt]
	}
	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
}

// Validate checks the structural invariants a searchable position needs.
func (p *Position) Validate() error {
	if p.Pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}
	var seen Bitboard
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			if seen&p.Pieces[c][pt] != 0 {
				return fmt.Errorf("square holds more than one piece")
			}
			seen |= p.Pieces[c][pt]
		}
	}
	them := p.SideToMove.Other()
	if p.attackersByColor(p.KingSquare(them), p.SideToMove, p.AllOccupied) != 0 {
		return fmt.Errorf("%v king can be captured", them)
	}
	return nil
}

// String returns a plain diagram with the state fields underneath.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}
