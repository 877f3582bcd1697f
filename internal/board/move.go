package board

import "fmt"

// Move packs a move into 16 bits:
//
//	bits 10-15: from square
//	bits 4-9:   to square
//	bits 1-3:   promotion (0 none, 1 knight, 2 bishop, 3 rook, 4 queen)
//	bit 0:      capture
//
// Castling and en passant are not flagged; they are derived from the
// position the move is played in (see IsCastleMove and IsEnPassantMove).
type Move uint16

// NoMove is the zero move. It can never be produced by the generator
// since from and to would both be A1.
const NoMove Move = 0

// NewMove builds a move. promo is NoPieceType for non-promotions.
// It panics on an out-of-range square or promotion piece.
func NewMove(from, to Square, promo PieceType, capture bool) Move {
	if from > H8 || to > H8 {
		panic(fmt.Sprintf("board: move square out of range (%d, %d)", from, to))
	}
	var code Move
	switch promo {
	case NoPieceType:
	case Knight, Bishop, Rook, Queen:
		code = Move(promo)
	default:
		panic(fmt.Sprintf("board: invalid promotion piece %v", promo))
	}
	m := Move(from)<<10 | Move(to)<<4 | code<<1
	if capture {
		m |= 1
	}
	return m
}

func (m Move) From() Square {
	return Square(m >> 10)
}

func (m Move) To() Square {
	return Square((m >> 4) & 0x3F)
}

// Promotion returns the promoted-to piece type, or NoPieceType.
func (m Move) Promotion() PieceType {
	code := (m >> 1) & 7
	if code == 0 {
		return NoPieceType
	}
	return PieceType(code)
}

func (m Move) IsPromotion() bool {
	return (m>>1)&7 != 0
}

// IsCapture reports the capture flag, which is also set for en passant.
func (m Move) IsCapture() bool {
	return m&1 != 0
}

// String returns the coordinate form used by UCI ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// MaxMoves bounds the number of legal moves in any reachable position.
const MaxMoves = 256

// MoveList is a fixed-size list of moves so generation never allocates.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int {
	return ml.count
}

func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Contains returns true if the list holds m.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Unmove is the inverse record of one ApplyMove. It only lives as long as
// the search frame that produced it.
type Unmove struct {
	Move           Move
	Captured       PieceType // NoPieceType when nothing was taken
	EnPassantTake  bool
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
	SideToMove     Color
	Hash           uint64
}
