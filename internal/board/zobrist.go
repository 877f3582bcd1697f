package board

// Zobrist keys. A fixed seed keeps hashes stable across runs so that
// persisted analysis stays addressable.
var (
	zobristPiece      [2][6][64]uint64 // [Color][PieceType][Square]
	zobristEnPassant  [8]uint64        // by file of the en passant square
	zobristCastling   [16]uint64       // by full CastlingRights value
	zobristSideToMove uint64           // present when Black is to move
)

const zobristSeed = 0x98F107A2BEEF1234

func init() {
	rng := newPRNG(zobristSeed)
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// prng is xorshift64*, used wherever a reproducible stream is needed.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}
