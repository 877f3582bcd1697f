package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
// The last ply is counted from the move list length without playing it.
func Perft(p *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves, _ := p.GenerateLegalMoves(false)
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		u := p.ApplyMove(moves.Get(i))
		nodes += Perft(p, depth-1)
		p.ApplyUnmove(u)
	}
	return nodes
}

// DivideEntry is the subtree size below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// PerftDivide returns the perft count of every root move, in generation order.
func PerftDivide(p *Position, depth int) []DivideEntry {
	if depth < 1 {
		return nil
	}
	moves, _ := p.GenerateLegalMoves(false)
	out := make([]DivideEntry, 0, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		u := p.ApplyMove(m)
		out = append(out, DivideEntry{Move: m, Nodes: Perft(p, depth-1)})
		p.ApplyUnmove(u)
	}
	return out
}
