package board

// Legal move generation runs in two passes. The first derives everything
// about the opponent's grip on the position: the squares it controls, the
// pieces checking our king, the squares that resolve a single check and the
// pieces pinned to our king. The second walks our pieces and emits only
// destinations that survive those restrictions, so no move is ever played
// out to test its legality.

// GenerateLegalMoves returns the legal moves of the side to move and
// whether that side is in check. With capturesOnly set only moves that take
// a piece (en passant included) are returned.
func (p *Position) GenerateLegalMoves(capturesOnly bool) (MoveList, bool) {
	var ml MoveList
	inCheck := p.generateMoves(&ml, capturesOnly)
	return ml, inCheck
}

// IsInCheck reports whether the side to move is in check.
func (p *Position) IsInCheck() bool {
	us := p.SideToMove
	return p.attackersByColor(p.KingSquare(us), us.Other(), p.AllOccupied) != 0
}

// moveGen holds the first-pass results for one generation call.
type moveGen struct {
	p        *Position
	ml       *MoveList
	us, them Color
	ksq      Square
	enemies  Bitboard

	controlled Bitboard // squares the opponent attacks, our king removed
	checkers   Bitboard
	evasion    Bitboard // capture-or-block squares; Universe when not in check
	pinned     Bitboard
}

func (p *Position) generateMoves(ml *MoveList, capturesOnly bool) bool {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare(us)

	g := moveGen{
		p:       p,
		ml:      ml,
		us:      us,
		them:    them,
		ksq:     ksq,
		enemies: p.Occupied[them],
		evasion: Universe,
	}

	// The king is lifted from the occupancy so that a square further along
	// a checking ray still shows as attacked.
	g.controlled = p.controlled(them, p.AllOccupied&^SquareBB(ksq))
	g.checkers = p.attackersByColor(ksq, them, p.AllOccupied)
	inCheck := g.checkers != 0

	g.kingMoves(capturesOnly)
	if g.checkers.Several() {
		return true
	}
	if inCheck {
		g.evasion = g.checkers | Between(ksq, g.checkers.LSB())
	}
	g.pinned = p.pinnedPieces(us, ksq)

	target := ^p.Occupied[us]
	if capturesOnly {
		target = g.enemies
	}
	target &= g.evasion

	g.pawnMoves(target)
	g.pieceMoves(target)
	if !inCheck && !capturesOnly {
		g.castlingMoves()
	}
	return inCheck
}

// pinnedPieces returns us's pieces that are the single blocker between
// our king and an aligned enemy slider.
func (p *Position) pinnedPieces(us Color, ksq Square) Bitboard {
	them := us.Other()
	snipers := getRookAttacks(ksq, 0)&(p.Pieces[them][Rook]|p.Pieces[them][Queen]) |
		getBishopAttacks(ksq, 0)&(p.Pieces[them][Bishop]|p.Pieces[them][Queen])

	var pinned Bitboard
	for snipers != 0 {
		blockers := Between(ksq, snipers.PopLSB()) & p.AllOccupied
		if blockers != 0 && !blockers.Several() && blockers&p.Occupied[us] != 0 {
			pinned |= blockers
		}
	}
	return pinned
}

func (g *moveGen) add(from, to Square, promo PieceType) {
	m := Move(from)<<10 | Move(to)<<4
	if promo != NoPieceType {
		m |= Move(promo) << 1
	}
	if g.enemies&SquareBB(to) != 0 {
		m |= 1
	}
	g.ml.Add(m)
}

func (g *moveGen) addAll(from Square, dests Bitboard) {
	for dests != 0 {
		g.add(from, dests.PopLSB(), NoPieceType)
	}
}

func (g *moveGen) kingMoves(capturesOnly bool) {
	dests := kingAttacks[g.ksq] &^ g.p.Occupied[g.us] &^ g.controlled
	if capturesOnly {
		dests &= g.enemies
	}
	g.addAll(g.ksq, dests)
}

// pieceMoves emits knight, bishop, rook and queen moves. A pinned piece
// keeps only the destinations on the line through it and the king.
func (g *moveGen) pieceMoves(target Bitboard) {
	occ := g.p.AllOccupied
	for pt := Knight; pt <= Queen; pt++ {
		for bb := g.p.Pieces[g.us][pt]; bb != 0; {
			from := bb.PopLSB()
			var dests Bitboard
			switch pt {
			case Knight:
				dests = knightAttacks[from]
			case Bishop:
				dests = getBishopAttacks(from, occ)
			case Rook:
				dests = getRookAttacks(from, occ)
			case Queen:
				dests = getBishopAttacks(from, occ) | getRookAttacks(from, occ)
			}
			dests &= target
			if g.pinned&SquareBB(from) != 0 {
				dests &= lineBB[g.ksq][from]
			}
			g.addAll(from, dests)
		}
	}
}

func (g *moveGen) pawnMoves(target Bitboard) {
	p := g.p
	empty := ^p.AllOccupied
	promoRank := Rank8
	if g.us == Black {
		promoRank = Rank1
	}

	for bb := p.Pieces[g.us][Pawn]; bb != 0; {
		from := bb.PopLSB()
		allowed := target
		if g.pinned&SquareBB(from) != 0 {
			allowed &= lineBB[g.ksq][from]
		}

		push := pawnPushes[g.us][from] & empty
		if push != 0 && from.RelativeRank(g.us) == 1 {
			push |= pawnPushes[g.us][push.LSB()] & empty
		}
		dests := (push | pawnAttacks[g.us][from]&g.enemies) & allowed

		for dests != 0 {
			to := dests.PopLSB()
			if promoRank&SquareBB(to) != 0 {
				for promo := Queen; promo >= Knight; promo-- {
					g.add(from, to, promo)
				}
			} else {
				g.add(from, to, NoPieceType)
			}
		}

		if ep := p.EnPassant; ep != NoSquare && pawnAttacks[g.us][from]&SquareBB(ep) != 0 && g.enPassantLegal(from, ep) {
			g.ml.Add(Move(from)<<10 | Move(ep)<<4 | 1)
		}
	}
}

// enPassantLegal handles the capture that removes two pieces from the
// board at once. The occupancy after the capture is simulated and the
// king's rays are checked against enemy sliders; this covers both ordinary
// pins and the rank on which capturer and captured pawn stand side by side.
func (g *moveGen) enPassantLegal(from, ep Square) bool {
	capSq := ep - 8
	if g.us == Black {
		capSq = ep + 8
	}
	if (SquareBB(ep)|SquareBB(capSq))&g.evasion == 0 {
		return false
	}
	p := g.p
	occ := p.AllOccupied&^(SquareBB(from)|SquareBB(capSq)) | SquareBB(ep)
	them := &p.Pieces[g.them]
	return getRookAttacks(g.ksq, occ)&(them[Rook]|them[Queen]) == 0 &&
		getBishopAttacks(g.ksq, occ)&(them[Bishop]|them[Queen]) == 0
}

type castleRule struct {
	right    CastlingRights
	from, to Square
	rook     Square
	empty    Bitboard // must be vacant
	safe     Bitboard // must not be attacked, king start included
}

var castleRules = [2][2]castleRule{
	White: {
		{WhiteKingSideCastle, E1, G1, H1, SquareBB(F1) | SquareBB(G1), SquareBB(E1) | SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSideCastle, E1, C1, A1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(C1) | SquareBB(D1) | SquareBB(E1)},
	},
	Black: {
		{BlackKingSideCastle, E8, G8, H8, SquareBB(F8) | SquareBB(G8), SquareBB(E8) | SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSideCastle, E8, C8, A8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(C8) | SquareBB(D8) | SquareBB(E8)},
	},
}

func (g *moveGen) castlingMoves() {
	p := g.p
	for _, r := range castleRules[g.us] {
		if p.CastlingRights&r.right == 0 ||
			p.AllOccupied&r.empty != 0 ||
			g.controlled&r.safe != 0 ||
			p.Pieces[g.us][Rook]&SquareBB(r.rook) == 0 ||
			g.ksq != r.from {
			continue
		}
		g.ml.Add(Move(r.from)<<10 | Move(r.to)<<4)
	}
}
