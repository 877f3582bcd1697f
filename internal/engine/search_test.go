package engine

import (
	"testing"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

func mustFEN(t testing.TB, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return pos
}

var material = Evaluator{}

func TestCheckmatedScore(t *testing.T) {
	pos := mustFEN(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	s := NewSearcher(pos, NewTranspositionTable(1), DefaultEvaluator, nil)

	if got := s.Negamax(2, -Infinity, Infinity); got != -MateScore {
		t.Errorf("Negamax on a mated position = %d, want %d", got, -MateScore)
	}
}

func TestStalemateScore(t *testing.T) {
	pos := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	s := NewSearcher(pos, NewTranspositionTable(1), DefaultEvaluator, nil)

	if got := s.Negamax(3, -Infinity, Infinity); got != 0 {
		t.Errorf("Negamax on stalemate = %d, want 0", got)
	}
}

func TestMateInOne(t *testing.T) {
	pos := mustFEN(t, "4k3/8/4K3/8/8/8/8/R7 w - - 0 1")
	eng := NewEngine(Options{HashMB: 1})

	for depth := 1; depth <= 3; depth++ {
		moves, _ := eng.EvaluateAllMoves(pos, depth)
		if len(moves) == 0 {
			t.Fatalf("depth %d: no moves returned", depth)
		}
		best := moves[0]
		if best.Move.String() != "a1a8" {
			t.Errorf("depth %d: best move %s, want a1a8", depth, best.Move)
		}
		if best.Score != MateScore-1 {
			t.Errorf("depth %d: score %d, want %d", depth, best.Score, MateScore-1)
		}
		if ScoreToString(best.Score) != "Mate in 1" {
			t.Errorf("depth %d: ScoreToString = %q", depth, ScoreToString(best.Score))
		}
	}
}

func TestQuiescenceWinsHangingQueen(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	s := NewSearcher(pos, NewTranspositionTable(1), material, nil)

	if got := s.Quiescence(-Infinity, Infinity); got != RookValue {
		t.Errorf("Quiescence = %d, want %d", got, RookValue)
	}
	if s.Stats().QNodes == 0 {
		t.Error("expected quiescence nodes to be counted")
	}
}

func TestQuiescenceStandPat(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	s := NewSearcher(pos, NewTranspositionTable(1), material, nil)

	if got := s.Quiescence(-Infinity, Infinity); got != QueenValue {
		t.Errorf("Quiescence = %d, want %d", got, QueenValue)
	}
}

func TestSearchRestoresPosition(t *testing.T) {
	pos := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	orig := pos.Copy()

	eng := NewEngine(Options{HashMB: 4})
	eng.EvaluateAllMoves(pos, 3)

	if !pos.Equal(orig) {
		t.Errorf("position changed by search:\n%s\nwant:\n%s", pos, orig)
	}
}

func TestEvaluateAllMovesSorted(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(Options{HashMB: 4})

	moves, stats := eng.EvaluateAllMoves(pos, 3)
	if len(moves) != 20 {
		t.Fatalf("got %d root moves, want 20", len(moves))
	}
	seen := make(map[board.Move]bool)
	for i, r := range moves {
		if seen[r.Move] {
			t.Errorf("move %s listed twice", r.Move)
		}
		seen[r.Move] = true
		if i > 0 && r.Score > moves[i-1].Score {
			t.Errorf("move %d (%s, %d) scores above move %d (%d)", i, r.Move, r.Score, i-1, moves[i-1].Score)
		}
	}

	if stats.Nodes == 0 || stats.QNodes == 0 {
		t.Errorf("expected non-zero node counts, got %+v", stats)
	}
	if stats.TTHits > stats.TTProbes {
		t.Errorf("hits %d exceed probes %d", stats.TTHits, stats.TTProbes)
	}
}

func TestWinsMaterial(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	eng := NewEngine(Options{HashMB: 1, DisableMobility: true})

	moves, _ := eng.EvaluateAllMoves(pos, 2)
	if moves[0].Move.String() != "d1d5" {
		t.Errorf("best move %s, want d1d5", moves[0].Move)
	}
	if moves[0].Score < 400 {
		t.Errorf("score %d, want at least 400", moves[0].Score)
	}
}

func TestStatisticsPerSearch(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(Options{HashMB: 1})

	_, first := eng.EvaluateAllMoves(pos, 2)
	eng.Clear()
	_, second := eng.EvaluateAllMoves(pos, 2)

	if first != second {
		t.Errorf("identical searches on a cleared table disagree: %+v vs %+v", first, second)
	}

	var sum SearchStatistics
	sum.Add(first)
	sum.Add(second)
	if sum.Nodes != 2*first.Nodes {
		t.Errorf("Add: nodes %d, want %d", sum.Nodes, 2*first.Nodes)
	}
}

func TestTTBoundSoundness(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"4k3/8/4K3/8/8/8/8/R7 w - - 0 1",
		"4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1",
	}
	for _, fen := range fens {
		for depth := 1; depth <= 3; depth++ {
			pos := mustFEN(t, fen)
			ref := NewSearcher(pos, NewTranspositionTable(1), material, nil).Negamax(depth, -Infinity, Infinity)

			windows := [][2]int{
				{-Infinity, Infinity},
				{ref - 10, ref + 10},
				{ref - 200, ref - 100},
				{ref + 100, ref + 200},
			}
			for _, w := range windows {
				alpha, beta := w[0], w[1]
				tt := NewTranspositionTable(1)
				got := NewSearcher(pos, tt, material, nil).Negamax(depth, alpha, beta)

				switch {
				case got <= alpha:
					if ref > got {
						t.Errorf("%s d%d [%d,%d]: fail-low %d above true score %d", fen, depth, alpha, beta, got, ref)
					}
				case got >= beta:
					if ref < got {
						t.Errorf("%s d%d [%d,%d]: fail-high %d below true score %d", fen, depth, alpha, beta, got, ref)
					}
				default:
					if got != ref {
						t.Errorf("%s d%d [%d,%d]: score %d, want %d", fen, depth, alpha, beta, got, ref)
					}
				}

				e, ok := tt.Probe(pos.Hash)
				if !ok {
					t.Fatalf("%s d%d [%d,%d]: root not stored", fen, depth, alpha, beta)
				}
				stored := int(e.Score)
				switch e.Flag {
				case TTExact:
					if stored != ref {
						t.Errorf("%s d%d [%d,%d]: exact entry %d, want %d", fen, depth, alpha, beta, stored, ref)
					}
				case TTLowerBound:
					if stored > ref {
						t.Errorf("%s d%d [%d,%d]: lower bound %d above %d", fen, depth, alpha, beta, stored, ref)
					}
				case TTUpperBound:
					if stored < ref {
						t.Errorf("%s d%d [%d,%d]: upper bound %d below %d", fen, depth, alpha, beta, stored, ref)
					}
				}
			}
		}
	}
}

func TestAspirationResearchMatchesFullWindow(t *testing.T) {
	const fen = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -"

	narrow, narrowStats := NewEngine(Options{HashMB: 4, AspirationWindow: 1}).EvaluateAllMoves(mustFEN(t, fen), 4)
	wide, wideStats := NewEngine(Options{HashMB: 4, AspirationWindow: Infinity - 1}).EvaluateAllMoves(mustFEN(t, fen), 4)

	if narrowStats.Researches == 0 {
		t.Error("a one-centipawn window should force re-searches")
	}
	if wideStats.Researches != 0 {
		t.Errorf("full window re-searched %d times", wideStats.Researches)
	}
	if len(narrow) != len(wide) {
		t.Fatalf("got %d and %d root moves", len(narrow), len(wide))
	}
	scores := make(map[board.Move]int, len(wide))
	for _, r := range wide {
		scores[r.Move] = r.Score
	}
	for _, r := range narrow {
		if want, ok := scores[r.Move]; !ok || r.Score != want {
			t.Errorf("%v: narrow window score %d, full window %d", r.Move, r.Score, want)
		}
	}
}

func TestMateIn(t *testing.T) {
	tests := []struct {
		score int
		moves int
		ok    bool
	}{
		{0, 0, false},
		{MateThreshold, 0, false},
		{MateScore - 1, 1, true},
		{MateScore - 3, 2, true},
		{-(MateScore - 2), -1, true},
	}
	for _, tt := range tests {
		if n, ok := MateIn(tt.score); n != tt.moves || ok != tt.ok {
			t.Errorf("MateIn(%d) = %d, %v, want %d, %v", tt.score, n, ok, tt.moves, tt.ok)
		}
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{-150, "-1.50"},
		{325, "3.25"},
		{MateScore - 3, "Mate in 2"},
		{-(MateScore - 2), "Mated in 1"},
	}
	for _, tt := range tests {
		if got := ScoreToString(tt.score); got != tt.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func BenchmarkSearchKiwipete(b *testing.B) {
	pos := mustFEN(b, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	eng := NewEngine(Options{HashMB: 16})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Clear()
		_, stats := eng.EvaluateAllMoves(pos, 4)
		b.ReportMetric(float64(stats.Nodes+stats.QNodes), "nodes/op")
	}
}
