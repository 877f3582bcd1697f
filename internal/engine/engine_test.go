package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

func TestSearchDepths(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(Options{HashMB: 4})

	var depths []int
	eng.OnDepth = func(r Result) { depths = append(depths, r.Depth) }

	res, err := eng.Search(context.Background(), pos, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Depth != 3 {
		t.Errorf("completed depth %d, want 3", res.Depth)
	}
	if len(depths) != 3 || depths[0] != 1 || depths[2] != 3 {
		t.Errorf("OnDepth saw %v, want [1 2 3]", depths)
	}
	if _, ok := res.Best(); !ok {
		t.Error("no best move from the start position")
	}
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pos := board.NewPosition()
	orig := pos.Copy()
	eng := NewEngine(Options{HashMB: 1})

	_, err := eng.Search(ctx, pos, 5)
	if !errors.Is(err, ErrSearchAborted) {
		t.Fatalf("err = %v, want ErrSearchAborted", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want it to wrap context.Canceled", err)
	}
	if !pos.Equal(orig) {
		t.Error("aborted search left the position modified")
	}
}

func TestSearchNoLegalMoves(t *testing.T) {
	pos := mustFEN(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	eng := NewEngine(Options{HashMB: 1})

	res, err := eng.Search(context.Background(), pos, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if best, ok := res.Best(); ok || best.Move != board.NoMove {
		t.Errorf("got best move %s in a mated position", best.Move)
	}
}

func TestAnalysis(t *testing.T) {
	pos := board.NewPosition()
	orig := pos.Copy()
	eng := NewEngine(Options{HashMB: 4})

	a := eng.StartAnalysis(context.Background(), pos, 3)
	res, err := a.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Depth != 3 {
		t.Errorf("depth %d, want 3", res.Depth)
	}
	snap, ok := a.Snapshot()
	if !ok || snap.Depth != 3 {
		t.Errorf("snapshot depth %d (ok=%v), want 3", snap.Depth, ok)
	}
	if !pos.Equal(orig) {
		t.Error("analysis touched the caller's position")
	}
}

func TestAnalysisStop(t *testing.T) {
	eng := NewEngine(Options{HashMB: 1})
	a := eng.StartAnalysis(context.Background(), board.NewPosition(), 40)
	a.Stop()

	res, err := a.Wait()
	if err != nil && !errors.Is(err, ErrSearchAborted) {
		t.Fatalf("Wait: %v", err)
	}
	if err == nil && res.Depth == 0 {
		t.Error("no error and no completed depth")
	}
	if res.Depth >= 40 {
		t.Errorf("search ran to depth %d after Stop", res.Depth)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := NewEngine(Options{}).Options()
	if o.HashMB != DefaultHashMB || o.MaxDepth != DefaultMaxDepth ||
		o.AspirationWindow != DefaultAspirationWindow || o.LazyMargin != DefaultLazyMargin {
		t.Errorf("unexpected defaults %+v", o)
	}
}
