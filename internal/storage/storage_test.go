package storage

import (
	"errors"
	"os"
	"testing"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTest(t)
	pos := board.NewPosition()

	if _, err := s.Get(pos, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	want := Analysis{
		Depth: 4,
		Moves: []ScoredMove{{"e2e4", 35}, {"d2d4", 30}},
		Nodes: 12345,
	}
	if err := s.Put(pos, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(pos, 4)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Depth != 4 || len(got.Moves) != 2 || got.Moves[0] != want.Moves[0] || got.Nodes != want.Nodes {
		t.Errorf("Get returned %+v", got)
	}
	if got.FEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -" {
		t.Errorf("stored FEN %q", got.FEN)
	}
	if got.Created.IsZero() {
		t.Error("Created not set")
	}

	if _, err := s.Get(pos, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get deeper than stored: err = %v, want ErrNotFound", err)
	}
}

func TestPutKeepsDeeper(t *testing.T) {
	s := openTest(t)
	pos := board.NewPosition()

	if err := s.Put(pos, Analysis{Depth: 6, Moves: []ScoredMove{{"e2e4", 20}}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(pos, Analysis{Depth: 3, Moves: []ScoredMove{{"g1f3", 10}}}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(pos, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Depth != 6 || got.Moves[0].Move != "e2e4" {
		t.Errorf("shallower Put replaced a deeper entry: %+v", got)
	}
}

func TestClocksShareEntry(t *testing.T) {
	s := openTest(t)
	a, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K2R w K - 12 40")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put(a, Analysis{Depth: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(b, 2); err != nil {
		t.Errorf("same position with other clocks: %v", err)
	}
}

func TestDeleteCount(t *testing.T) {
	s := openTest(t)
	pos := board.NewPosition()
	other, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range []*board.Position{pos, other} {
		if err := s.Put(p, Analysis{Depth: 1}); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := s.Count(); err != nil || n != 2 {
		t.Fatalf("Count = %d, %v; want 2", n, err)
	}

	if err := s.Delete(pos); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(pos, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: err = %v", err)
	}
	if n, _ := s.Count(); n != 1 {
		t.Errorf("Count after Delete = %d, want 1", n)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pos := board.NewPosition()
	if err := s.Put(pos, Analysis{Depth: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.Get(pos, 3); err != nil {
		t.Errorf("analysis lost across reopen: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv(DataDirEnv, t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir != os.Getenv(DataDirEnv) {
		t.Errorf("GetDataDir = %q, want the override", dataDir)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}
