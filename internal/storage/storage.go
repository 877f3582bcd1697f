package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// ErrNotFound is returned when no stored analysis satisfies a lookup.
var ErrNotFound = errors.New("analysis not found")

const keyPrefix = "analysis/"

// ScoredMove is one root move of a stored analysis.
type ScoredMove struct {
	Move  string `json:"move"`
	Score int    `json:"score"`
}

// Analysis is a finished search result for one position.
type Analysis struct {
	// FEN holds the first four FEN fields, used to reject hash collisions.
	FEN     string        `json:"fen"`
	Depth   int           `json:"depth"`
	Moves   []ScoredMove  `json:"moves"`
	Nodes   uint64        `json:"nodes"`
	Elapsed time.Duration `json:"elapsed"`
	Created time.Time     `json:"created"`
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) a database in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open analysis store: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func positionKey(pos *board.Position) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], pos.Hash)
	return key
}

// positionID is the part of the FEN that identifies a position for search
// purposes. The move clocks do not change the result.
func positionID(pos *board.Position) string {
	fields := strings.Fields(pos.ToFEN())
	return strings.Join(fields[:4], " ")
}

// Put stores a for pos, keeping whichever of a and any existing entry was
// searched deeper.
func (s *Storage) Put(pos *board.Position, a Analysis) error {
	a.FEN = positionID(pos)
	if a.Created.IsZero() {
		a.Created = time.Now()
	}
	key := positionKey(pos)

	return s.db.Update(func(txn *badger.Txn) error {
		old, err := get(txn, key)
		if err == nil && old.FEN == a.FEN && old.Depth > a.Depth {
			log.Debug().Int("stored", old.Depth).Int("new", a.Depth).Msg("analysis-kept")
			return nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Get returns the stored analysis of pos if it was searched to at least
// minDepth.
func (s *Storage) Get(pos *board.Position, minDepth int) (*Analysis, error) {
	var a *Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		a, err = get(txn, positionKey(pos))
		return err
	})
	if err != nil {
		return nil, err
	}
	if a.FEN != positionID(pos) || a.Depth < minDepth {
		return nil, ErrNotFound
	}
	return a, nil
}

func get(txn *badger.Txn, key []byte) (*Analysis, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a := new(Analysis)
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, a)
	})
	return a, err
}

// Delete removes the stored analysis of pos, if any.
func (s *Storage) Delete(pos *board.Position) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(positionKey(pos))
	})
}

// Count returns the number of stored analyses.
func (s *Storage) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
