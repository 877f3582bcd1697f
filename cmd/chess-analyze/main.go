// Command chess-analyze scores every legal move of a position.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/benzhenwen/anotherchessengine/internal/board"
	"github.com/benzhenwen/anotherchessengine/internal/engine"
	"github.com/benzhenwen/anotherchessengine/internal/render"
	"github.com/benzhenwen/anotherchessengine/internal/storage"
)

var (
	fen        = flag.String("fen", board.StartFEN, "position to analyze")
	depth      = flag.Int("depth", engine.DefaultMaxDepth, "search depth in plies")
	hashMB     = flag.Int("hash", engine.DefaultHashMB, "transposition table size in MB")
	window     = flag.Int("window", engine.DefaultAspirationWindow, "aspiration window half-width in centipawns")
	lazy       = flag.Int("lazy-margin", engine.DefaultLazyMargin, "lazy evaluation margin in centipawns")
	noMobility = flag.Bool("no-mobility", false, "evaluate material and castling rights only")
	timeout    = flag.Duration("timeout", 0, "stop searching after this long and report the deepest finished depth")
	top        = flag.Int("top", 0, "print only the best N moves (0 = all)")
	dbDir      = flag.String("db", "", "analysis cache directory (default: platform data dir)")
	noCache    = flag.Bool("no-cache", false, "neither read nor write the analysis cache")
	svgOut     = flag.String("svg", "", "write an SVG diagram with the best move to this file")
	unicode    = flag.Bool("unicode", false, "draw the board with chess figures")
	logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
}

func run() error {
	pos, err := board.ParseFEN(*fen)
	if err != nil {
		return err
	}
	fmt.Print(render.Diagram(pos, *unicode, false))
	fmt.Printf("\n%s\n\n", pos.ToFEN())

	var store *storage.Storage
	if !*noCache {
		if *dbDir != "" {
			store, err = storage.Open(*dbDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			log.Warn().Err(err).Msg("cache-unavailable")
			store = nil
		} else {
			defer store.Close()
		}
	}

	moves, err := analyze(pos, store)
	if err != nil {
		return err
	}
	if len(moves) == 0 {
		if pos.IsInCheck() {
			fmt.Println("Checkmate.")
		} else {
			fmt.Println("Stalemate.")
		}
		return nil
	}

	n := len(moves)
	if *top > 0 && *top < n {
		n = *top
	}
	for i, sm := range moves[:n] {
		m, err := board.ParseUCIMove(pos, sm.Move)
		if err != nil {
			return err
		}
		san, err := render.SAN(pos, m)
		if err != nil {
			san = sm.Move
		}
		fmt.Printf("%3d. %-8s %-6s %s\n", i+1, san, sm.Move, engine.ScoreToString(sm.Score))
	}

	if *svgOut != "" {
		best, err := board.ParseUCIMove(pos, moves[0].Move)
		if err != nil {
			return err
		}
		f, err := os.Create(*svgOut)
		if err != nil {
			return err
		}
		r := render.NewRenderer(45)
		r.Flip = pos.SideToMove == board.Black
		r.Render(f, pos, best)
		if err := f.Close(); err != nil {
			return err
		}
		log.Info().Str("file", *svgOut).Msg("svg-written")
	}
	return nil
}

// analyze returns scored root moves, best first, from the cache when it
// holds a deep enough result and from a fresh search otherwise.
func analyze(pos *board.Position, store *storage.Storage) ([]storage.ScoredMove, error) {
	if store != nil {
		cached, err := store.Get(pos, *depth)
		switch {
		case err == nil:
			log.Info().Int("depth", cached.Depth).Time("created", cached.Created).Msg("cache-hit")
			return cached.Moves, nil
		case !errors.Is(err, storage.ErrNotFound):
			log.Warn().Err(err).Msg("cache-read")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	eng := engine.NewEngine(engine.Options{
		HashMB:           *hashMB,
		MaxDepth:         *depth,
		AspirationWindow: *window,
		LazyMargin:       *lazy,
		DisableMobility:  *noMobility,
	})
	start := time.Now()
	res, err := eng.Search(ctx, pos, *depth)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("depth", res.Depth).
		Uint64("nodes", res.Stats.Nodes).
		Uint64("qnodes", res.Stats.QNodes).
		Uint64("tthits", res.Stats.TTHits).
		Uint64("researches", res.Stats.Researches).
		Dur("elapsed", time.Since(start)).
		Msg("searched")

	moves := make([]storage.ScoredMove, len(res.Moves))
	for i, r := range res.Moves {
		moves[i] = storage.ScoredMove{Move: r.Move.String(), Score: r.Score}
	}

	// Only complete searches are worth keeping.
	if store != nil && res.Depth == *depth && len(moves) > 0 {
		err := store.Put(pos, storage.Analysis{
			Depth:   res.Depth,
			Moves:   moves,
			Nodes:   res.Stats.Nodes + res.Stats.QNodes,
			Elapsed: res.Elapsed,
		})
		if err != nil {
			log.Warn().Err(err).Msg("cache-write")
		}
	}
	return moves, nil
}
