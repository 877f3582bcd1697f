// Package uci speaks the Universal Chess Interface over a line-based
// reader and writer.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/benzhenwen/anotherchessengine/internal/board"
	"github.com/benzhenwen/anotherchessengine/internal/engine"
	"github.com/benzhenwen/anotherchessengine/internal/render"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	opts   engine.Options
	engine *engine.Engine
	game   *board.Game

	out   io.Writer
	outMu sync.Mutex

	// Search state
	analysis *engine.Analysis
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a protocol handler writing responses to out.
func New(opts engine.Options, out io.Writer) *UCI {
	u := &UCI{
		opts: opts,
		game: board.NewGame(board.NewPosition()),
		out:  out,
	}
	u.resetEngine()
	return u
}

func (u *UCI) resetEngine() {
	u.engine = engine.NewEngine(u.opts)
	u.opts = u.engine.Options()
	u.engine.OnDepth = u.sendInfo
}

// Position returns the current position.
func (u *UCI) Position() *board.Position {
	return u.game.Position()
}

func (u *UCI) send(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands from in until "quit" or end of input. "quit" stops a
// running search; at end of input Run waits for it to finish.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.handleDisplay()
		case "eval":
			u.send("Eval: %s (white side)", engine.ScoreToString(engine.Evaluate(u.Position())))
		case "perft":
			u.handlePerft(args)
		case "undo":
			u.handleStop()
			if !u.game.Pop() {
				u.send("info string nothing to undo")
			}
		default:
			log.Warn().Str("cmd", cmd).Msg("unknown-command")
		}
	}
	u.wait()
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name AnotherChessEngine")
	u.send("id author benzhenwen")
	u.send("")
	u.send("option name Hash type spin default %d min 1 max 4096", engine.DefaultHashMB)
	u.send("option name Depth type spin default %d min 1 max %d", engine.DefaultMaxDepth, engine.MaxPly)
	u.send("option name AspirationWindow type spin default %d min 1 max 1000", engine.DefaultAspirationWindow)
	u.send("option name LazyMargin type spin default %d min 1 max 2000", engine.DefaultLazyMargin)
	u.send("option name Mobility type check default true")
	u.send("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.game = board.NewGame(board.NewPosition())
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.handleStop()

	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			moveStart = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:moveStart], " "))
		if err != nil {
			log.Warn().Err(err).Msg("invalid-fen")
			u.send("info string %v", err)
			return
		}
	default:
		return
	}

	game := board.NewGame(pos)
	if moveStart < len(args) {
		for _, s := range args[moveStart+1:] {
			if err := game.PushUCI(s); err != nil {
				log.Warn().Err(err).Str("move", s).Msg("invalid-move")
				u.send("info string %v", err)
				return
			}
		}
	}
	u.game = game
}

// GoOptions holds parsed "go" command options. Clock fields are accepted
// for compatibility but do not shorten the search.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
	Infinite bool
}

func parseGoOptions(args []string) GoOptions {
	var opts GoOptions
	for i := 0; i < len(args); i++ {
		next := func() int {
			if i+1 >= len(args) {
				return 0
			}
			i++
			n, _ := strconv.Atoi(args[i])
			return n
		}
		switch args[i] {
		case "depth":
			opts.Depth = next()
		case "movetime":
			opts.MoveTime = time.Duration(next()) * time.Millisecond
		case "infinite":
			opts.Infinite = true
		case "wtime", "btime", "winc", "binc", "movestogo", "nodes":
			next()
		}
	}
	return opts
}

// handleGo starts a background search. bestmove is written when it ends.
func (u *UCI) handleGo(args []string) {
	u.handleStop()
	opts := parseGoOptions(args)

	depth := opts.Depth
	if opts.Infinite {
		depth = engine.MaxPly
	}

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if opts.MoveTime > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.MoveTime)
		if opts.Depth == 0 {
			depth = engine.MaxPly
		}
	}

	u.cancel = cancel
	u.done = make(chan struct{})
	u.analysis = u.engine.StartAnalysis(ctx, u.Position(), depth)

	go func(a *engine.Analysis, done chan struct{}) {
		defer close(done)
		defer cancel()
		res, err := a.Wait()
		if err != nil {
			log.Debug().Err(err).Msg("search-stopped")
		}
		best, ok := res.Best()
		if !ok {
			// Aborted before depth 1 finished, or no legal moves.
			legal := u.game.LegalMoves()
			if len(legal) == 0 {
				u.send("bestmove 0000")
				return
			}
			best.Move = legal[0]
		}
		u.send("bestmove %s", best.Move)
	}(u.analysis, u.done)
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.analysis != nil {
		u.analysis.Stop()
	}
	u.wait()
}

// wait blocks until the current search, if any, has written bestmove.
func (u *UCI) wait() {
	if u.analysis == nil {
		return
	}
	<-u.done
	u.cancel()
	u.analysis = nil
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(res engine.Result) {
	best, ok := res.Best()
	if !ok {
		return
	}
	parts := []string{fmt.Sprintf("depth %d", res.Depth)}

	if n, ok := engine.MateIn(best.Score); ok {
		parts = append(parts, fmt.Sprintf("score mate %d", n))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", best.Score))
	}

	nodes := res.Stats.Nodes + res.Stats.QNodes
	parts = append(parts, fmt.Sprintf("nodes %d", nodes))
	parts = append(parts, fmt.Sprintf("time %d", res.Elapsed.Milliseconds()))
	if res.Elapsed > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(nodes)/res.Elapsed.Seconds())))
	}
	if res.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", res.HashFull))
	}
	parts = append(parts, "pv "+best.Move.String())

	u.send("info %s", strings.Join(parts, " "))
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var target *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}
	key := strings.ToLower(strings.Join(name, " "))
	val := strings.Join(value, " ")
	n, err := strconv.Atoi(val)
	numeric := err == nil && n > 0

	opts := u.opts
	switch key {
	case "hash":
		opts.HashMB = n
	case "depth":
		opts.MaxDepth = n
	case "aspirationwindow":
		opts.AspirationWindow = n
	case "lazymargin":
		opts.LazyMargin = n
	case "mobility":
		opts.DisableMobility = strings.ToLower(val) != "true"
		numeric = true
	default:
		log.Warn().Str("name", key).Msg("unknown-option")
		return
	}
	if !numeric {
		u.send("info string invalid value %q for %s", val, key)
		return
	}

	u.handleStop()
	u.opts = opts
	u.resetEngine()
	log.Debug().Str("name", key).Str("value", val).Msg("option-set")
}

func (u *UCI) handleDisplay() {
	pos := u.Position()
	u.send("%s", render.Diagram(pos, false, false))
	u.send("Fen: %s", pos.ToFEN())
	u.send("Key: %016X", pos.Hash)
	u.send("Checkers: %v", pos.IsInCheck())
}

// handlePerft runs a perft divide on the current position.
func (u *UCI) handlePerft(args []string) {
	u.handleStop()
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	var total uint64
	for _, e := range board.PerftDivide(u.Position(), depth) {
		u.send("%s: %d", e.Move, e.Nodes)
		total += e.Nodes
	}
	elapsed := time.Since(start)

	u.send("")
	u.send("Nodes searched: %d", total)
	u.send("Time: %v", elapsed)
	if elapsed > 0 {
		u.send("NPS: %.0f", float64(total)/elapsed.Seconds())
	}
}
