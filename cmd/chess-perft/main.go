// Command chess-perft counts move-generation leaf nodes and optionally
// checks every root move against an independent generator.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

var (
	fen    = flag.String("fen", board.StartFEN, "position to count from")
	depth  = flag.Int("depth", 5, "perft depth")
	divide = flag.Bool("divide", false, "print the node count under each root move")
	verify = flag.Bool("verify", false, "compare each root move with dragontoothmg")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("bad position")
	}
	if *depth < 1 {
		log.Fatal().Int("depth", *depth).Msg("depth must be at least 1")
	}

	start := time.Now()
	entries := board.PerftDivide(pos, *depth)
	elapsed := time.Since(start)

	var ref map[string]uint64
	if *verify {
		b := dragontoothmg.ParseFen(pos.ToFEN())
		ref = referenceDivide(&b, *depth)
	}

	var total uint64
	mismatches := 0
	for _, e := range entries {
		total += e.Nodes
		mv := e.Move.String()
		if ref != nil {
			want, ok := ref[mv]
			delete(ref, mv)
			if !ok || want != e.Nodes {
				mismatches++
				fmt.Printf("%s: %d (reference %d)\n", mv, e.Nodes, want)
				continue
			}
		}
		if *divide {
			fmt.Printf("%s: %d\n", mv, e.Nodes)
		}
	}
	for mv, n := range ref {
		mismatches++
		fmt.Printf("%s: missing (reference %d)\n", mv, n)
	}

	fmt.Printf("\nNodes: %d\n", total)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(total)/elapsed.Seconds())
	}
	if *verify {
		if mismatches > 0 {
			log.Error().Int("moves", mismatches).Msg("perft-mismatch")
			os.Exit(1)
		}
		log.Info().Msg("perft-verified")
	}
}

func referenceDivide(b *dragontoothmg.Board, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	for _, m := range b.GenerateLegalMoves() {
		undo := b.Apply(m)
		out[strings.ToLower(m.String())] = referencePerft(b, depth-1)
		undo()
	}
	return out
}

func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		undo := b.Apply(m)
		n += referencePerft(b, depth-1)
		undo()
	}
	return n
}
