// Command chess-magics searches for magic multipliers for the sliding
// piece attack tables and prints them as Go source.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

var (
	seed  = flag.Uint64("seed", 0, "RNG seed (0 = random)")
	check = flag.Bool("check", false, "only verify the built-in multipliers")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *check {
		bad := 0
		for _, bishop := range []bool{true, false} {
			for sq, m := range board.MagicMultipliers(bishop) {
				if !board.VerifyMagic(board.Square(sq), bishop, m) {
					log.Error().Str("square", board.Square(sq).String()).Bool("bishop", bishop).Msg("bad-magic")
					bad++
				}
			}
		}
		if bad > 0 {
			os.Exit(1)
		}
		log.Info().Msg("all magics verified")
		return
	}

	var out [2][64]uint64
	var g errgroup.Group
	for i, bishop := range []bool{true, false} {
		i, bishop := i, bishop
		g.Go(func() error {
			rng := newRNG(*seed + uint64(i))
			// Sparse candidates find valid multipliers far sooner.
			next := func() uint64 { return rng.Uint64n(^uint64(0)) & rng.Uint64n(^uint64(0)) & rng.Uint64n(^uint64(0)) }
			for sq := board.A1; sq <= board.H8; sq++ {
				m, err := board.FindMagic(sq, bishop, next)
				if err != nil {
					return fmt.Errorf("square %s: %w", sq, err)
				}
				out[i][sq] = m
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("magic search failed")
	}

	fmt.Print(format("bishopMagicNumbers", out[0]))
	fmt.Println()
	fmt.Print(format("rookMagicNumbers", out[1]))
}

func newRNG(seed uint64) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	var key [32]byte
	for i := 0; i < 8; i++ {
		key[i] = byte(seed >> (8 * i))
	}
	return frand.NewCustom(key[:], 1024, 12)
}

func format(name string, magics [64]uint64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "var %s = [64]uint64{\n", name)
	for i := 0; i < 64; i += 4 {
		sb.WriteString("\t")
		for j := i; j < i+4; j++ {
			fmt.Fprintf(&sb, "0x%016X,", magics[j])
			if j < i+3 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	return sb.String()
}
