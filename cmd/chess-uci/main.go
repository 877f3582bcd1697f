package main

import (
	"flag"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/benzhenwen/anotherchessengine/internal/engine"
	"github.com/benzhenwen/anotherchessengine/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", engine.DefaultHashMB, "transposition table size in MB")
	depth      = flag.Int("depth", engine.DefaultMaxDepth, "default search depth for go without limits")
	logLevel   = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	// UCI owns stdout, so logs go to stderr.
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("cpu-profiling")
	}

	protocol := uci.New(engine.Options{HashMB: *hashMB, MaxDepth: *depth}, os.Stdout)
	if err := protocol.Run(os.Stdin); err != nil {
		log.Error().Err(err).Msg("uci-input")
	}
}
