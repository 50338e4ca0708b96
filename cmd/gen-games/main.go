package main

import (
	"bufio"
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/okian/formcast/internal/adapters/ingest"
	"github.com/okian/formcast/internal/datagen"
	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/pkg/logger"
)

// Default configuration constants.
const (
	defaultSeed = 1
	outputPerm  = 0o644
)

func main() {
	def := datagen.DefaultConfig()
	var (
		teams       = flag.Int("teams", def.Teams, "Number of teams")
		seasons     = flag.Int("seasons", def.Seasons, "Number of seasons")
		games       = flag.Int("games", def.GamesPerSeason, "Games per team per season")
		firstSeason = flag.Int("first-season", def.FirstSeason, "Number of the first season")
		seed        = flag.Int64("seed", defaultSeed, "Random seed")
		out         = flag.String("out", "", "Output CSV file (default: stdout)")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		datagen.ShowHelp()
		return
	}

	if err := logger.InitWithWriter(os.Stderr); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()
	log := logger.Get().Named("gen-games")

	cfg := datagen.Config{
		Teams:          *teams,
		Seasons:        *seasons,
		GamesPerSeason: *games,
		FirstSeason:    *firstSeason,
		StartDate:      time.Date(*firstSeason-1, time.October, 18, 0, 0, 0, 0, time.UTC),
	}

	records, err := datagen.Generate(rand.New(rand.NewSource(*seed)), cfg)
	if err != nil {
		log.Error(ctx, "generate league", logger.Error(err))
		os.Exit(1)
	}

	if err := writeRecords(*out, records); err != nil {
		log.Error(ctx, "write records", logger.String("path", *out), logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "league generated",
		logger.Int("records", len(records)),
		logger.Int("teams", cfg.Teams),
		logger.Int("seasons", cfg.Seasons),
		logger.Any("seed", *seed))
}

// writeRecords writes records as CSV to path, or to stdout when path is empty.
func writeRecords(path string, records []model.GameRecord) error {
	w := os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputPerm)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	buf := bufio.NewWriter(w)
	if err := ingest.Write(buf, records); err != nil {
		return err
	}
	return buf.Flush()
}
