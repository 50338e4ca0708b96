package datagen

import "os"

// ShowHelp prints usage information for the gen-games tool.
func ShowHelp() {
	os.Stdout.WriteString(`Formcast League Generator
=========================

Generates a deterministic synthetic league of paired team-game records in the
canonical CSV layout accepted by formcast.

Usage:
  go run ./cmd/gen-games [options]

Options:
  -teams int
        Number of teams (default 8)
  -seasons int
        Number of seasons (default 4)
  -games int
        Games per team per season (default 40)
  -first-season int
        Number of the first season (default 2020)
  -seed int
        Random seed (default 1)
  -out string
        Output CSV file (default: stdout)
  -help
        Show this help message

Examples:
  # Small league to stdout
  go run ./cmd/gen-games -teams 6 -seasons 2

  # Larger league into a file
  go run ./cmd/gen-games -teams 30 -seasons 5 -games 82 -seed 7 -out league.csv
`)
}
