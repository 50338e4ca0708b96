// Package config defines process configuration and its loading from
// defaults, an optional YAML file and FORMCAST_ environment variables.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/formcast/internal/domain/align"
	"github.com/okian/formcast/internal/domain/backtest"
	"github.com/okian/formcast/internal/domain/classifier"
	"github.com/okian/formcast/internal/domain/features"
	"github.com/okian/formcast/internal/domain/selection"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Serve keeps the process running with the read API after the pipeline finishes.
	Serve bool `koanf:"serve"`

	// DataPath is the game CSV to load. Empty means a synthetic league is generated.
	DataPath string `koanf:"data_path"`

	// Seed drives the synthetic league generator.
	Seed int64 `koanf:"seed"`

	// WorkerCount sets the number of feature workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// ShardCount configures the number of shards in the feature store.
	ShardCount int `koanf:"shard_count"`

	// Feature generation.
	RollingWindows  []int   `koanf:"rolling_windows"`
	FormWindows     []int   `koanf:"form_windows"`
	WindowBoundary  string  `koanf:"window_boundary"`
	SeasonLength    int     `koanf:"season_length"`
	DefaultRestDays float64 `koanf:"default_rest_days"`

	// Alignment.
	LabelScope string `koanf:"label_scope"`
	JoinMode   string `koanf:"join_mode"`

	// Backtest.
	SplitPolicy    string  `koanf:"split_policy"`
	SeasonStart    int     `koanf:"season_start"`
	SeasonStep     int     `koanf:"season_step"`
	FoldCount      int     `koanf:"fold_count"`
	TopK           int     `koanf:"top_k"`
	RidgeAlpha     float64 `koanf:"ridge_alpha"`
	FitParallelism int     `koanf:"fit_parallelism"`

	// RedisAddr enables stream publishing when set.
	RedisAddr string `koanf:"redis_addr"`

	// RedisStreamPrefix prefixes the matchup and report stream names.
	RedisStreamPrefix string `koanf:"redis_stream_prefix"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		Seed:              1,
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         1024,
		ShardCount:        8,
		RollingWindows:    append([]int(nil), features.DefaultRollingWindows...),
		FormWindows:       append([]int(nil), features.DefaultFormWindows...),
		WindowBoundary:    features.StrictlyPrior.String(),
		SeasonLength:      features.DefaultSeasonLength,
		DefaultRestDays:   features.DefaultRestDays,
		LabelScope:        align.ScopeTimeline.String(),
		JoinMode:          align.JoinSameGame.String(),
		SplitPolicy:       "season",
		SeasonStart:       backtest.DefaultSeasonStart,
		SeasonStep:        backtest.DefaultSeasonStep,
		FoldCount:         backtest.DefaultFolds,
		TopK:              selection.DefaultK,
		RidgeAlpha:        classifier.DefaultAlpha,
		FitParallelism:    runtime.NumCPU(),
		RedisStreamPrefix: "formcast",
	}
}

// Validate checks that every value is usable. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.Addr != "", "addr must not be empty")
	check(c.WorkerCount > 0, "worker_count must be positive, got %d", c.WorkerCount)
	check(c.QueueSize > 0, "queue_size must be positive, got %d", c.QueueSize)
	check(c.ShardCount > 0, "shard_count must be positive, got %d", c.ShardCount)
	check(len(c.RollingWindows) > 0, "rolling_windows must not be empty")
	for _, w := range c.RollingWindows {
		check(w > 0, "rolling window must be positive, got %d", w)
	}
	for _, w := range c.FormWindows {
		check(w > 0, "form window must be positive, got %d", w)
	}
	_, err := features.ParseWindowBoundary(c.WindowBoundary)
	check(err == nil, "window_boundary %q", c.WindowBoundary)
	check(c.SeasonLength > 0, "season_length must be positive, got %d", c.SeasonLength)
	check(c.DefaultRestDays >= 0, "default_rest_days must not be negative")
	_, err = align.ParseLabelScope(c.LabelScope)
	check(err == nil, "label_scope %q", c.LabelScope)
	_, err = align.ParseJoinMode(c.JoinMode)
	check(err == nil, "join_mode %q", c.JoinMode)
	_, err = backtest.NewSplitter(c.SplitPolicy, c.SeasonStart, c.SeasonStep, c.FoldCount)
	check(err == nil, "split_policy %q with season_start=%d season_step=%d fold_count=%d",
		c.SplitPolicy, c.SeasonStart, c.SeasonStep, c.FoldCount)
	check(c.TopK > 0, "top_k must be positive, got %d", c.TopK)
	check(c.RidgeAlpha > 0, "ridge_alpha must be positive, got %g", c.RidgeAlpha)
	check(c.FitParallelism > 0, "fit_parallelism must be positive, got %d", c.FitParallelism)
	check(c.RedisAddr == "" || c.RedisStreamPrefix != "", "redis_stream_prefix must not be empty when redis_addr is set")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
