package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/formcast/internal/adapters/http/api"
	"github.com/okian/formcast/internal/adapters/ingest"
	"github.com/okian/formcast/internal/adapters/publisher"
	app "github.com/okian/formcast/internal/app"
	"github.com/okian/formcast/internal/config"
	"github.com/okian/formcast/internal/datagen"
	"github.com/okian/formcast/internal/domain/backtest"
	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/internal/domain/types"
	"github.com/okian/formcast/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	redisPingTimeout  = 5 * time.Second
)

func main() {
	// Logs go to stderr so stdout carries only the report.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Get().Error(ctx, "formcast failed", logger.Error(err))
		os.Exit(1)
	}
}

// run loads games, runs the pipeline, writes the report summary to out and then
// optionally publishes and serves until ctx is canceled.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := app.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	records, dropped, err := loadRecords(ctx, cfg)
	if err != nil {
		return err
	}

	res, err := svc.Run(ctx, records, app.WithIngestDropped(dropped))
	switch {
	case errors.Is(err, backtest.ErrNoScoredIterations):
		log.Warn(ctx, "no iteration could be scored; report is empty", logger.Error(err))
	case err != nil:
		return fmt.Errorf("run pipeline: %w", err)
	}

	if err := writeReport(out, res.Report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.RedisAddr != "" {
		if err := publish(ctx, cfg, res); err != nil {
			return err
		}
	}

	if cfg.Serve {
		return serve(ctx, cfg, svc)
	}
	return nil
}

// loadRecords reads the configured CSV or generates a synthetic league.
// Malformed CSV rows are logged, skipped and counted.
func loadRecords(ctx context.Context, cfg *config.Config) ([]model.GameRecord, int, error) {
	log := logger.Get()

	if cfg.DataPath == "" {
		records, err := datagen.Generate(rand.New(rand.NewSource(cfg.Seed)), datagen.DefaultConfig())
		if err != nil {
			return nil, 0, fmt.Errorf("generate league: %w", err)
		}
		log.Info(ctx, "generated synthetic league",
			logger.Int("records", len(records)),
			logger.Any("seed", cfg.Seed),
		)
		return records, 0, nil
	}

	records, err := ingest.ReadFile(ctx, cfg.DataPath)
	if err != nil && !errors.Is(err, model.ErrDataIntegrity) {
		return nil, 0, fmt.Errorf("read %s: %w", cfg.DataPath, err)
	}
	dropped := ingest.Dropped(err)
	if err != nil {
		log.Warn(ctx, "skipped malformed rows",
			logger.String("path", cfg.DataPath),
			logger.Int("dropped", dropped),
			logger.Error(err),
		)
	}
	log.Info(ctx, "loaded games", logger.String("path", cfg.DataPath), logger.Int("records", len(records)))
	return records, dropped, nil
}

// writeReport prints the report summary as indented JSON. Predictions are served by /report.
func writeReport(out io.Writer, report types.Report) error {
	summary := report
	summary.Predictions = nil
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func publish(ctx context.Context, cfg *config.Config, res *app.Result) error {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = client.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}

	pub, err := publisher.NewStreamPublisher(client, publisher.WithPrefix(cfg.RedisStreamPrefix))
	if err != nil {
		return err
	}
	if _, err := pub.PublishMatchups(ctx, res.Rows); err != nil {
		return err
	}
	return pub.PublishReport(ctx, res.Report)
}

func serve(ctx context.Context, cfg *config.Config, svc *app.Service) error {
	log := logger.Get()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(svc).Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
