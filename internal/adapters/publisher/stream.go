// Package publisher appends pipeline outputs to Redis streams for downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/internal/domain/types"
	"github.com/okian/formcast/pkg/logger"
	"github.com/okian/formcast/pkg/metrics"
)

// Stream name suffixes and defaults.
const (
	matchupsSuffix   = ".matchups"
	reportsSuffix    = ".reports"
	defaultPrefix    = "formcast"
	defaultMaxLength = 100_000
)

// StreamAdder is the subset of the Redis client the publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher publishes matchup rows and reports to Redis streams.
type StreamPublisher struct {
	client    StreamAdder
	prefix    string
	maxLength int64

	logger logger.Logger
}

// Option configures a StreamPublisher.
type Option func(*StreamPublisher)

// WithPrefix sets the stream name prefix.
func WithPrefix(prefix string) Option {
	return func(p *StreamPublisher) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

// WithMaxLength sets the approximate stream length cap. Zero disables trimming.
func WithMaxLength(n int64) Option {
	return func(p *StreamPublisher) {
		if n >= 0 {
			p.maxLength = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *StreamPublisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewStreamPublisher creates a new stream publisher.
func NewStreamPublisher(client StreamAdder, opts ...Option) (*StreamPublisher, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	p := &StreamPublisher{
		client:    client,
		prefix:    defaultPrefix,
		maxLength: defaultMaxLength,
		logger:    logger.Get().Named("publisher"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// MatchupStream returns the stream key for matchup rows.
func (p *StreamPublisher) MatchupStream() string { return p.prefix + matchupsSuffix }

// ReportStream returns the stream key for reports.
func (p *StreamPublisher) ReportStream() string { return p.prefix + reportsSuffix }

// PublishMatchups appends every row to the matchup stream, in order.
// It stops at the first failure and returns the number of rows published.
func (p *StreamPublisher) PublishMatchups(ctx context.Context, rows []model.MatchupRow) (int, error) {
	stream := p.MatchupStream()
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := p.publish(ctx, stream, r.Game.Team, types.NewMatchup(r)); err != nil {
			return i, fmt.Errorf("publish row %d: %w", r.ID, err)
		}
	}
	p.logger.Info(ctx, "matchups published",
		logger.String("stream", stream),
		logger.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// PublishReport appends the report without its predictions to the report stream.
// Predictions are already carried by the matchup stream.
func (p *StreamPublisher) PublishReport(ctx context.Context, report types.Report) error {
	summary := report
	summary.Predictions = nil
	if err := p.publish(ctx, p.ReportStream(), report.Policy, summary); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	p.logger.Info(ctx, "report published",
		logger.String("stream", p.ReportStream()),
		logger.Float64("accuracy", report.OverallAccuracy),
	)
	return nil
}

func (p *StreamPublisher) publish(ctx context.Context, stream, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		metrics.RecordPublished(stream, "marshal_error")
		return fmt.Errorf("error marshaling message: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"key":  key,
			"data": string(data),
		},
	}
	if p.maxLength > 0 {
		args.MaxLen = p.maxLength
		args.Approx = true
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		metrics.RecordPublished(stream, "error")
		return fmt.Errorf("error publishing to stream %s: %w", stream, err)
	}
	metrics.RecordPublished(stream, "ok")
	return nil
}
