package feed

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/viewmodel/pkg/entity"
)

const tracerName = "github.com/vango-dev/viewmodel/internal/feed"

// ApplyFunc routes one snapshot and reports whether it created a new
// view-model.
type ApplyFunc func(ctx context.Context, g *entity.Group) (created bool)

// Stats summarizes a replay.
type Stats struct {
	Snapshots int `json:"snapshots"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
}

// ReplayOption configures Replay.
type ReplayOption func(*replayConfig)

type replayConfig struct {
	tracer trace.Tracer
	logger *slog.Logger
}

// WithTracer sets the tracer for the replay span.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) ReplayOption {
	return func(c *replayConfig) {
		c.tracer = tracer
	}
}

// WithLogger sets the replay logger.
func WithLogger(logger *slog.Logger) ReplayOption {
	return func(c *replayConfig) {
		c.logger = logger
	}
}

// Replay decodes every snapshot from r and passes it to apply in order.
// It stops at the first decode error or when ctx is done; snapshots applied
// before that stay applied.
func Replay(ctx context.Context, r io.Reader, apply ApplyFunc, opts ...ReplayOption) (Stats, error) {
	config := replayConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	if config.tracer == nil {
		config.tracer = otel.Tracer(tracerName)
	}
	if config.logger == nil {
		config.logger = slog.Default()
	}

	ctx, span := config.tracer.Start(ctx, "feed.Replay")
	defer span.End()

	var stats Stats
	dec := NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return stats, finish(span, stats, err)
		}

		g, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			config.logger.Warn("feed replay stopped", "line", dec.Line(), "error", err)
			return stats, finish(span, stats, err)
		}

		stats.Snapshots++
		if apply(ctx, g) {
			stats.Created++
		} else {
			stats.Updated++
		}
	}

	config.logger.Info("feed replayed",
		"snapshots", stats.Snapshots,
		"created", stats.Created,
		"updated", stats.Updated,
	)
	return stats, finish(span, stats, nil)
}

func finish(span trace.Span, stats Stats, err error) error {
	span.SetAttributes(
		attribute.Int("feed.snapshots", stats.Snapshots),
		attribute.Int("feed.created", stats.Created),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
