package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/viewmodel/internal/config"
	"github.com/vango-dev/viewmodel/internal/errors"
	"github.com/vango-dev/viewmodel/internal/feed"
	"github.com/vango-dev/viewmodel/pkg/entity"
	"github.com/vango-dev/viewmodel/pkg/mvvm"
	"github.com/vango-dev/viewmodel/pkg/viewmodel"
)

const tracerName = "github.com/vango-dev/viewmodel/cmd/vmctl"

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// pipeline wires a dispatch loop, the group registry and its collectors.
type pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *mvvm.Metrics

	// gatherer is nil when metrics are disabled.
	gatherer prometheus.Gatherer

	loop   *mvvm.Loop
	groups *viewmodel.GroupRegistry
}

func newPipeline(cfg *config.Config, logger *slog.Logger) *pipeline {
	p := &pipeline{cfg: cfg, logger: logger}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		p.metrics = mvvm.NewMetrics(
			mvvm.WithNamespace(cfg.Metrics.Namespace),
			mvvm.WithRegistry(reg),
		)
		p.gatherer = reg
	}

	if cfg.Tracing.Enabled {
		p.tracer = otel.Tracer(tracerName)
	} else {
		p.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	// Validate has already rejected a malformed threshold.
	slow, _ := cfg.SlowTaskThreshold()
	p.loop = mvvm.NewLoop(
		mvvm.WithLoopLogger(logger.With("component", "loop")),
		mvvm.WithLoopMetrics(p.metrics),
		mvvm.WithSlowTaskThreshold(slow),
	)

	p.groups = viewmodel.NewGroupRegistry(p.loop,
		[]mvvm.ModelOption{
			mvvm.WithModelMetrics(p.metrics),
			mvvm.WithModelLogger(logger),
		},
		mvvm.WithTracer(p.tracer),
		mvvm.WithRegistryMetrics(p.metrics),
		mvvm.WithRegistryLogger(logger),
	)
	return p
}

// replay applies every snapshot from source. onCreate, if set, is called
// for each new view-model before its first update can be delivered.
func (p *pipeline) replay(ctx context.Context, source string, onCreate func(*viewmodel.GroupVM)) (feed.Stats, error) {
	rc, err := feed.Open(ctx, source, feed.WithS3Config(feed.S3Config{
		Region:    p.cfg.Feed.S3Region,
		Endpoint:  p.cfg.Feed.S3Endpoint,
		PathStyle: p.cfg.Feed.S3PathStyle,
	}))
	if err != nil {
		return feed.Stats{}, err
	}
	defer rc.Close()

	apply := func(ctx context.Context, g *entity.Group) bool {
		vm, created := p.groups.Apply(ctx, g)
		if created && onCreate != nil {
			onCreate(vm)
		}
		return created
	}

	return feed.Replay(ctx, rc, apply,
		feed.WithTracer(p.tracer),
		feed.WithLogger(p.logger.With("source", source)),
	)
}

// loadConfig loads vmctl.json from the --config directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configDir)
	if err != nil {
		return nil, errors.FromError(err, "E103")
	}
	return cfg, nil
}
