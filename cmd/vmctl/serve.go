package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/viewmodel/internal/errors"
	"github.com/vango-dev/viewmodel/internal/inspect"
)

func serveCmd() *cobra.Command {
	var (
		port       int
		host       string
		feedSource string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the inspection server",
		Long: `Start the inspection server on a live view-model registry.

The registry can be preloaded from a snapshot feed. Further snapshots
are applied with POST /groups, and every group can be watched over
WebSocket at /groups/{id}/watch.

Examples:
  vmctl serve
  vmctl serve --port=9090
  vmctl serve --feed=./groups.jsonl
  vmctl serve --feed=s3://snapshots/groups.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if feedSource != "" {
				cfg.Feed.Source = feedSource
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, newPipeline(cfg, newLogger(cfg.Log, os.Stderr)))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vmctl.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vmctl.json)")
	cmd.Flags().StringVarP(&feedSource, "feed", "f", "", "Snapshot feed to preload (path, file://, s3:// or -)")

	return cmd
}

func runServe(ctx context.Context, p *pipeline) error {
	p.loop.Start()
	defer p.loop.Close()

	if src := p.cfg.Feed.Source; src != "" {
		stats, err := p.replay(ctx, src, nil)
		if err != nil {
			return errors.FromError(err, "E202")
		}
		success("Preloaded %d groups from %s", stats.Created, src)
	}

	server := inspect.NewServer(inspect.Options{
		Addr:        p.cfg.ServerAddress(),
		Groups:      p.groups,
		Dispatcher:  p.loop,
		Gatherer:    p.gatherer,
		WatchBuffer: p.cfg.Server.WatchBuffer,
		Logger:      p.logger.With("component", "inspect"),
	})

	success("Inspecting on http://%s", p.cfg.ServerAddress())
	if p.gatherer != nil {
		info("Metrics at http://%s/metrics", p.cfg.ServerAddress())
	}

	if err := server.Start(ctx); err != nil {
		return err
	}
	info("Shut down")
	return nil
}
