package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/viewmodel/internal/config"
	"github.com/vango-dev/viewmodel/internal/errors"
	"github.com/vango-dev/viewmodel/pkg/mvvm"
	"github.com/vango-dev/viewmodel/pkg/viewmodel"
)

const flushTimeout = 5 * time.Second

type replayOptions struct {
	source string
	watch  bool
	dump   bool
}

func replayCmd() *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay [source]",
		Short: "Replay a snapshot feed",
		Long: `Replay a JSON-lines snapshot feed into a fresh registry.

Each line is one group snapshot. The first snapshot of a group creates
its view-model; later ones update it in place. With --watch every
change notification is printed as it is delivered.

Examples:
  vmctl replay ./groups.jsonl
  vmctl replay --watch s3://snapshots/groups.jsonl
  cat groups.jsonl | vmctl replay --dump -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			opts.source = cfg.Feed.Source
			if len(args) == 1 {
				opts.source = args[0]
			}
			if opts.source == "" {
				return errors.New("E401").
					WithDetail("No feed source given").
					WithSuggestion("Pass a source argument or set feed.source in vmctl.json")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runReplay(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Print change notifications as they are delivered")
	cmd.Flags().BoolVarP(&opts.dump, "dump", "d", false, "Print the final group views as JSON")

	return cmd
}

func runReplay(ctx context.Context, cfg *config.Config, opts replayOptions, out io.Writer) error {
	p := newPipeline(cfg, newLogger(cfg.Log, os.Stderr))
	p.loop.Start()
	defer p.loop.Close()

	var onCreate func(*viewmodel.GroupVM)
	if opts.watch {
		printer := &changePrinter{out: out}
		onCreate = func(vm *viewmodel.GroupVM) {
			// Subscribing on the loop orders it before any later delivery.
			_ = mvvm.Sync(ctx, p.loop, func() {
				_ = vm.SubscribeNotify(printer, false)
			})
		}
	}

	stats, err := p.replay(ctx, opts.source, onCreate)
	if err != nil {
		return errors.FromError(err, "E202")
	}

	// Deliver everything queued before reading final state.
	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := mvvm.Sync(flushCtx, p.loop, func() {}); err != nil {
		return err
	}

	fmt.Fprintf(out, "replayed %d snapshots: %d created, %d updated\n",
		stats.Snapshots, stats.Created, stats.Updated)

	if opts.dump {
		ids := p.groups.Keys()
		slices.Sort(ids)
		views := make([]viewmodel.GroupView, 0, len(ids))
		for _, id := range ids {
			if vm, ok := p.groups.Get(id); ok {
				views = append(views, vm.View())
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	return nil
}

// changePrinter prints one line per delivered notification. It runs on the
// loop goroutine only.
type changePrinter struct {
	out io.Writer
	n   int
}

func (c *changePrinter) OnChanged(vm *viewmodel.GroupVM) {
	c.n++
	v := vm.View()
	fmt.Fprintf(c.out, "#%d group %d %q members=%d owner=%d member=%t canWrite=%t\n",
		c.n, v.ID, v.Title, v.MembersCount, v.OwnerID, v.IsMember, v.CanWrite)
}
