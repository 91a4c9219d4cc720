package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leapgraph/internal/ingest"
	"github.com/leapstack-labs/leapgraph/internal/server"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string
	Watch string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lineage queries over HTTP",
		Long: `Start an HTTP server answering lineage queries.

Routes:
  GET  /api/lineage/{graph}/{scope}/{guid}?view=TABLE_VIEW
  GET  /api/graphs
  GET  /api/graphs/{graph}
  GET  /api/graphs/{graph}/stats
  POST /api/graphs/{graph}/dump
  GET  /healthz

With --watch, event files written to the directory are applied while the
server runs.`,
		Example: `  # Serve on the configured address
  leapgraph serve

  # Serve on a custom address and watch for new events
  leapgraph serve --addr 127.0.0.1:9000 --watch ./events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default: server.addr)")
	cmd.Flags().StringVar(&opts.Watch, "watch", "", "Directory of event files to watch (default: watch_dir)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := opts.Addr
	if addr == "" {
		addr = cc.Cfg.GetServerConfig().Addr
	}
	watchDir := opts.Watch
	if watchDir == "" {
		watchDir = cc.Cfg.WatchDir
	}

	var watcher *ingest.Watcher
	if watchDir != "" {
		name, err := graphFlagValue(cc.Cfg, "")
		if err != nil {
			return err
		}
		applier := ingest.NewApplier(cc.Store,
			ingest.WithDefaultGraph(name),
			ingest.WithPersister(cc.State),
			ingest.WithLogger(cc.Logger),
		)
		watcher = ingest.NewWatcher(watchDir, applier, cc.Logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Service: cc.Service,
		Addr:    addr,
		Watcher: watcher,
		Logger:  cc.Logger,
	})
	return srv.Serve(ctx)
}
