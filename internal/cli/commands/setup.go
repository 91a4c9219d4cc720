package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapgraph/internal/cli/config"
	"github.com/leapstack-labs/leapgraph/internal/cli/output"
	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/internal/lineage"
	"github.com/leapstack-labs/leapgraph/internal/serializer"
	"github.com/leapstack-labs/leapgraph/internal/state"
	"github.com/leapstack-labs/leapgraph/internal/traversal"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *graph.Store
	State    *state.SQLiteStore
	Service  *lineage.Service
	Renderer *output.Renderer
}

// NewCommandContext opens the state database, restores the named graphs from it
// and builds the lineage service.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	st, err := openState(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = st.Close()
	}

	store := graph.NewStore()
	if err := st.LoadAll(cmd.Context(), store); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load graphs: %w", err)
	}

	format, err := serializer.ParseFormat(cfg.DumpFormat)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc := lineage.NewService(store,
		lineage.WithLogger(logger),
		lineage.WithEngine(traversal.New(
			traversal.WithLogger(logger),
			traversal.WithMaxVertices(cfg.MaxVertices),
		)),
		lineage.WithDumper(serializer.NewDumper(cfg.DumpDir, format)),
	)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		State:    st,
		Service:  svc,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		StatePath:    getEnvOrDefault("LEAPGRAPH_STATE_PATH", config.DefaultStateFile),
		DumpDir:      getEnvOrDefault("LEAPGRAPH_DUMP_DIR", config.DefaultDumpDir),
		DumpFormat:   getEnvOrDefault("LEAPGRAPH_DUMP_FORMAT", config.DefaultDumpFormat),
		DefaultGraph: getEnvOrDefault("LEAPGRAPH_DEFAULT_GRAPH", config.DefaultGraph),
		OutputFormat: getEnvOrDefault("LEAPGRAPH_OUTPUT", config.DefaultOutput),
		LogFormat:    config.DefaultLogFormat,
		Verbose:      os.Getenv("LEAPGRAPH_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func openState(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	// Ensure state directory exists
	if cfg.StatePath != ":memory:" {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	st := state.NewSQLiteStore(logger)
	if err := st.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// graphFlagValue resolves a --graph flag, falling back to the configured default graph.
func graphFlagValue(cfg *config.Config, flag string) (core.NamedGraph, error) {
	if flag == "" {
		flag = cfg.DefaultGraph
	}
	return core.ParseNamedGraph(flag)
}
