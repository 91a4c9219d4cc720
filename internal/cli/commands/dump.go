package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapgraph/internal/cli/output"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/spf13/cobra"
)

// DumpOptions holds options for the dump command.
type DumpOptions struct {
	Graph string
	All   bool
}

type dumpedFile struct {
	Graph core.NamedGraph `json:"graph"`
	Path  string          `json:"path"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write named graphs to dump files",
		Long: `Write the full content of a named graph to <dump_dir>/graph-<name>.<ext>.

The format is taken from dump_format: graphml (default), json or duckdb.
An existing dump is replaced only once the new file is complete.`,
		Example: `  # Dump the default graph
  leapgraph dump

  # Dump all four graphs as DuckDB databases
  leapgraph dump --all --dump-format duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDump(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Graph, "graph", "g", "", "Named graph (default: default_graph)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Dump every named graph")
	cmd.MarkFlagsMutuallyExclusive("graph", "all")

	return cmd
}

func runDump(cmd *cobra.Command, opts *DumpOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var names []core.NamedGraph
	var paths []string
	if opts.All {
		names = core.AllGraphs()
		paths, err = cc.Service.DumpAll(cmd.Context())
		if err != nil {
			return err
		}
	} else {
		name, err := graphFlagValue(cc.Cfg, opts.Graph)
		if err != nil {
			return err
		}
		path, err := cc.Service.Dump(cmd.Context(), name)
		if err != nil {
			return err
		}
		names, paths = []core.NamedGraph{name}, []string{path}
	}

	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		files := make([]dumpedFile, len(names))
		for i := range names {
			files[i] = dumpedFile{Graph: names[i], Path: paths[i]}
		}
		return cc.Renderer.JSON(files)
	}
	cc.Renderer.Paths(names, paths)
	cc.Renderer.Printf("%s\n", pluralize(len(paths), "dump file", "dump files"))
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
