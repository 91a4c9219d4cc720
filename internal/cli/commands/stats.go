package commands

import (
	"github.com/leapstack-labs/leapgraph/internal/cli/output"
	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	var graphName string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show vertex and edge counts",
		Long:  `Show vertex and edge counts per label for every named graph, or for one with --graph.`,
		Example: `  leapgraph stats
  leapgraph stats --graph HISTORY -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			names := core.AllGraphs()
			if graphName != "" {
				name, err := core.ParseNamedGraph(graphName)
				if err != nil {
					return err
				}
				names = []core.NamedGraph{name}
			}

			stats := make([]graph.Stats, 0, len(names))
			for _, name := range names {
				st, err := cc.Service.Stats(name)
				if err != nil {
					return err
				}
				stats = append(stats, st)
			}

			if cc.Renderer.EffectiveMode() == output.ModeJSON {
				return cc.Renderer.JSON(stats)
			}
			cc.Renderer.Stats(stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&graphName, "graph", "g", "", "Only this named graph")

	return cmd
}
