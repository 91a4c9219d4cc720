package commands

import (
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var graphName string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a whole named graph",
		Long: `Print every vertex and edge of a named graph in the portable
graph format used by lineage responses.`,
		Example: `  # Export the main graph as JSON
  leapgraph export -o json > main.json

  # Inspect the mock graph in a terminal
  leapgraph export --graph MOCK`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			name, err := graphFlagValue(cc.Cfg, graphName)
			if err != nil {
				return err
			}
			return writeResult(cc.Renderer, cc.Service.Export(cmd.Context(), name))
		},
	}

	cmd.Flags().StringVarP(&graphName, "graph", "g", "", "Named graph (default: default_graph)")

	return cmd
}
