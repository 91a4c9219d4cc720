package commands

import (
	"testing"

	"github.com/leapstack-labs/leapgraph/internal/cli/config"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineageCommand(t *testing.T) {
	cmd := NewLineageCommand()

	assert.Equal(t, "lineage <guid>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Verify flags exist (output is a global flag on root, not local)
	for _, flag := range []string{"graph", "scope", "view"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "END_TO_END", cmd.Flags().Lookup("scope").DefValue)
	assert.Equal(t, "TABLE_VIEW", cmd.Flags().Lookup("view").DefValue)
}

func TestNewExportCommand(t *testing.T) {
	cmd := NewExportCommand()

	assert.Equal(t, "export", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("graph"))
}

func TestNewDumpCommand(t *testing.T) {
	cmd := NewDumpCommand()

	assert.Equal(t, "dump", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	for _, flag := range []string{"graph", "all"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewLoadCommand(t *testing.T) {
	cmd := NewLoadCommand()

	assert.Equal(t, "load <event-file>...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.Error(t, cmd.Args(cmd, nil), "load requires at least one file")
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	for _, flag := range []string{"addr", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewStatsCommand(t *testing.T) {
	cmd := NewStatsCommand()

	assert.Equal(t, "stats", cmd.Use)
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
}

func TestGraphFlagValue(t *testing.T) {
	cfg := &config.Config{DefaultGraph: "mock"}

	name, err := graphFlagValue(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, core.GraphMock, name)

	name, err = graphFlagValue(cfg, "history")
	require.NoError(t, err)
	assert.Equal(t, core.GraphHistory, name)

	_, err = graphFlagValue(cfg, "staging")
	assert.ErrorIs(t, err, core.ErrUnknownGraph)
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 file", pluralize(1, "file", "files"))
	assert.Equal(t, "0 files", pluralize(0, "file", "files"))
	assert.Equal(t, "3 files", pluralize(3, "file", "files"))
}
