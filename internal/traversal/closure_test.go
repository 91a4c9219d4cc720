package traversal

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/internal/testutil"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guids(vs []core.Vertex) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.GUID
	}
	return out
}

func TestClosure_Idempotent(t *testing.T) {
	_, g := testutil.NewStore(t)
	testutil.Flow(t, g, core.EdgeTableFlow, "A>C", "B>C", "C>D", "A>B", "D>A")
	ctx := context.Background()

	err := g.View(func(r graph.Reader) error {
		first, err := Closure(ctx, r, "D", core.EdgeTableFlow, core.DirectionIn)
		require.NoError(t, err)
		second, err := Closure(ctx, r, "D", core.EdgeTableFlow, core.DirectionIn)
		require.NoError(t, err)

		assert.Equal(t, guids(first), guids(second))
		assert.ElementsMatch(t, []string{"A", "B", "C"}, guids(first))
		return nil
	})
	require.NoError(t, err)
}

func TestClosure_BreadthFirstOrder(t *testing.T) {
	_, g := testutil.NewStore(t)
	testutil.Flow(t, g, core.EdgeTableFlow, "A>B", "A>C", "B>D", "C>E")

	got, err := Closure(context.Background(), g, "A", core.EdgeTableFlow, core.DirectionOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D", "E"}, guids(got))
}

func TestClosure_EmptyLabelFindsNothing(t *testing.T) {
	_, g := testutil.NewStore(t)
	testutil.Flow(t, g, core.EdgeTableFlow, "A>B")

	got, err := Closure(context.Background(), g, "A", EdgeLabelForView("PROCESS_VIEW"), core.DirectionOut)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBoundary(t *testing.T) {
	_, g := testutil.NewStore(t)
	testutil.Flow(t, g, core.EdgeTableFlow, "A>B", "B>C", "X>Y", "Y>X", "X>Z")
	ctx := context.Background()

	tests := []struct {
		name string
		guid string
		dir  core.Direction
		want []string
	}{
		{"roots of chain", "C", core.DirectionIn, []string{"A"}},
		{"leaves of chain", "A", core.DirectionOut, []string{"C"}},
		{"no upstream yields self", "A", core.DirectionIn, []string{"A"}},
		{"pure cycle yields closure", "Z", core.DirectionIn, []string{"X", "Y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Boundary(ctx, g, tt.guid, core.EdgeTableFlow, tt.dir)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, guids(got))
			assert.NotEmpty(t, got)
		})
	}
}

func TestClosure_UnknownVertex(t *testing.T) {
	_, g := testutil.NewStore(t)

	_, err := Closure(context.Background(), g, "missing", core.EdgeTableFlow, core.DirectionIn)
	assert.ErrorIs(t, err, core.ErrVertexNotFound)
}
