package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewRenderer(&out, &errOut, mode), &out, &errOut
}

func TestEffectiveMode(t *testing.T) {
	r, _, _ := newTestRenderer(ModeAuto)
	// a buffer is never a terminal
	assert.Equal(t, ModeJSON, r.EffectiveMode())

	r, _, _ = newTestRenderer("")
	assert.Equal(t, ModeJSON, r.EffectiveMode())

	r, _, _ = newTestRenderer(ModeText)
	assert.Equal(t, ModeText, r.EffectiveMode())
}

func TestRawJSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)
	require.NoError(t, r.RawJSON([]byte(`{"a":1}`)))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())

	assert.Error(t, r.RawJSON([]byte(`{`)))
}

func TestJSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)
	require.NoError(t, r.JSON(map[string]int{"vertices": 2}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got["vertices"])
}

func TestSubgraph(t *testing.T) {
	sub := core.NewSubgraph(core.GraphMain)
	sub.AddVertex(core.Vertex{GUID: "orders", Label: "table", Properties: map[string]string{"owner": "sales"}})
	sub.AddVertex(core.Vertex{GUID: "stg_orders", Label: "table"})
	sub.AddEdge(core.Edge{Label: core.EdgeTableFlow, Source: "orders", Target: "stg_orders"})

	r, out, _ := newTestRenderer(ModeText)
	r.Subgraph(sub)

	text := out.String()
	assert.Contains(t, text, "stg_orders")
	assert.Contains(t, text, "owner=sales")
	assert.Contains(t, text, core.EdgeTableFlow)
	assert.Contains(t, text, "MAIN: 2 vertices, 1 edges")
}

func TestStats(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)
	r.Stats([]graph.Stats{{
		Graph:        core.GraphMock,
		Vertices:     3,
		Edges:        2,
		VertexLabels: map[string]int{"table": 3},
		EdgeLabels:   map[string]int{core.EdgeTableFlow: 2},
	}})
	assert.Contains(t, out.String(), "MOCK")
	assert.Contains(t, out.String(), "table (3)")
}

func TestWarnf(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)
	r.Warnf("skipped %d", 2)
	assert.Empty(t, out.String())
	assert.Equal(t, "skipped 2\n", errOut.String())
}
