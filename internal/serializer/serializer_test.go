package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/internal/testutil"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureGraph(t *testing.T) *graph.Graph {
	t.Helper()
	_, g := testutil.NewStore(t)
	testutil.Flow(t, g, core.EdgeTableFlow, "orders>stg_orders", "stg_orders>fct_orders")
	testutil.Flow(t, g, core.EdgeColumnFlow, "orders.id>stg_orders.order_id")
	testutil.Terms(t, g, "term:order", "term:purchase")
	testutil.Relate(t, g, "term:order", "term:purchase")
	testutil.Assign(t, g, "stg_orders.order_id", "column", "term:order")
	return g
}

func assertSameGraph(t *testing.T, want, got *core.Subgraph) {
	t.Helper()
	assert.Equal(t, want.Graph, got.Graph)
	assert.Equal(t, want.VertexCount(), got.VertexCount())
	assert.Equal(t, want.EdgeCount(), got.EdgeCount())
	for _, v := range want.Vertices() {
		gv, ok := got.Vertex(v.GUID)
		if assert.True(t, ok, "vertex %s", v.GUID) {
			assert.Equal(t, v.Label, gv.Label)
			assert.Equal(t, v.Properties, gv.Properties)
		}
	}
	for _, e := range want.Edges() {
		assert.True(t, got.HasEdge(e.Label, e.Source, e.Target), "edge %s", e.Key())
	}
}

func TestSerialize_Document(t *testing.T) {
	sub := core.NewSubgraph(core.GraphMain)
	sub.AddVertex(core.Vertex{GUID: "a", Label: "table", Properties: map[string]string{"name": "orders"}})
	sub.AddVertex(core.Vertex{GUID: "b", Label: "table"})
	sub.AddEdge(core.Edge{Label: core.EdgeTableFlow, Source: "a", Target: "b"})

	data, err := Serialize(sub)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "MAIN", doc["graph"])
	assert.Len(t, doc["vertices"], 2)

	edges := doc["edges"].([]any)
	require.Len(t, edges, 1)
	edge := edges[0].(map[string]any)
	assert.Equal(t, "a", edge["outV"])
	assert.Equal(t, "b", edge["inV"])
	assert.Equal(t, core.EdgeTableFlow, edge["label"])
}

func TestSerialize_RoundTrip(t *testing.T) {
	sub := ExportFullGraph(fixtureGraph(t))

	data, err := Serialize(sub)
	require.NoError(t, err)
	got, err := Deserialize(data)
	require.NoError(t, err)

	assertSameGraph(t, sub, got)
}

func TestDeserialize_Invalid(t *testing.T) {
	_, err := Deserialize([]byte("{not json"))
	assert.ErrorIs(t, err, core.ErrSerializationFailure)

	_, err = Deserialize([]byte(`{"graph":"MAIN","vertices":[{"id":"a","label":"table"}],"edges":[{"label":"table-flow","outV":"a","inV":"zz"}]}`))
	assert.ErrorIs(t, err, core.ErrSerializationFailure)
}

func TestGraphML_RoundTrip(t *testing.T) {
	sub := ExportFullGraph(fixtureGraph(t))

	var buf bytes.Buffer
	require.NoError(t, WriteGraphML(&buf, sub))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.Contains(t, buf.String(), `edgedefault="directed"`)

	got, err := ReadGraphML(&buf)
	require.NoError(t, err)
	assertSameGraph(t, sub, got)
}

func TestReadGraphML_ForeignKeys(t *testing.T) {
	doc := `<?xml version="1.0"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="labelV" for="node" attr.name="labelV" attr.type="string"/>
  <key id="labelE" for="edge" attr.name="labelE" attr.type="string"/>
  <key id="k0" for="node" attr.name="qualifiedName" attr.type="string"/>
  <graph id="HISTORY" edgedefault="directed">
    <node id="x"><data key="labelV">table</data><data key="k0">db.x</data></node>
    <node id="y"><data key="labelV">table</data></node>
    <edge id="e1" source="x" target="y"><data key="labelE">table-flow</data></edge>
  </graph>
</graphml>`

	sub, err := ReadGraphML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, core.GraphHistory, sub.Graph)
	x, ok := sub.Vertex("x")
	require.True(t, ok)
	assert.Equal(t, "db.x", x.Properties["qualifiedName"])
	assert.True(t, sub.HasEdge(core.EdgeTableFlow, "x", "y"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "graph-main.graphml", FileName(core.GraphMain, FormatGraphML))
	assert.Equal(t, "graph-buffer.json", FileName(core.GraphBuffer, FormatJSON))
	assert.Equal(t, "graph-history.duckdb", FileName(core.GraphHistory, FormatDuckDB))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatGraphML, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("gexf")
	assert.Error(t, err)
}

func TestDumper_RoundTrip(t *testing.T) {
	g := fixtureGraph(t)
	want := ExportFullGraph(g)

	for _, format := range []Format{FormatGraphML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			d := NewDumper(t.TempDir(), format)

			path, err := d.Dump(context.Background(), g)
			require.NoError(t, err)
			assert.Equal(t, FileName(core.GraphMock, format), filepath.Base(path))

			got, err := ReadDump(context.Background(), path)
			require.NoError(t, err)
			assertSameGraph(t, want, got)
		})
	}
}

func TestDumper_OverwritesPreviousDump(t *testing.T) {
	g := fixtureGraph(t)
	d := NewDumper(t.TempDir(), FormatJSON)

	_, err := d.Dump(context.Background(), g)
	require.NoError(t, err)
	testutil.Flow(t, g, core.EdgeTableFlow, "fct_orders>report")
	path, err := d.Dump(context.Background(), g)
	require.NoError(t, err)

	got, err := ReadDump(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, got.HasVertex("report"))

	entries, err := os.ReadDir(d.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestDumper_WriteFailure(t *testing.T) {
	g := fixtureGraph(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := NewDumper(blocker, FormatGraphML).Dump(context.Background(), g)
	assert.ErrorIs(t, err, core.ErrSerializationFailure)
}

func TestReadDump_UnknownExtension(t *testing.T) {
	_, err := ReadDump(context.Background(), "graph-main.gexf")
	assert.ErrorIs(t, err, core.ErrSerializationFailure)
}

func TestDuckDB_RoundTrip(t *testing.T) {
	g := fixtureGraph(t)
	want := ExportFullGraph(g)
	d := NewDumper(t.TempDir(), FormatDuckDB)

	path, err := d.Dump(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, "graph-mock.duckdb", filepath.Base(path))

	got, err := ReadDump(context.Background(), path)
	require.NoError(t, err)
	assertSameGraph(t, want, got)

	// a second dump replaces the database instead of failing on existing tables
	_, err = d.Dump(context.Background(), g)
	require.NoError(t, err)
}
