package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/internal/lineage"
	"github.com/leapstack-labs/leapgraph/internal/serializer"
	"github.com/leapstack-labs/leapgraph/internal/testutil"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	store, g := testutil.NewStore(t)
	testutil.Flow(t, g, core.EdgeTableFlow, "A>B", "B>C")
	testutil.Flow(t, g, core.EdgeColumnFlow, "db/a.id>db/b.id")

	dir := t.TempDir()
	logger := testutil.NewTestLogger(t)
	svc := lineage.NewService(store,
		lineage.WithLogger(logger),
		lineage.WithDumper(serializer.NewDumper(dir, serializer.FormatJSON)),
	)
	srv := httptest.NewServer(New(Config{Service: svc, Logger: logger}).Handler())
	t.Cleanup(srv.Close)
	return srv, dir
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test server URL
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)
	resp := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLineage(t *testing.T) {
	srv, _ := setupServer(t)

	resp := get(t, srv.URL+"/api/lineage/mock/END_TO_END/B?view=TABLE_VIEW")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc serializer.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	sub, err := doc.Subgraph()
	require.NoError(t, err)
	assert.Equal(t, core.GraphMock, sub.Graph)
	assert.Equal(t, []string{"B", "A", "C"}, sub.GUIDs())
}

func TestLineage_EscapedGUID(t *testing.T) {
	srv, _ := setupServer(t)

	resp := get(t, srv.URL+"/api/lineage/MOCK/ULTIMATE_SOURCE/db%2Fb.id?view=COLUMN_VIEW")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc serializer.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	sub, err := doc.Subgraph()
	require.NoError(t, err)
	assert.True(t, sub.HasVertex("db/a.id"))
}

func TestLineage_Errors(t *testing.T) {
	srv, _ := setupServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		kind   core.ErrorKind
	}{
		{"unknown graph", "/api/lineage/STAGING/END_TO_END/A?view=TABLE_VIEW", http.StatusBadRequest, core.KindUnknownGraph},
		{"unknown scope", "/api/lineage/MOCK/SIDEWAYS/A?view=TABLE_VIEW", http.StatusBadRequest, core.KindUnknownScope},
		{"missing view", "/api/lineage/MOCK/END_TO_END/A", http.StatusBadRequest, core.KindUnknownView},
		{"missing vertex", "/api/lineage/MOCK/END_TO_END/nope?view=TABLE_VIEW", http.StatusNotFound, core.KindVertexNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			detail := decodeError(t, resp)
			assert.Equal(t, tt.kind, detail.Kind)
			assert.NotEmpty(t, detail.Message)
		})
	}
}

func TestExportGraph(t *testing.T) {
	srv, _ := setupServer(t)

	resp := get(t, srv.URL+"/api/graphs/mock")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc serializer.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Len(t, doc.Vertices, 5)
	assert.Len(t, doc.Edges, 3)

	resp = get(t, srv.URL+"/api/graphs/nowhere")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGraphStats(t *testing.T) {
	srv, _ := setupServer(t)

	resp := get(t, srv.URL+"/api/graphs/MOCK/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st graph.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, core.GraphMock, st.Graph)
	assert.Equal(t, 5, st.Vertices)
	assert.Equal(t, 2, st.EdgeLabels[core.EdgeTableFlow])

	resp = get(t, srv.URL+"/api/graphs")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []graph.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, 4)
}

func TestDumpGraph(t *testing.T) {
	srv, dir := setupServer(t)

	resp, err := http.Post(srv.URL+"/api/graphs/mock/dump", "application/json", nil) //nolint:gosec,noctx // test server URL
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dumpResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, core.GraphMock, body.Graph)
	assert.Equal(t, filepath.Join(dir, "graph-mock.json"), body.Path)
	assert.FileExists(t, body.Path)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(core.KindUnknownView))
	assert.Equal(t, http.StatusNotFound, StatusFor(core.KindVertexNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(core.KindSerializationFailure))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(core.KindTraversalLimit))
}
