package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

func (r *Renderer) newTable(title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(header)
	return t
}

// Subgraph writes the vertices and edges of a response graph as tables.
func (r *Renderer) Subgraph(sub *core.Subgraph) {
	vt := r.newTable("Vertices", table.Row{"GUID", "Label", "Properties"})
	for _, v := range sub.Vertices() {
		vt.AppendRow(table.Row{v.GUID, v.Label, formatProperties(v.Properties)})
	}
	vt.Render()

	if sub.EdgeCount() > 0 {
		et := r.newTable("Edges", table.Row{"Label", "From", "To"})
		for _, e := range sub.Edges() {
			et.AppendRow(table.Row{e.Label, e.Source, e.Target})
		}
		et.Render()
	}

	r.Printf("%s: %d vertices, %d edges\n", sub.Graph, sub.VertexCount(), sub.EdgeCount())
}

// Stats writes graph statistics as a table.
func (r *Renderer) Stats(stats []graph.Stats) {
	t := r.newTable("", table.Row{"Graph", "Vertices", "Edges", "Vertex labels", "Edge labels"})
	for _, st := range stats {
		t.AppendRow(table.Row{st.Graph, st.Vertices, st.Edges, formatCounts(st.VertexLabels), formatCounts(st.EdgeLabels)})
	}
	t.Render()
}

// Paths writes one row per named graph and file.
func (r *Renderer) Paths(names []core.NamedGraph, paths []string) {
	t := r.newTable("", table.Row{"Graph", "File"})
	for i, name := range names {
		t.AppendRow(table.Row{name, paths[i]})
	}
	t.Render()
}

func formatProperties(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + props[k]
	}
	return strings.Join(parts, "\n")
}

func formatCounts(counts map[string]int) string {
	labels := graph.SortedLabels(counts)
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s (%d)", l, counts[l])
	}
	return strings.Join(parts, "\n")
}
