// Package serializer converts lineage graphs to portable interchange formats.
//
// Query responses use a GraphSON-style JSON document. Full-graph dumps are
// written as GraphML by default, with JSON and DuckDB as alternatives, to files
// named graph-<name>.<ext>.
package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// Document is the portable JSON representation of a (sub)graph.
type Document struct {
	Graph    core.NamedGraph `json:"graph"`
	Vertices []VertexDoc     `json:"vertices"`
	Edges    []EdgeDoc       `json:"edges"`
}

// VertexDoc is a vertex in a Document.
type VertexDoc struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
}

// EdgeDoc is an edge in a Document. OutV is the source and InV the target.
type EdgeDoc struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	OutV  string `json:"outV"`
	InV   string `json:"inV"`
}

// NewDocument builds the portable representation of sub.
func NewDocument(sub *core.Subgraph) Document {
	doc := Document{
		Graph:    sub.Graph,
		Vertices: make([]VertexDoc, 0, sub.VertexCount()),
		Edges:    make([]EdgeDoc, 0, sub.EdgeCount()),
	}
	for _, v := range sub.Vertices() {
		doc.Vertices = append(doc.Vertices, VertexDoc{ID: v.GUID, Label: v.Label, Properties: v.Properties})
	}
	for _, e := range sub.Edges() {
		doc.Edges = append(doc.Edges, EdgeDoc{ID: e.Key(), Label: e.Label, OutV: e.Source, InV: e.Target})
	}
	return doc
}

// Subgraph converts the document back to a response graph.
func (d Document) Subgraph() (*core.Subgraph, error) {
	sub := core.NewSubgraph(d.Graph)
	for _, v := range d.Vertices {
		if v.ID == "" {
			return nil, core.NewError(core.KindSerializationFailure, "decode vertex", fmt.Errorf("missing id"))
		}
		sub.AddVertex(core.Vertex{GUID: v.ID, Label: v.Label, Properties: v.Properties})
	}
	for _, e := range d.Edges {
		if !sub.HasVertex(e.OutV) || !sub.HasVertex(e.InV) {
			return nil, core.NewError(core.KindSerializationFailure, "decode edge",
				fmt.Errorf("edge %s references unknown vertex", e.ID))
		}
		sub.AddEdge(core.Edge{Label: e.Label, Source: e.OutV, Target: e.InV})
	}
	return sub, nil
}

// Serialize encodes sub as portable JSON.
func Serialize(sub *core.Subgraph) ([]byte, error) {
	data, err := json.Marshal(NewDocument(sub))
	if err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "serialize", err)
	}
	return data, nil
}

// SerializeIndent is Serialize with indentation, for files and terminals.
func SerializeIndent(sub *core.Subgraph) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(sub), "", "  ")
	if err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "serialize", err)
	}
	return data, nil
}

// Deserialize decodes portable JSON.
func Deserialize(data []byte) (*core.Subgraph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "deserialize", err)
	}
	return doc.Subgraph()
}

// ExportFullGraph copies every vertex and edge of the graph into a response graph.
func ExportFullGraph(r graph.Reader) *core.Subgraph {
	vertices, edges := r.Snapshot()
	sub := core.NewSubgraph(r.Name())
	for _, v := range vertices {
		sub.AddVertex(v)
	}
	for _, e := range edges {
		sub.AddEdge(e)
	}
	return sub
}
