// Package ingest applies lineage change events to the named graphs.
//
// Raw change-event consolidation happens upstream; this package only accepts
// already consolidated events (vertices and edges to upsert) and applies each one
// as a single write batch, so readers never see half an event.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/leapgraph/pkg/core"
	"gopkg.in/yaml.v3"
)

// Event is a consolidated lineage change for one named graph.
type Event struct {
	// Graph is the target graph. Empty selects the applier's default graph.
	Graph    string       `yaml:"graph" json:"graph"`
	Vertices []VertexSpec `yaml:"vertices" json:"vertices"`
	Edges    []EdgeSpec   `yaml:"edges" json:"edges"`
}

// VertexSpec describes a vertex to insert or replace.
type VertexSpec struct {
	GUID       string            `yaml:"guid" json:"guid"`
	Label      string            `yaml:"label" json:"label"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// EdgeSpec describes an edge to insert.
type EdgeSpec struct {
	Label string `yaml:"label" json:"label"`
	From  string `yaml:"from" json:"from"`
	To    string `yaml:"to" json:"to"`
}

// Vertex returns the vertex to store.
func (v VertexSpec) Vertex() core.Vertex {
	return core.Vertex{GUID: v.GUID, Label: v.Label, Properties: v.Properties}
}

// Edge returns the edge to store.
func (e EdgeSpec) Edge() core.Edge {
	return core.Edge{Label: e.Label, Source: e.From, Target: e.To}
}

// Decode reads every event in a YAML stream. Documents are separated by "---".
// JSON input is accepted as well since it is valid YAML. Unknown fields are errors.
func Decode(r io.Reader) ([]Event, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var events []Event
	for {
		var ev Event
		err := dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", len(events)+1, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// DecodeFile reads every event in a file.
func DecodeFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	events, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}
