package core

import "maps"

// Edge labels understood by the lineage engine.
const (
	// EdgeTableFlow connects table-level data flows (TABLE_VIEW).
	EdgeTableFlow = "table-flow"
	// EdgeColumnFlow connects column-level data flows (COLUMN_VIEW).
	EdgeColumnFlow = "column-flow"
	// EdgeCondensed connects a condensation vertex with real vertices.
	EdgeCondensed = "condensed"
	// EdgeTermToTerm relates two glossary terms. Traversed in both directions.
	EdgeTermToTerm = "term-to-term"
	// EdgeSemanticAssignment points from a data element to the glossary term classifying it.
	EdgeSemanticAssignment = "semantic-assignment"
)

// Vertex labels with special meaning. Any other label is an entity type chosen by ingestion.
const (
	// LabelCondensed is reserved for synthetic condensation vertices.
	LabelCondensed = "condensed"
	// LabelGlossaryTerm marks glossary terms.
	LabelGlossaryTerm = "glossary-term"
)

// CondensedPrefix prefixes the guid of every condensation vertex.
const CondensedPrefix = "condensed:"

// Vertex is a property graph vertex identified by its entity guid.
type Vertex struct {
	GUID       string            `json:"id"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Clone returns a copy of the vertex that shares no state with v.
func (v Vertex) Clone() Vertex {
	c := Vertex{GUID: v.GUID, Label: v.Label}
	if v.Properties != nil {
		c.Properties = maps.Clone(v.Properties)
	}
	return c
}

// IsCondensed reports whether v is a synthetic condensation vertex.
func (v Vertex) IsCondensed() bool {
	return v.Label == LabelCondensed
}

// Edge is a directed, labelled edge between two vertices of the same graph.
type Edge struct {
	Label  string `json:"label"`
	Source string `json:"outV"`
	Target string `json:"inV"`
}

// Key returns the identity of the edge: label plus endpoints.
func (e Edge) Key() string {
	return e.Label + ":" + e.Source + "->" + e.Target
}
