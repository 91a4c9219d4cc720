package core

import (
	"fmt"
	"strings"
)

// NamedGraph identifies one of the independent property graphs.
type NamedGraph string

// Named graphs.
const (
	GraphMain    NamedGraph = "MAIN"
	GraphBuffer  NamedGraph = "BUFFER"
	GraphHistory NamedGraph = "HISTORY"
	GraphMock    NamedGraph = "MOCK"
)

// AllGraphs lists every named graph in a stable order.
func AllGraphs() []NamedGraph {
	return []NamedGraph{GraphMain, GraphBuffer, GraphHistory, GraphMock}
}

// Valid reports whether g is a known named graph.
func (g NamedGraph) Valid() bool {
	switch g {
	case GraphMain, GraphBuffer, GraphHistory, GraphMock:
		return true
	}
	return false
}

// ParseNamedGraph parses a graph name case-insensitively.
func ParseNamedGraph(s string) (NamedGraph, error) {
	g := NamedGraph(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", NewError(KindUnknownGraph, "parse graph", fmt.Errorf("%q", s))
	}
	return g, nil
}

// Scope selects the lineage query shape.
type Scope string

// Scopes.
const (
	ScopeSourceAndDestination Scope = "SOURCE_AND_DESTINATION"
	ScopeEndToEnd             Scope = "END_TO_END"
	ScopeUltimateSource       Scope = "ULTIMATE_SOURCE"
	ScopeUltimateDestination  Scope = "ULTIMATE_DESTINATION"
	ScopeGlossary             Scope = "GLOSSARY"
)

// AllScopes lists every scope.
func AllScopes() []Scope {
	return []Scope{
		ScopeSourceAndDestination,
		ScopeEndToEnd,
		ScopeUltimateSource,
		ScopeUltimateDestination,
		ScopeGlossary,
	}
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeSourceAndDestination, ScopeEndToEnd, ScopeUltimateSource, ScopeUltimateDestination, ScopeGlossary:
		return true
	}
	return false
}

// NeedsView reports whether the scope follows flow edges selected by a View.
func (s Scope) NeedsView() bool {
	return s != ScopeGlossary
}

// ParseScope parses a scope name case-insensitively. Dashes are accepted for underscores.
func ParseScope(s string) (Scope, error) {
	sc := Scope(normalizeEnum(s))
	if !sc.Valid() {
		return "", NewError(KindUnknownScope, "parse scope", fmt.Errorf("%q", s))
	}
	return sc, nil
}

// View selects which edge-label family a traversal follows.
type View string

// Views.
const (
	ViewTable  View = "TABLE_VIEW"
	ViewColumn View = "COLUMN_VIEW"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	return v == ViewTable || v == ViewColumn
}

// EdgeLabel returns the flow edge label for the view, or "" for an unknown view.
func (v View) EdgeLabel() string {
	switch v {
	case ViewTable:
		return EdgeTableFlow
	case ViewColumn:
		return EdgeColumnFlow
	}
	return ""
}

// ParseView parses a view name case-insensitively. An empty string is an unknown view.
func ParseView(s string) (View, error) {
	v := View(normalizeEnum(s))
	if !v.Valid() {
		return "", NewError(KindUnknownView, "parse view", fmt.Errorf("%q", s))
	}
	return v, nil
}

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
}

// Direction selects which side of an edge a traversal follows.
type Direction int

const (
	// DirectionIn follows edges backwards, from target to source.
	DirectionIn Direction = iota
	// DirectionOut follows edges forwards, from source to target.
	DirectionOut
	// DirectionBoth follows edges regardless of direction.
	DirectionBoth
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	case DirectionBoth:
		return "both"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// LineageRequest is a single lineage query.
type LineageRequest struct {
	Graph NamedGraph
	Scope Scope
	View  View
	GUID  string
}
