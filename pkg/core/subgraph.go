package core

// Subgraph is a response graph: an ordered, deduplicated set of vertex copies and edges
// taken from a single named graph.
type Subgraph struct {
	Graph NamedGraph

	vertices []Vertex
	index    map[string]int
	edges    []Edge
	edgeKeys map[string]struct{}
}

// NewSubgraph creates an empty response graph for the named graph.
func NewSubgraph(graph NamedGraph) *Subgraph {
	return &Subgraph{
		Graph:    graph,
		index:    make(map[string]int),
		edgeKeys: make(map[string]struct{}),
	}
}

// AddVertex adds a copy of v. It returns false if a vertex with the same guid is
// already present, in which case the existing copy is kept.
func (s *Subgraph) AddVertex(v Vertex) bool {
	if _, ok := s.index[v.GUID]; ok {
		return false
	}
	s.index[v.GUID] = len(s.vertices)
	s.vertices = append(s.vertices, v.Clone())
	return true
}

// AddEdge adds e unless an edge with the same label and endpoints exists.
// Both endpoints must already be in the subgraph.
func (s *Subgraph) AddEdge(e Edge) bool {
	if !s.HasVertex(e.Source) || !s.HasVertex(e.Target) {
		return false
	}
	key := e.Key()
	if _, ok := s.edgeKeys[key]; ok {
		return false
	}
	s.edgeKeys[key] = struct{}{}
	s.edges = append(s.edges, e)
	return true
}

// HasVertex reports whether a vertex with the guid is present.
func (s *Subgraph) HasVertex(guid string) bool {
	_, ok := s.index[guid]
	return ok
}

// HasEdge reports whether an edge with the label and endpoints is present.
func (s *Subgraph) HasEdge(label, source, target string) bool {
	_, ok := s.edgeKeys[Edge{Label: label, Source: source, Target: target}.Key()]
	return ok
}

// Vertex returns a copy of the vertex with the guid.
func (s *Subgraph) Vertex(guid string) (Vertex, bool) {
	i, ok := s.index[guid]
	if !ok {
		return Vertex{}, false
	}
	return s.vertices[i].Clone(), true
}

// Vertices returns copies of all vertices in insertion order.
func (s *Subgraph) Vertices() []Vertex {
	out := make([]Vertex, len(s.vertices))
	for i, v := range s.vertices {
		out[i] = v.Clone()
	}
	return out
}

// Edges returns all edges in insertion order.
func (s *Subgraph) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// VertexCount returns the number of vertices.
func (s *Subgraph) VertexCount() int { return len(s.vertices) }

// EdgeCount returns the number of edges.
func (s *Subgraph) EdgeCount() int { return len(s.edges) }

// GUIDs returns the vertex guids in insertion order.
func (s *Subgraph) GUIDs() []string {
	out := make([]string, len(s.vertices))
	for i, v := range s.vertices {
		out[i] = v.GUID
	}
	return out
}

// CondensedVertices returns the synthetic condensation vertices.
func (s *Subgraph) CondensedVertices() []Vertex {
	var out []Vertex
	for _, v := range s.vertices {
		if v.IsCondensed() {
			out = append(out, v.Clone())
		}
	}
	return out
}
