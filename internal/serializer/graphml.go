package serializer

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/leapstack-labs/leapgraph/pkg/core"
)

const graphMLNamespace = "http://graphml.graphdrawing.org/xmlns"

// Keys holding labels, following the TinkerPop GraphML convention.
const (
	keyVertexLabel = "labelV"
	keyEdgeLabel   = "labelE"
	propertyPrefix = "p_"
)

type graphML struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	ID     string        `xml:"id,attr"`
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// WriteGraphML writes sub as a GraphML document.
func WriteGraphML(w io.Writer, sub *core.Subgraph) error {
	vertices := sub.Vertices()

	propNames := make(map[string]bool)
	for _, v := range vertices {
		for k := range v.Properties {
			propNames[k] = true
		}
	}
	names := make([]string, 0, len(propNames))
	for k := range propNames {
		names = append(names, k)
	}
	sort.Strings(names)

	doc := graphML{
		XMLNS: graphMLNamespace,
		Keys: []graphMLKey{
			{ID: keyVertexLabel, For: "node", AttrName: keyVertexLabel, AttrType: "string"},
			{ID: keyEdgeLabel, For: "edge", AttrName: keyEdgeLabel, AttrType: "string"},
		},
		Graph: graphMLGraph{ID: string(sub.Graph), EdgeDefault: "directed"},
	}
	for _, name := range names {
		doc.Keys = append(doc.Keys, graphMLKey{ID: propertyPrefix + name, For: "node", AttrName: name, AttrType: "string"})
	}

	for _, v := range vertices {
		node := graphMLNode{ID: v.GUID, Data: []graphMLData{{Key: keyVertexLabel, Value: v.Label}}}
		keys := make([]string, 0, len(v.Properties))
		for k := range v.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			node.Data = append(node.Data, graphMLData{Key: propertyPrefix + k, Value: v.Properties[k]})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}
	for _, e := range sub.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{
			ID:     e.Key(),
			Source: e.Source,
			Target: e.Target,
			Data:   []graphMLData{{Key: keyEdgeLabel, Value: e.Label}},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return core.NewError(core.KindSerializationFailure, "write graphml", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return core.NewError(core.KindSerializationFailure, "write graphml", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return core.NewError(core.KindSerializationFailure, "write graphml", err)
	}
	return nil
}

// ReadGraphML parses a GraphML document written by WriteGraphML or by other
// tools using the labelV/labelE convention.
func ReadGraphML(r io.Reader) (*core.Subgraph, error) {
	var doc graphML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read graphml", err)
	}

	attrNames := make(map[string]string, len(doc.Keys))
	for _, k := range doc.Keys {
		attrNames[k.ID] = k.AttrName
	}

	sub := core.NewSubgraph(core.NamedGraph(doc.Graph.ID))
	for _, n := range doc.Graph.Nodes {
		v := core.Vertex{GUID: n.ID}
		for _, d := range n.Data {
			if d.Key == keyVertexLabel {
				v.Label = d.Value
				continue
			}
			name, ok := attrNames[d.Key]
			if !ok {
				name = d.Key
			}
			if v.Properties == nil {
				v.Properties = make(map[string]string)
			}
			v.Properties[name] = d.Value
		}
		sub.AddVertex(v)
	}
	for _, e := range doc.Graph.Edges {
		edge := core.Edge{Source: e.Source, Target: e.Target}
		for _, d := range e.Data {
			if d.Key == keyEdgeLabel {
				edge.Label = d.Value
			}
		}
		if !sub.AddEdge(edge) && (!sub.HasVertex(edge.Source) || !sub.HasVertex(edge.Target)) {
			return nil, core.NewError(core.KindSerializationFailure, "read graphml",
				fmt.Errorf("edge %s references unknown vertex", e.ID))
		}
	}
	return sub, nil
}
