package traversal

import (
	"strconv"

	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// condense summarizes a boundary behind one synthetic vertex attached to queried.
// For DirectionIn the fan is p -> C -> queried, for DirectionOut queried -> C -> s.
// Nothing is added when the boundary is empty or only holds the queried vertex.
func (e *Engine) condense(sub *core.Subgraph, queried core.Vertex, boundary []core.Vertex, dir core.Direction) {
	if len(boundary) == 0 || boundary[0].GUID == queried.GUID {
		return
	}

	c := core.Vertex{
		GUID:  core.CondensedPrefix + e.newID(),
		Label: core.LabelCondensed,
		Properties: map[string]string{
			"direction":   dir.String(),
			"displayName": "Condensed",
			"members":     strconv.Itoa(len(boundary)),
		},
	}
	sub.AddVertex(c)

	if dir == core.DirectionIn {
		sub.AddEdge(core.Edge{Label: core.EdgeCondensed, Source: c.GUID, Target: queried.GUID})
	} else {
		sub.AddEdge(core.Edge{Label: core.EdgeCondensed, Source: queried.GUID, Target: c.GUID})
	}

	for _, b := range boundary {
		sub.AddVertex(b)
		if dir == core.DirectionIn {
			sub.AddEdge(core.Edge{Label: core.EdgeCondensed, Source: b.GUID, Target: c.GUID})
		} else {
			sub.AddEdge(core.Edge{Label: core.EdgeCondensed, Source: c.GUID, Target: b.GUID})
		}
	}
}
