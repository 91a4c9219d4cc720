// Package traversal answers lineage queries over a named graph.
//
// Five query shapes are supported:
//
//   - SOURCE_AND_DESTINATION: the queried vertex with its ultimate sources and
//     ultimate destinations, each side summarized behind a condensation vertex.
//   - ULTIMATE_SOURCE / ULTIMATE_DESTINATION: one side of the above.
//   - END_TO_END: every vertex and flow edge on a path from a root to the queried
//     vertex and from the queried vertex to a leaf, without synthetic vertices.
//   - GLOSSARY: the connected set of related glossary terms plus the data elements
//     they classify.
//
// Flow scopes follow the edge label selected by the view (table-flow or
// column-flow). Every closure keeps a visited set, so cyclic data terminates.
// The engine never mutates the graph it reads.
package traversal
