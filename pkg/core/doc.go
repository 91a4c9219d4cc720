// Package core defines the shared language of the leapgraph system.
//
// This package contains:
//   - Graph entities (Vertex, Edge, Subgraph)
//   - Query vocabulary (NamedGraph, Scope, View, edge labels)
//   - Error kinds shared by the store, the traversal engine and the boundaries
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
