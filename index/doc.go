// Package index defines the approximate nearest neighbor strategy used by
// collections.
//
// An index is built in one shot from a snapshot of points and is immutable
// afterwards. Collections rebuild it explicitly; there is no incremental
// maintenance.
//
// Two strategies are provided:
//
//   - hnsw: Hierarchical Navigable Small World graph, approximate, sub-linear search
//   - flat: exact linear scan, useful for small collections and as ground truth
//
// Both score results by cosine similarity (1 - cosine distance) and return
// them most similar first, breaking ties by point id.
package index
