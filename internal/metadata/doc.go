// Package imetadata provides internal metadata indexing for efficient filtering.
//
// SourceIndex maps each source tag to the bitmap of point ids inserted
// under it. Filtered queries union the bitmaps of the requested sources and
// test candidate ids against the result:
//
//	sources ["a.txt", "c.txt"]  → bitmap(a.txt) OR bitmap(c.txt)
//
// Ids are assigned in insertion order, so each insert batch adds one
// contiguous range.
package imetadata
