package imetadata

import "github.com/RoaringBitmap/roaring/v2"

// SourceIndex maps each source tag to the set of row ids inserted under it.
//
// Rows are appended in batches that share one tag, so each batch is a
// contiguous id range and the bitmaps stay run-length compressed.
//
// SourceIndex is not safe for concurrent use; the owning collection
// synchronizes access.
type SourceIndex struct {
	bitmaps map[string]*roaring.Bitmap
}

// NewSourceIndex creates an empty index.
func NewSourceIndex() *SourceIndex {
	return &SourceIndex{
		bitmaps: make(map[string]*roaring.Bitmap),
	}
}

// AddRange records rows [start, end) as belonging to tag.
func (s *SourceIndex) AddRange(tag string, start, end uint32) {
	if end <= start {
		return
	}

	rb, ok := s.bitmaps[tag]
	if !ok {
		rb = roaring.New()
		s.bitmaps[tag] = rb
	}
	rb.AddRange(uint64(start), uint64(end))
	rb.RunOptimize()
}

// Counts returns the number of rows per tag.
func (s *SourceIndex) Counts() map[string]uint64 {
	out := make(map[string]uint64, len(s.bitmaps))
	for tag, rb := range s.bitmaps {
		out[tag] = rb.GetCardinality()
	}
	return out
}

// Union returns a new bitmap holding every row tagged with any of tags.
// Unknown tags contribute nothing.
func (s *SourceIndex) Union(tags []string) *roaring.Bitmap {
	out := roaring.New()
	for _, tag := range tags {
		if rb, ok := s.bitmaps[tag]; ok {
			out.Or(rb)
		}
	}
	return out
}
