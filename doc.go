// Package vecdb provides an embedded, multi-collection vector database.
//
// A Database holds named collections. Every collection has a fixed vector
// dimension, an ordered list of vectors with one metadata value and one
// source tag each, and at most one approximate nearest neighbor index.
//
// # Indexing
//
// Inserting vectors never touches the index. BuildIndex reconstructs the
// index from all vectors of a collection and swaps it in atomically, so
// callers decide when to pay for a rebuild. Queries see the vectors that
// were present at the last build; a collection that was never built fails
// queries with ErrIndexNotBuilt.
//
// The default index is an HNSW graph (package index/hnsw) built with a
// seeded level generator: the same vectors in the same order always yield
// the same graph and the same answers. Package index/flat provides an exact
// scanner with the same contract.
//
// # Quick Start
//
//	ctx := context.Background()
//	db := vecdb.New(vecdb.WithLogger(vecdb.NewTextLogger(slog.LevelInfo)))
//	defer db.Close()
//
//	_ = db.CreateCollection(ctx, "colors", 3)
//	_ = db.Insert(ctx, "colors",
//	    [][]float32{{10, 12, 4.5}, {10, 11, 10.5}},
//	    []string{"red", "green"},
//	    "palette.txt",
//	)
//	_ = db.BuildIndex(ctx, "colors")
//
//	results, err := db.Query(ctx, "colors", []float32{10, 12.5, 4.5}, 1)
//	// results[0].Value == "red"
//
// # Scoring
//
// Scores are cosine similarities computed in float32. Results are ordered
// by descending score; equal scores keep insertion order.
//
// # Persistence
//
// Snapshot and SaveSnapshot serialize all collections; Restore and
// LoadSnapshot rebuild a Database from them. Snapshots can live in any
// blobstore.BlobStore (memory, local directory, S3, MinIO).
//
// # Errors
//
// Failures are reported with the sentinel errors of this package, which
// can be tested with errors.Is:
//
//	if errors.Is(err, vecdb.ErrDimensionMismatch) {
//	    var dm *vecdb.DimensionMismatchError
//	    if errors.As(err, &dm) {
//	        log.Printf("vector %d has %d dimensions", dm.Position, dm.Actual)
//	    }
//	}
//
// A failed operation leaves the Database unchanged.
package vecdb
