// Package testutil generates deterministic vectors and exact ground truth
// for index and database tests.
//
//	rng := testutil.NewRNG(42)
//	points := rng.ClusteredVectors(2000, 32, 20, 0.1)
//	truth := testutil.ExactTopK(query, points, 10)
//	recall := testutil.ComputeRecall(truth, approx)
package testutil
