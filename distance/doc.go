// Package distance provides float32 vector similarity and distance kernels.
//
// All arithmetic is carried out in float32, the precision vectors are stored
// at, so scores are reproducible across index strategies.
//
// # Supported Metrics
//
//   - Cosine similarity: dot(a, b) / (|a| * |b|), in [-1, 1]
//   - Cosine distance: 1 - cosine similarity, in [0, 2]
//
// # Usage
//
//	sim := distance.CosineSimilarity(a, b)
//	dist := distance.CosineDistance(a, b)
//	score := distance.Similarity(dist)
package distance
