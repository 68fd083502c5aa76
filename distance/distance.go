package distance

import "math"

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

// Magnitude calculates the L2 norm of v.
func Magnitude(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// CosineSimilarity calculates the cosine of the angle between a and b.
// If either vector has zero magnitude the similarity is 0.
func CosineSimilarity(a, b []float32) float32 {
	return CosineSimilarityNorms(a, b, Magnitude(a), Magnitude(b))
}

// CosineSimilarityNorms is CosineSimilarity with precomputed magnitudes.
// It returns bit-identical results when the norms come from Magnitude.
func CosineSimilarityNorms(a, b []float32, magnitudeA, magnitudeB float32) float32 {
	// Avoid division by zero
	if magnitudeA == 0 || magnitudeB == 0 {
		return 0
	}

	return Dot(a, b) / (magnitudeA * magnitudeB)
}

// CosineDistance returns 1 - CosineSimilarity(a, b). Lower is closer.
func CosineDistance(a, b []float32) float32 {
	return 1 - CosineSimilarity(a, b)
}

// Similarity converts a cosine distance back into a similarity score.
func Similarity(dist float32) float32 {
	return 1 - dist
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm := Magnitude(v)
	if norm == 0 {
		return false
	}
	inv := 1 / norm
	for i := range v {
		v[i] *= inv
	}
	return true
}
