package search

import "math"

// Cosine returns the cosine similarity of a and b over their shared-length
// prefix. It returns 0 when either prefix has zero magnitude.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := range n {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
