package cache

import (
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash"
)

// Dim is the size of the hashed-feature vector space. 256 buckets keep the
// vectors small while collisions stay rare for short customer queries.
const Dim = 256

// Vectorize maps a query onto a normalized hashed-feature vector. Tokens are
// lowercased words; each token adds weight to the bucket its hash selects.
func Vectorize(text string) []float32 {
	vec := make([]float32, Dim)

	for _, token := range tokenize(text) {
		bucket := xxhash.Sum64String(token) % Dim
		vec[bucket]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors produced by Vectorize.
// Both are unit length, so the dot product suffices.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
