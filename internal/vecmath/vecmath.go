// Package vecmath holds the numeric primitives used for preference matching.
package vecmath

import (
	"errors"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CosineSimilarity returns dot(a, b) / (|a| * |b|), or exactly 0 when either
// vector has zero norm.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	// sqrt of the product keeps cos(v, v) exactly 1
	sim := dot / math.Sqrt(normA*normB)
	return math.Max(-1, math.Min(1, sim)), nil
}

// AbsDiff returns |a[i] - b[i]| for every dimension.
func AbsDiff(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, ErrDimensionMismatch
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = math.Abs(a[i] - b[i])
	}
	return out, nil
}

// ArgsortAscending returns the indices of v ordered by ascending value.
// Equal values keep their index order.
func ArgsortAscending(v []float64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return v[idx[i]] < v[idx[j]]
	})
	return idx
}
