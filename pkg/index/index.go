package index

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange reports a row position outside the index bounds. It always
// means the corpus and the index have desynchronized, which is a programming
// error; callers must surface it, never coerce it.
var ErrOutOfRange = errors.New("index: position out of range")

// Result is a single search hit: a row position and its inner-product score
// against the query.
type Result struct {
	Pos   int
	Score float32
}

// Flat is an exact, brute-force inner-product index. Vectors are stored
// contiguously and addressed by dense 0-based position in insertion order.
//
// All stored vectors are expected to be unit-norm, which makes inner product
// equal to cosine similarity; the index itself neither checks nor rescales.
// A built Flat is safe for concurrent Search and Reconstruct calls as long
// as no Add runs concurrently.
type Flat struct {
	dim    int
	ntotal int
	data   []float32 // row-major, ntotal*dim
}

// NewFlat creates an empty index for d-dimensional vectors.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Dim returns the vector dimensionality.
func (f *Flat) Dim() int { return f.dim }

// NTotal returns the number of stored vectors.
func (f *Flat) NTotal() int { return f.ntotal }

// Add appends rows to the index in order. Every row must match the index
// dimensionality.
func (f *Flat) Add(rows [][]float32) error {
	for i, row := range rows {
		if len(row) != f.dim {
			return fmt.Errorf("index: row %d has dimension %d, want %d", i, len(row), f.dim)
		}
	}
	for _, row := range rows {
		f.data = append(f.data, row...)
	}
	f.ntotal += len(rows)
	return nil
}

// Reconstruct returns a copy of the stored vector at position i.
func (f *Flat) Reconstruct(i int) ([]float32, error) {
	if i < 0 || i >= f.ntotal {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, f.ntotal)
	}
	out := make([]float32, f.dim)
	copy(out, f.data[i*f.dim:(i+1)*f.dim])
	return out, nil
}

// Search scans every stored vector and returns the k positions with the
// highest inner product against query, ordered by descending score with ties
// broken by ascending position. When k exceeds the number of stored vectors
// all of them are returned; k < 1 returns nothing.
func (f *Flat) Search(query []float32, k int) ([]Result, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("index: query has dimension %d, want %d", len(query), f.dim)
	}
	if k < 1 || f.ntotal == 0 {
		return nil, nil
	}

	results := make([]Result, f.ntotal)
	for i := 0; i < f.ntotal; i++ {
		var dot float32
		row := f.data[i*f.dim : (i+1)*f.dim]
		for j, q := range query {
			dot += q * row[j]
		}
		results[i] = Result{Pos: i, Score: dot}
	}
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Pos < results[b].Pos
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}
