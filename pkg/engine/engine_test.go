package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeldeal/reeldeal/pkg/index"
)

// Test corpus over the vocabulary {desert, love, space, war}, alphabetical
// column order, unit-norm rows:
//
//	A: space war   -> shares "space" with B, nothing with C
//	B: space love
//	C: desert love
const invSqrt2 = float32(0.70710678)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	idx := index.NewFlat(4)
	require.NoError(t, idx.Add([][]float32{
		{0, 0, invSqrt2, invSqrt2},
		{0, invSqrt2, invSqrt2, 0},
		{invSqrt2, invSqrt2, 0, 0},
	}))
	snap, err := NewSnapshot([]Movie{
		{ID: 101, Title: "A"},
		{ID: 102, Title: "B"},
		{ID: 103, Title: "C"},
	}, idx)
	require.NoError(t, err)
	return snap
}

func TestNewSnapshotAlignment(t *testing.T) {
	idx := index.NewFlat(2)
	require.NoError(t, idx.Add([][]float32{{1, 0}}))

	_, err := NewSnapshot([]Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}, idx)
	assert.Error(t, err)
}

func TestRecommendNearestNeighbor(t *testing.T) {
	snap := testSnapshot(t)

	recs, err := snap.Recommend("A", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "B", recs[0].Title)
	assert.Equal(t, 102, recs[0].MovieID)
	assert.InDelta(t, 0.5, float64(recs[0].Score), 1e-6)
}

func TestRecommendNeverReturnsSelf(t *testing.T) {
	snap := testSnapshot(t)

	for _, title := range []string{"A", "B", "C"} {
		for k := 1; k <= 5; k++ {
			recs, err := snap.Recommend(title, k)
			require.NoError(t, err)
			for _, rec := range recs {
				assert.NotEqual(t, title, rec.Title, "recommend(%q, %d)", title, k)
			}
		}
	}
}

func TestRecommendUnknownTitle(t *testing.T) {
	snap := testSnapshot(t)

	recs, err := snap.Recommend("No Such Movie", 5)
	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendKExceedsCorpus(t *testing.T) {
	snap := testSnapshot(t)

	recs, err := snap.Recommend("A", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 2, "three movies minus self caps the result at two")
}

func TestRecommendNonPositiveK(t *testing.T) {
	snap := testSnapshot(t)

	recs, err := snap.Recommend("A", 0)
	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendOrdering(t *testing.T) {
	snap := testSnapshot(t)

	recs, err := snap.Recommend("B", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// B shares one term with each of A and C at equal similarity; the tie
	// resolves by row position, so A comes first.
	assert.Equal(t, "A", recs[0].Title)
	assert.Equal(t, "C", recs[1].Title)
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, recs[i].Score, recs[i-1].Score)
	}
}

func TestRecommendExactDuplicates(t *testing.T) {
	// Two movies with identical vectors tie at score 1.0 with the query
	// itself; self-exclusion must drop the query's own row, not whichever
	// hit happens to rank first.
	idx := index.NewFlat(2)
	require.NoError(t, idx.Add([][]float32{
		{1, 0},
		{1, 0},
		{0, 1},
	}))
	snap, err := NewSnapshot([]Movie{
		{ID: 1, Title: "Twin One"},
		{ID: 2, Title: "Twin Two"},
		{ID: 3, Title: "Other"},
	}, idx)
	require.NoError(t, err)

	recs, err := snap.Recommend("Twin Two", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Twin One", recs[0].Title)
	assert.InDelta(t, 1.0, float64(recs[0].Score), 1e-6)
}

func TestDuplicateTitlesResolveToFirst(t *testing.T) {
	idx := index.NewFlat(2)
	require.NoError(t, idx.Add([][]float32{
		{1, 0},
		{0, 1},
		{1, 0},
	}))
	snap, err := NewSnapshot([]Movie{
		{ID: 1, Title: "Remake"},
		{ID: 2, Title: "Unique"},
		{ID: 3, Title: "Remake"},
	}, idx)
	require.NoError(t, err)

	pos, ok := snap.Lookup("Remake")
	require.True(t, ok)
	assert.Equal(t, 0, pos)

	// The query resolves to row 0, so row 2 (the other "Remake") is a
	// legitimate result.
	recs, err := snap.Recommend("Remake", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].MovieID)
}

func TestTitlesAndMovies(t *testing.T) {
	snap := testSnapshot(t)

	assert.Equal(t, []string{"A", "B", "C"}, snap.Titles())
	assert.Equal(t, 3, snap.Len())

	movies := snap.Movies()
	movies[0].Title = "mutated"
	assert.Equal(t, "A", snap.Movies()[0].Title, "Movies must return a copy")
}
