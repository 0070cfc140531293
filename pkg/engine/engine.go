package engine

import (
	"fmt"

	"github.com/reeldeal/reeldeal/pkg/index"
)

// Movie is the minimal per-row metadata the serving path needs: the stable
// external TMDb identifier and the title used as the lookup key.
type Movie struct {
	ID    int    `json:"movie_id"`
	Title string `json:"title"`
}

// Recommendation is a single recommended movie with its similarity score.
type Recommendation struct {
	MovieID int
	Title   string
	Score   float32
}

// Snapshot binds row-aligned movie metadata to a built similarity index:
// position i in the index corresponds to movies[i]. A Snapshot is immutable
// after construction and safe for concurrent readers; rebuilding a corpus
// means constructing a fresh Snapshot and swapping the reference in whole,
// so readers never observe a half-built index.
type Snapshot struct {
	movies  []Movie
	byTitle map[string]int
	idx     *index.Flat
}

// NewSnapshot assembles a Snapshot from metadata and an index built from the
// same corpus in the same order. A length mismatch means the artifacts have
// desynchronized and is refused loudly.
//
// Duplicate titles resolve to their first occurrence in build order.
func NewSnapshot(movies []Movie, idx *index.Flat) (*Snapshot, error) {
	if len(movies) != idx.NTotal() {
		return nil, fmt.Errorf("engine: %d movies but %d indexed vectors", len(movies), idx.NTotal())
	}
	byTitle := make(map[string]int, len(movies))
	for i, m := range movies {
		if _, ok := byTitle[m.Title]; !ok {
			byTitle[m.Title] = i
		}
	}
	return &Snapshot{
		movies:  append([]Movie(nil), movies...),
		byTitle: byTitle,
		idx:     idx,
	}, nil
}

// Len returns the number of movies in the snapshot.
func (s *Snapshot) Len() int { return len(s.movies) }

// Movies returns the per-row metadata in row order.
func (s *Snapshot) Movies() []Movie {
	return append([]Movie(nil), s.movies...)
}

// Titles returns all titles in row order, for pickers and completion.
func (s *Snapshot) Titles() []string {
	titles := make([]string, len(s.movies))
	for i, m := range s.movies {
		titles[i] = m.Title
	}
	return titles
}

// Lookup resolves a title to its row position (first match in build order).
func (s *Snapshot) Lookup(title string) (int, bool) {
	pos, ok := s.byTitle[title]
	return pos, ok
}

// Index exposes the underlying similarity index, read-only by convention,
// for serialization.
func (s *Snapshot) Index() *index.Flat { return s.idx }

// Recommend returns up to k movies most similar to the named one, best
// first. An unknown title yields an empty result and no error, so callers
// can fall back to "try another movie". Any failure below this point means
// the corpus and index have desynchronized and is returned as an error.
//
// The index is asked for k+1 neighbors because the query movie matches
// itself with the top score; the query's own row is dropped wherever it
// appears in the results rather than assuming it ranks first, since an exact
// duplicate of the query movie can tie it.
func (s *Snapshot) Recommend(title string, k int) ([]Recommendation, error) {
	if k < 1 {
		return nil, nil
	}
	pos, ok := s.byTitle[title]
	if !ok {
		return nil, nil
	}

	vec, err := s.idx.Reconstruct(pos)
	if err != nil {
		return nil, fmt.Errorf("engine: reconstructing row %d for %q: %w", pos, title, err)
	}
	hits, err := s.idx.Search(vec, k+1)
	if err != nil {
		return nil, fmt.Errorf("engine: searching neighbors of %q: %w", title, err)
	}

	recs := make([]Recommendation, 0, k)
	for _, h := range hits {
		if h.Pos == pos {
			continue
		}
		if len(recs) == k {
			break
		}
		m := s.movies[h.Pos]
		recs = append(recs, Recommendation{MovieID: m.ID, Title: m.Title, Score: h.Score})
	}
	return recs, nil
}
