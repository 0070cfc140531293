package corpus

import (
	"fmt"

	"github.com/reeldeal/reeldeal/pkg/engine"
	"github.com/reeldeal/reeldeal/pkg/index"
	"github.com/reeldeal/reeldeal/pkg/text"
	"github.com/reeldeal/reeldeal/pkg/vectorizer"
)

// Movie is a raw ingested movie record. Records are immutable once ingested;
// the build pipeline owns the slice it is given.
type Movie struct {
	ID       int      `json:"movie_id"`
	Title    string   `json:"title"`
	Overview string   `json:"overview"`
	Genres   []string `json:"genres"`
	Keywords []string `json:"keywords"`
	Cast     []string `json:"cast"`
	Crew     []string `json:"crew"`
}

// Tags derives the movie's canonical tag string.
func (m Movie) Tags() string {
	return text.TagString(m.Overview, m.Genres, m.Keywords, m.Cast, m.Crew)
}

// Build runs the offline pipeline over a corpus: normalize every record to a
// tag string, fit the vocabulary, vectorize, and assemble the similarity
// index and snapshot. Records without a title are dropped; the rest keep
// their ingest order, which fixes their row positions for the lifetime of
// the snapshot.
//
// The returned Vectorizer carries the frozen vocabulary for the artifact
// triple; the snapshot alone serves title-based recommendation.
func Build(movies []Movie, maxFeatures int) (*engine.Snapshot, *vectorizer.Vectorizer, error) {
	kept := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if m.Title == "" {
			continue
		}
		kept = append(kept, m)
	}

	tags := make([]string, len(kept))
	for i, m := range kept {
		tags[i] = m.Tags()
	}

	vec := vectorizer.New(maxFeatures)
	if err := vec.Fit(tags); err != nil {
		return nil, nil, fmt.Errorf("corpus: fitting vocabulary: %w", err)
	}
	rows, err := vec.Transform(tags)
	if err != nil {
		return nil, nil, fmt.Errorf("corpus: vectorizing: %w", err)
	}

	idx := index.NewFlat(vec.NumTerms())
	if err := idx.Add(rows); err != nil {
		return nil, nil, fmt.Errorf("corpus: building index: %w", err)
	}

	meta := make([]engine.Movie, len(kept))
	for i, m := range kept {
		meta[i] = engine.Movie{ID: m.ID, Title: m.Title}
	}
	snap, err := engine.NewSnapshot(meta, idx)
	if err != nil {
		return nil, nil, err
	}
	return snap, vec, nil
}
