package vectorizer

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// DefaultMaxFeatures caps the learned vocabulary when no explicit limit is
// given.
const DefaultMaxFeatures = 5000

var (
	// ErrNotFitted is returned by Transform before Fit has run.
	ErrNotFitted = errors.New("vectorizer: not fitted")
	// ErrAlreadyFitted is returned by a second Fit call; the vocabulary is
	// frozen after fitting.
	ErrAlreadyFitted = errors.New("vectorizer: already fitted")
)

// Vectorizer learns a fixed-size vocabulary from a corpus of tag strings and
// maps tag strings onto fixed-width count rows over that vocabulary.
//
// The vocabulary is frozen once Fit returns: later Transform calls use the
// same term-to-column mapping, and terms outside it contribute nothing.
type Vectorizer struct {
	maxFeatures int
	terms       []string       // vocabulary in column order
	columns     map[string]int // term -> column position
}

// New returns an unfitted Vectorizer. maxFeatures <= 0 selects
// DefaultMaxFeatures.
func New(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Vectorizer{maxFeatures: maxFeatures}
}

// NewFromVocabulary reconstructs a fitted Vectorizer from a previously
// learned vocabulary, in artifact column order.
func NewFromVocabulary(terms []string) *Vectorizer {
	v := &Vectorizer{
		maxFeatures: len(terms),
		terms:       append([]string(nil), terms...),
		columns:     make(map[string]int, len(terms)),
	}
	for i, t := range v.terms {
		v.columns[t] = i
	}
	return v
}

// Fit learns the vocabulary from the corpus tag strings: stop words are
// dropped, the remaining terms are ranked by document frequency (ties broken
// by term, so fitting is reproducible), the top maxFeatures survive, and
// columns are assigned in alphabetical term order.
//
// Fit may be called exactly once per Vectorizer.
func (v *Vectorizer) Fit(tags []string) error {
	if v.columns != nil {
		return ErrAlreadyFitted
	}

	df := make(map[string]int)
	for _, tag := range tags {
		seen := make(map[string]struct{})
		for _, term := range strings.Fields(tag) {
			if _, stop := stopWords[term]; stop {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	ranked := make([]string, 0, len(df))
	for term := range df {
		ranked = append(ranked, term)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if df[ranked[i]] != df[ranked[j]] {
			return df[ranked[i]] > df[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > v.maxFeatures {
		ranked = ranked[:v.maxFeatures]
	}
	sort.Strings(ranked)

	v.terms = ranked
	v.columns = make(map[string]int, len(ranked))
	for i, term := range ranked {
		v.columns[term] = i
	}
	return nil
}

// Transform maps each tag string to a count row over the frozen vocabulary,
// then L2-normalizes each row. Terms outside the vocabulary are silently
// ignored. A tag string with no vocabulary overlap yields an all-zero row;
// the zero vector normalizes to itself, never to NaN.
func (v *Vectorizer) Transform(tags []string) ([][]float32, error) {
	if v.columns == nil {
		return nil, ErrNotFitted
	}
	rows := make([][]float32, len(tags))
	for i, tag := range tags {
		row := make([]float32, len(v.terms))
		for _, term := range strings.Fields(tag) {
			if col, ok := v.columns[term]; ok {
				row[col]++
			}
		}
		normalize(row)
		rows[i] = row
	}
	return rows, nil
}

// Vocabulary returns the learned terms in column order.
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// Lookup returns the column position of a term in the frozen vocabulary.
func (v *Vectorizer) Lookup(term string) (int, bool) {
	col, ok := v.columns[term]
	return col, ok
}

// NumTerms returns the width of rows produced by Transform.
func (v *Vectorizer) NumTerms() int {
	return len(v.terms)
}

func normalize(row []float32) {
	var sum float64
	for _, x := range row {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range row {
		row[i] = float32(float64(row[i]) * inv)
	}
}
