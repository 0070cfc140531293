package text

import (
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

// TagString builds the canonical tag string for a movie from its raw text
// fields. The overview is split into whitespace tokens; entries in the list
// fields have embedded spaces stripped so multi-word names collapse into
// single tokens ("Science Fiction" -> "ScienceFiction"). The five token
// groups are concatenated in fixed order (overview, genres, keywords, cast,
// crew), lower-cased, and each token is stemmed.
//
// The transform is pure: identical inputs always produce identical output.
// Missing fields contribute nothing; malformed text never errors.
func TagString(overview string, genres, keywords, cast, crew []string) string {
	tokens := strings.Fields(overview)
	for _, group := range [][]string{genres, keywords, cast, crew} {
		for _, entry := range group {
			entry = strings.ReplaceAll(entry, " ", "")
			if entry != "" {
				tokens = append(tokens, entry)
			}
		}
	}
	for i, tok := range tokens {
		tokens[i] = Stem(strings.ToLower(tok))
	}
	return strings.Join(tokens, " ")
}

// Stem reduces a single token to its root form using the Snowball English
// stemmer, so "containers" and "containing" map to the same term.
func Stem(word string) string {
	return snowballeng.Stem(word, false)
}
