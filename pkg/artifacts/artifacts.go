package artifacts

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/reeldeal/reeldeal/pkg/engine"
	"github.com/reeldeal/reeldeal/pkg/index"
	"github.com/reeldeal/reeldeal/pkg/vectorizer"
)

// The serialized triple. Row positions must stay aligned across all three
// files: movies.json row i, index vector i, and the vocabulary that produced
// them all come from the same build.
const (
	MoviesFile     = "movies.json"
	IndexFile      = "movies.index"
	VocabularyFile = "vocabulary.json"
)

// Files lists the artifact file names that make up one complete triple.
func Files() []string {
	return []string{MoviesFile, IndexFile, VocabularyFile}
}

// Exists reports whether dir holds a complete triple.
func Exists(dir string) bool {
	for _, name := range Files() {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Save writes the artifact triple for a built snapshot into dir. Each file
// is written atomically (temp file + rename) so a crash mid-save never
// leaves a half-written artifact behind.
func Save(dir string, snap *engine.Snapshot, vec *vectorizer.Vectorizer) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating artifact dir")
	}

	movies, err := json.MarshalIndent(snap.Movies(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding movie metadata")
	}
	if err := writeAtomic(filepath.Join(dir, MoviesFile), movies); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := snap.Index().Export(&buf); err != nil {
		return errors.Wrap(err, "encoding index")
	}
	if err := writeAtomic(filepath.Join(dir, IndexFile), buf.Bytes()); err != nil {
		return err
	}

	vocab, err := json.MarshalIndent(vec.Vocabulary(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding vocabulary")
	}
	return writeAtomic(filepath.Join(dir, VocabularyFile), vocab)
}

// Load reads the movie metadata and index artifacts from dir and assembles a
// serving snapshot. A row-count mismatch between the two is corruption and
// fails loudly.
func Load(dir string) (*engine.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(dir, MoviesFile))
	if err != nil {
		return nil, errors.Wrap(err, "reading movie metadata")
	}
	var movies []engine.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, errors.Wrap(err, "decoding movie metadata")
	}

	f, err := os.Open(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, errors.Wrap(err, "opening index")
	}
	defer f.Close()
	idx, err := index.Import(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding index")
	}

	snap, err := engine.NewSnapshot(movies, idx)
	if err != nil {
		return nil, errors.Wrap(err, "artifacts out of alignment")
	}
	return snap, nil
}

// LoadVectorizer restores the frozen vocabulary artifact. It is only needed
// to vectorize new free text against an existing corpus; title lookups go
// through Load alone.
func LoadVectorizer(dir string) (*vectorizer.Vectorizer, error) {
	data, err := os.ReadFile(filepath.Join(dir, VocabularyFile))
	if err != nil {
		return nil, errors.Wrap(err, "reading vocabulary")
	}
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, errors.Wrap(err, "decoding vocabulary")
	}
	return vectorizer.NewFromVocabulary(terms), nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", filepath.Base(path))
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "renaming %s", filepath.Base(path))
	}
	return nil
}
