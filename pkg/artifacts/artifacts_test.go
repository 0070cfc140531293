package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeldeal/reeldeal/pkg/corpus"
	"github.com/reeldeal/reeldeal/pkg/engine"
	"github.com/reeldeal/reeldeal/pkg/vectorizer"
)

func buildFixture(t *testing.T) (*engine.Snapshot, *vectorizer.Vectorizer) {
	t.Helper()
	snap, vec, err := corpus.Build([]corpus.Movie{
		{ID: 1, Title: "A", Keywords: []string{"space", "war"}},
		{ID: 2, Title: "B", Keywords: []string{"space", "love"}},
		{ID: 3, Title: "C", Keywords: []string{"desert", "love"}},
	}, 0)
	require.NoError(t, err)
	return snap, vec
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap, vec := buildFixture(t)

	require.NoError(t, Save(dir, snap, vec))
	assert.True(t, Exists(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, snap.Len(), loaded.Len())
	assert.Equal(t, snap.Titles(), loaded.Titles())

	// Recommendations must be identical before and after the round trip.
	for _, title := range []string{"A", "B", "C"} {
		want, err := snap.Recommend(title, 2)
		require.NoError(t, err)
		got, err := loaded.Recommend(title, 2)
		require.NoError(t, err)
		assert.Equal(t, want, got, "recommend(%q) diverged after reload", title)
	}
}

func TestLoadVectorizerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap, vec := buildFixture(t)
	require.NoError(t, Save(dir, snap, vec))

	restored, err := LoadVectorizer(dir)
	require.NoError(t, err)
	assert.Equal(t, vec.Vocabulary(), restored.Vocabulary())

	tags := []string{"space desert unknown"}
	want, err := vec.Transform(tags)
	require.NoError(t, err)
	got, err := restored.Transform(tags)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))

	snap, vec := buildFixture(t)
	require.NoError(t, Save(dir, snap, vec))
	require.NoError(t, os.Remove(filepath.Join(dir, VocabularyFile)))
	assert.False(t, Exists(dir), "a partial triple must not count as present")
}

func TestLoadRejectsMisalignedArtifacts(t *testing.T) {
	dir := t.TempDir()
	snap, vec := buildFixture(t)
	require.NoError(t, Save(dir, snap, vec))

	// Drop one movie from the metadata while leaving the index untouched.
	truncated, err := json.Marshal(snap.Movies()[:2])
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, MoviesFile), truncated, 0644))

	_, err = Load(dir)
	assert.Error(t, err, "row-count mismatch must be refused, not served")
}

func TestLoadRejectsCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	snap, vec := buildFixture(t)
	require.NoError(t, Save(dir, snap, vec))

	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("garbage"), 0644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	snap, vec := buildFixture(t)
	require.NoError(t, Save(dir, snap, vec))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, Files(), names)
}
