package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeldeal/reeldeal/pkg/corpus"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndAll(t *testing.T) {
	s := openTestStore(t)

	movies := []corpus.Movie{
		{
			ID:       20,
			Title:    "Space War",
			Overview: "A war in space.",
			Genres:   []string{"Science Fiction"},
			Keywords: []string{"space war"},
			Cast:     []string{"Ada One"},
			Crew:     []string{"Fay Director"},
		},
		{ID: 10, Title: "Desert Love", Overview: "Love in the desert."},
	}
	require.NoError(t, s.Upsert(movies))

	got, err := s.All()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 10, got[0].ID, "records come back ordered by movie id")
	assert.Equal(t, "Desert Love", got[0].Title)
	assert.Empty(t, got[0].Genres)

	assert.Equal(t, 20, got[1].ID)
	assert.Equal(t, []string{"Science Fiction"}, got[1].Genres)
	assert.Equal(t, []string{"space war"}, got[1].Keywords)
	assert.Equal(t, []string{"Ada One"}, got[1].Cast)
	assert.Equal(t, []string{"Fay Director"}, got[1].Crew)
}

func TestUpsertRefreshesExistingRecord(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Upsert([]corpus.Movie{
		{ID: 1, Title: "Working Title", Overview: "First pass."},
	}))
	require.NoError(t, s.Upsert([]corpus.Movie{
		{ID: 1, Title: "Final Title", Overview: "Recut.", Genres: []string{"Drama"}},
	}))

	got, err := s.All()
	require.NoError(t, err)
	require.Len(t, got, 1, "a refreshed record must not duplicate")
	assert.Equal(t, "Final Title", got[0].Title)
	assert.Equal(t, "Recut.", got[0].Overview)
	assert.Equal(t, []string{"Drama"}, got[0].Genres)
}

func TestCount(t *testing.T) {
	s := openTestStore(t)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.Upsert([]corpus.Movie{
		{ID: 1, Title: "One"},
		{ID: 2, Title: "Two"},
	}))

	n, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenReopensExistingCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert([]corpus.Movie{{ID: 1, Title: "Kept"}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.All()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].Title)
}
