package store

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/reeldeal/reeldeal/pkg/corpus"
)

// Store is a local SQLite cache of raw ingested movie records. It lets an
// offline rebuild reuse the last successful TMDb walk instead of repeating
// it. The cache feeds the build pipeline only; the serving artifacts are
// produced and validated separately.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening movie cache")
	}

	schema := `
	CREATE TABLE IF NOT EXISTS movies (
		movie_id      INTEGER PRIMARY KEY,
		title         TEXT NOT NULL,
		overview      TEXT NOT NULL DEFAULT '',
		genres_json   TEXT NOT NULL DEFAULT '[]',
		keywords_json TEXT NOT NULL DEFAULT '[]',
		cast_json     TEXT NOT NULL DEFAULT '[]',
		crew_json     TEXT NOT NULL DEFAULT '[]',
		fetched_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_movies_title ON movies(title);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating movie cache schema")
	}
	return &Store{db: db}, nil
}

// Upsert inserts or refreshes records by movie_id in one transaction.
func (s *Store) Upsert(movies []corpus.Movie) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO movies (movie_id, title, overview, genres_json, keywords_json, cast_json, crew_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET
			title = excluded.title,
			overview = excluded.overview,
			genres_json = excluded.genres_json,
			keywords_json = excluded.keywords_json,
			cast_json = excluded.cast_json,
			crew_json = excluded.crew_json,
			fetched_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return errors.Wrap(err, "preparing upsert")
	}
	defer stmt.Close()

	for _, m := range movies {
		genres, keywords, cast, crew, err := encodeLists(m)
		if err != nil {
			return errors.Wrapf(err, "encoding movie %d", m.ID)
		}
		if _, err := stmt.Exec(m.ID, m.Title, m.Overview, genres, keywords, cast, crew); err != nil {
			return errors.Wrapf(err, "upserting movie %d", m.ID)
		}
	}
	return tx.Commit()
}

// All returns every cached record ordered by movie_id, so repeated offline
// builds see the records in the same order.
func (s *Store) All() ([]corpus.Movie, error) {
	rows, err := s.db.Query(`
		SELECT movie_id, title, overview, genres_json, keywords_json, cast_json, crew_json
		FROM movies ORDER BY movie_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying movie cache")
	}
	defer rows.Close()

	var movies []corpus.Movie
	for rows.Next() {
		var m corpus.Movie
		var genres, keywords, cast, crew string
		if err := rows.Scan(&m.ID, &m.Title, &m.Overview, &genres, &keywords, &cast, &crew); err != nil {
			return nil, errors.Wrap(err, "scanning movie row")
		}
		if err := decodeLists(&m, genres, keywords, cast, crew); err != nil {
			return nil, errors.Wrapf(err, "decoding movie %d", m.ID)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// Count returns the number of cached records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeLists(m corpus.Movie) (genres, keywords, cast, crew string, err error) {
	fields := []struct {
		list []string
		dest *string
	}{
		{m.Genres, &genres},
		{m.Keywords, &keywords},
		{m.Cast, &cast},
		{m.Crew, &crew},
	}
	for _, f := range fields {
		list := f.list
		if list == nil {
			list = []string{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return "", "", "", "", err
		}
		*f.dest = string(data)
	}
	return genres, keywords, cast, crew, nil
}

func decodeLists(m *corpus.Movie, genres, keywords, cast, crew string) error {
	for _, f := range []struct {
		data string
		dest *[]string
	}{
		{genres, &m.Genres},
		{keywords, &m.Keywords},
		{cast, &m.Cast},
		{crew, &m.Crew},
	} {
		if err := json.Unmarshal([]byte(f.data), f.dest); err != nil {
			return err
		}
	}
	return nil
}
