package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/reeldeal/reeldeal/pkg/corpus"
)

const (
	defaultAPIBase   = "https://api.themoviedb.org/3"
	defaultImageBase = "https://image.tmdb.org/t/p/w500"

	maxAttempts    = 5
	requestTimeout = 15 * time.Second
	pagePause      = 500 * time.Millisecond
)

// Client talks to the TMDb API. Requests are retried with capped exponential
// backoff; after the retry ceiling the terminal outcome is "give up", which
// callers treat as a skipped page or an absent poster rather than a failure
// of the whole run.
type Client struct {
	apiKey    string
	apiBase   string
	imageBase string
	http      *http.Client
	sleep     func(time.Duration)
}

// NewClient returns a TMDb client using the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:    apiKey,
		apiBase:   defaultAPIBase,
		imageBase: defaultImageBase,
		http:      &http.Client{Timeout: requestTimeout},
		sleep:     time.Sleep,
	}
}

type movieDetails struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Genres   []struct {
		Name string `json:"name"`
	} `json:"genres"`
	PosterPath string `json:"poster_path"`
}

type creditsResponse struct {
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

type keywordsResponse struct {
	Keywords []struct {
		Name string `json:"name"`
	} `json:"keywords"`
}

type popularResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

// FetchPopular walks the popular-movie listing and returns full records for
// every movie it can resolve. Pages or movies that keep failing after the
// retry ceiling are skipped, not fatal. report, when non-nil, is called
// after each page with the page number and the records collected so far.
func (c *Client) FetchPopular(ctx context.Context, pages int, report func(page, collected int)) ([]corpus.Movie, error) {
	var movies []corpus.Movie
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return movies, err
		}

		var listing popularResponse
		err := c.getJSON(ctx, fmt.Sprintf("/movie/popular?language=en-US&page=%d", page), &listing)
		if err == nil {
			for _, entry := range listing.Results {
				movie, err := c.FetchMovie(ctx, entry.ID)
				if err != nil {
					if ctx.Err() != nil {
						return movies, ctx.Err()
					}
					continue
				}
				movies = append(movies, movie)
			}
		}
		if report != nil {
			report(page, len(movies))
		}
		// Pace the page walk to stay friendly to the API.
		c.sleep(pagePause)
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("tmdb: no movies fetched after %d pages", pages)
	}
	return movies, nil
}

// FetchMovie assembles a full corpus record for one movie: details, the
// top-billed three cast members, directors from the crew, and keywords.
// Missing keywords degrade to an empty list.
func (c *Client) FetchMovie(ctx context.Context, id int) (corpus.Movie, error) {
	var details movieDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d?language=en-US", id), &details); err != nil {
		return corpus.Movie{}, fmt.Errorf("tmdb: details for %d: %w", id, err)
	}

	var credits creditsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/credits", id), &credits); err != nil {
		return corpus.Movie{}, fmt.Errorf("tmdb: credits for %d: %w", id, err)
	}

	movie := corpus.Movie{
		ID:       details.ID,
		Title:    details.Title,
		Overview: details.Overview,
	}
	for _, g := range details.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}
	for i, member := range credits.Cast {
		if i == 3 {
			break
		}
		movie.Cast = append(movie.Cast, member.Name)
	}
	for _, member := range credits.Crew {
		if member.Job == "Director" {
			movie.Crew = append(movie.Crew, member.Name)
		}
	}

	var keywords keywordsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/keywords", id), &keywords); err == nil {
		for _, k := range keywords.Keywords {
			movie.Keywords = append(movie.Keywords, k.Name)
		}
	}
	return movie, nil
}

// PosterURL resolves the display poster for a movie. It is best effort:
// transport failures and movies without a poster both report absence, never
// an error, so an unavailable poster can only ever cost the caller a visual.
func (c *Client) PosterURL(ctx context.Context, id int) (string, bool) {
	var details movieDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d?language=en-US", id), &details); err != nil {
		return "", false
	}
	if details.PosterPath == "" {
		return "", false
	}
	return c.imageBase + details.PosterPath, true
}

// getJSON fetches an API path, retrying transient failures (network errors,
// 429, and 5xx responses) up to maxAttempts with exponential backoff.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	u, err := url.Parse(c.apiBase + path)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			c.sleep(time.Duration(1<<(attempt-1))*time.Second + 500*time.Millisecond)
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		body, retryable, err := c.get(ctx, u.String())
		if err == nil {
			return json.Unmarshal(body, out)
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) get(ctx context.Context, rawURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}
