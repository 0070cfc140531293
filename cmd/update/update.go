package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reeldeal/reeldeal/internal/config"
	"github.com/reeldeal/reeldeal/internal/store"
	"github.com/reeldeal/reeldeal/pkg/artifacts"
	"github.com/reeldeal/reeldeal/pkg/corpus"
	"github.com/reeldeal/reeldeal/pkg/tmdb"
)

func UpdateCmd() *cobra.Command {
	var pages int
	var offline bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Rebuild the recommendation artifacts from TMDb",
		Long: `Fetches popular movies from TMDb (or reuses the local cache with --offline),
normalizes and vectorizes them, builds the similarity index, and saves the
artifact triple to the data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(pages, offline)
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 50, "number of popular-movie pages to fetch")
	cmd.Flags().BoolVar(&offline, "offline", false, "rebuild from the local movie cache without calling TMDb")
	return cmd
}

func runUpdate(pages int, offline bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return err
	}

	st, err := store.Open(filepath.Join(cfg.Data.Dir, "movies.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	var movies []corpus.Movie
	if offline {
		movies, err = st.All()
		if err != nil {
			return err
		}
		if len(movies) == 0 {
			return fmt.Errorf("movie cache is empty, run 'reeldeal update' without --offline first")
		}
		fmt.Printf("Rebuilding from %d cached movies\n", len(movies))
	} else {
		if cfg.TMDB.APIKey == "" {
			return fmt.Errorf("TMDb API key not configured, run 'reeldeal config' or set TMDB_API_KEY")
		}
		client := tmdb.NewClient(cfg.TMDB.APIKey)
		fmt.Printf("Fetching %d pages of popular movies from TMDb...\n", pages)
		movies, err = client.FetchPopular(context.Background(), pages, func(page, collected int) {
			if page%10 == 0 {
				fmt.Printf("  processed %d/%d pages, %d movies so far\n", page, pages, collected)
			}
		})
		if err != nil {
			return fmt.Errorf("fetching movies: %w", err)
		}
		fmt.Printf("Fetched %d movies\n", len(movies))

		if err := st.Upsert(movies); err != nil {
			return fmt.Errorf("caching movies: %w", err)
		}
	}

	fmt.Println("Building similarity index...")
	snap, vec, err := corpus.Build(movies, cfg.Data.MaxFeatures)
	if err != nil {
		return err
	}

	if err := artifacts.Save(cfg.Data.Dir, snap, vec); err != nil {
		return fmt.Errorf("saving artifacts: %w", err)
	}
	fmt.Printf("Saved %d movies, %d vocabulary terms to %s\n", snap.Len(), vec.NumTerms(), cfg.Data.Dir)
	return nil
}
