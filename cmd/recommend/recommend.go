package recommend

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reeldeal/reeldeal/internal/config"
	"github.com/reeldeal/reeldeal/internal/data"
	"github.com/reeldeal/reeldeal/pkg/tmdb"
)

func RecommendCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Recommend movies similar to a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(args[0], k)
		},
	}
	cmd.Flags().IntVarP(&k, "top", "k", 5, "number of recommendations")
	return cmd
}

func runRecommend(title string, k int) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	snap, err := data.LoadSnapshot(cfg)
	if err != nil {
		return err
	}

	recs, err := snap.Recommend(title, k)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("No recommendations for %q - try another movie\n", title)
		return nil
	}

	var posters *tmdb.Client
	if cfg.TMDB.APIKey != "" {
		posters = tmdb.NewClient(cfg.TMDB.APIKey)
	}

	fmt.Printf("Movies similar to %q:\n", title)
	for i, rec := range recs {
		fmt.Printf("%d. %s (score %.3f)\n", i+1, rec.Title, rec.Score)
		if posters != nil {
			if url, ok := posters.PosterURL(context.Background(), rec.MovieID); ok {
				fmt.Printf("   %s\n", url)
			} else {
				fmt.Println("   no poster available")
			}
		}
	}
	return nil
}
