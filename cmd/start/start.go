package start

import (
	"github.com/spf13/cobra"

	"github.com/reeldeal/reeldeal/internal/config"
	"github.com/reeldeal/reeldeal/internal/data"
	"github.com/reeldeal/reeldeal/pkg/tmdb"
)

func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the interactive movie picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			snap, err := data.LoadSnapshot(cfg)
			if err != nil {
				return err
			}

			var posters *tmdb.Client
			if cfg.TMDB.APIKey != "" {
				posters = tmdb.NewClient(cfg.TMDB.APIKey)
			}
			return StartTUI(snap, posters, cfg.Data.Dir)
		},
	}
}
