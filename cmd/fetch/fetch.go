package fetch

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reeldeal/reeldeal/internal/config"
	"github.com/reeldeal/reeldeal/pkg/artifacts"
)

func FetchCmd() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the artifact triple from a GitHub release",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.GitHub.Repo == "" {
				return fmt.Errorf("GitHub repository not configured, run 'reeldeal config' or set GITHUB_REPO")
			}
			if tag == "" {
				tag = cfg.GitHub.ReleaseTag
			}

			store, err := artifacts.NewReleaseStore(cfg.GitHub.Token, cfg.GitHub.Repo)
			if err != nil {
				return err
			}
			fmt.Printf("Fetching artifacts for %s release %s into %s...\n", cfg.GitHub.Repo, tag, cfg.Data.Dir)
			if err := store.Fetch(context.Background(), tag, cfg.Data.Dir); err != nil {
				return err
			}
			fmt.Println("Fetched")
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "release tag (defaults to the configured tag)")
	return cmd
}
