package publish

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reeldeal/reeldeal/internal/config"
	"github.com/reeldeal/reeldeal/pkg/artifacts"
)

func PublishCmd() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the artifact triple to a GitHub release",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.GitHub.Token == "" || cfg.GitHub.Repo == "" {
				return fmt.Errorf("GitHub not configured, run 'reeldeal config' or set GITHUB_TOKEN and GITHUB_REPO")
			}
			if tag == "" {
				tag = cfg.GitHub.ReleaseTag
			}

			store, err := artifacts.NewReleaseStore(cfg.GitHub.Token, cfg.GitHub.Repo)
			if err != nil {
				return err
			}
			fmt.Printf("Publishing artifacts from %s to %s release %s...\n", cfg.Data.Dir, cfg.GitHub.Repo, tag)
			if err := store.Publish(context.Background(), tag, cfg.Data.Dir); err != nil {
				return err
			}
			fmt.Println("Published")
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "release tag (defaults to the configured tag)")
	return cmd
}
