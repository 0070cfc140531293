package data

import (
	"context"
	"fmt"

	"github.com/reeldeal/reeldeal/internal/config"
	"github.com/reeldeal/reeldeal/pkg/artifacts"
	"github.com/reeldeal/reeldeal/pkg/engine"
)

// LoadSnapshot loads the serving snapshot from the configured data
// directory. When the artifacts are missing locally and a GitHub repository
// is configured, it fetches the published triple first, mirroring the
// first-run path of the app.
func LoadSnapshot(cfg *config.Config) (*engine.Snapshot, error) {
	if !artifacts.Exists(cfg.Data.Dir) {
		if cfg.GitHub.Repo == "" {
			return nil, fmt.Errorf("no artifacts in %s, run 'reeldeal update' or configure GitHub and 'reeldeal fetch'", cfg.Data.Dir)
		}
		store, err := artifacts.NewReleaseStore(cfg.GitHub.Token, cfg.GitHub.Repo)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Downloading movie data from %s release %s...\n", cfg.GitHub.Repo, cfg.GitHub.ReleaseTag)
		if err := store.Fetch(context.Background(), cfg.GitHub.ReleaseTag, cfg.Data.Dir); err != nil {
			return nil, fmt.Errorf("downloading artifacts: %w", err)
		}
	}
	return artifacts.Load(cfg.Data.Dir)
}
