package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reeldeal/reeldeal/internal/config"
)

func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Configure reeldeal settings",
		RunE:  runConfig,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = &config.Config{}
	}

	fmt.Println("\nTMDb Configuration")
	fmt.Println("==================")
	fmt.Println("To fetch movie data and posters, you'll need:")
	fmt.Println("1. A TMDb API key from https://www.themoviedb.org/settings/api")
	fmt.Print("\nWould you like to configure TMDb? (y/N): ")

	configureTMDB, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(configureTMDB)) == "y" {
		fmt.Printf("TMDb API Key [%s]: ", maskToken(cfg.TMDB.APIKey))
		key, _ := reader.ReadString('\n')
		key = strings.TrimSpace(key)
		if key != "" {
			cfg.TMDB.APIKey = key
		}
	}

	fmt.Println("\nGitHub Configuration")
	fmt.Println("====================")
	fmt.Println("To publish and fetch model artifacts via GitHub releases, you'll need:")
	fmt.Println("1. A personal access token with 'repo' scope")
	fmt.Println("2. The repository that holds the releases (format: owner/repo)")
	fmt.Print("\nWould you like to configure GitHub? (y/N): ")

	configureGitHub, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(configureGitHub)) == "y" {
		fmt.Printf("GitHub Token [%s]: ", maskToken(cfg.GitHub.Token))
		token, _ := reader.ReadString('\n')
		token = strings.TrimSpace(token)
		if token != "" {
			cfg.GitHub.Token = token
		}

		fmt.Printf("GitHub Repository [%s]: ", cfg.GitHub.Repo)
		repo, _ := reader.ReadString('\n')
		repo = strings.TrimSpace(repo)
		if repo != "" {
			cfg.GitHub.Repo = repo
		}

		fmt.Printf("Release Tag [%s]: ", cfg.GitHub.ReleaseTag)
		tag, _ := reader.ReadString('\n')
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cfg.GitHub.ReleaseTag = tag
		}
	}

	return config.SaveConfig(cfg)
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
