package main

import (
	"fmt"
	"os"

	"github.com/reeldeal/reeldeal/cmd/config"
	"github.com/reeldeal/reeldeal/cmd/fetch"
	"github.com/reeldeal/reeldeal/cmd/publish"
	"github.com/reeldeal/reeldeal/cmd/recommend"
	"github.com/reeldeal/reeldeal/cmd/start"
	"github.com/reeldeal/reeldeal/cmd/update"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reeldeal",
		Short: "Reel Deal - content-based movie recommender",
	}

	rootCmd.AddCommand(
		update.UpdateCmd(),
		publish.PublishCmd(),
		fetch.FetchCmd(),
		recommend.RecommendCmd(),
		start.StartCmd(),
		config.ConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
