package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circleous/orgseer/internal/config"
	"github.com/circleous/orgseer/pkg/client"
	"github.com/circleous/orgseer/pkg/git"
	"github.com/circleous/orgseer/pkg/gitservice/github"
)

var rootCmd = &cobra.Command{
	Use:   "orgseer",
	Short: "orgseer is a tool to look into GitHub organizations",
	Long: `Query organization metadata and list its repositories, optionally
filtered by license. Surveys of many organizations are kept in a sqlite database.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	confPath     string
	outputFormat string
	silent       bool
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", "orgseer.toml", "config file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&silent, "silent", "s", false, "silent, only error or panic output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "more verbose for debug output")
	cobra.OnInitialize(func() {
		// init logger
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		if silent && verbose {
			log.Error().Msg("choose only one of silent or verbose output")
			os.Exit(1)
		}

		zerolog.SetGlobalLevel(zerolog.InfoLevel)

		if silent {
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		}

		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	})
}

// loadConfig reads the config file, a missing file at the default location
// falls back to the defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(confPath); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		log.Debug().Str("path", confPath).Msg("config file not found, using defaults")
		return config.Default(), nil
	}

	return config.Parse(confPath)
}

// newOrgClient builds a client for org from the loaded configuration
func newOrgClient(ctx context.Context, conf *config.Config, org string) *client.OrgClient {
	ctx = context.WithValue(ctx, git.TimeoutKey, conf.Timeout.Duration)

	return client.New(org,
		client.WithBaseURL(conf.BaseURL),
		client.WithFetcher(github.NewFetcherWithToken(ctx, conf.GithubToken)))
}

// Execute root cobra executor
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("")
		os.Exit(1)
	}
}
