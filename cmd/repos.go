package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	reposCmd.Flags().StringVarP(&licenseKey, "license", "l", "",
		"only list repositories with this license key, e.g. apache-2.0")
	rootCmd.AddCommand(reposCmd)
}

var licenseKey string

var reposCmd = &cobra.Command{
	Use:   "repos name",
	Short: "List the public repositories of an organization",
	Args:  cobra.ExactArgs(1),
	RunE:  listRepos,
}

func listRepos(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	oc := newOrgClient(cmd.Context(), conf, args[0])

	names, err := oc.PublicRepos(cmd.Context(), licenseKey)
	if err != nil {
		return err
	}

	log.Debug().Str("organization", oc.Name()).Str("license", licenseKey).
		Msgf("%d repositories", len(names))

	return writeOutput(cmd.OutOrStdout(), outputFormat, names)
}
