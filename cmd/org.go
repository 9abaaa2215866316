package cmd

import (
	"github.com/spf13/cobra"

	"github.com/circleous/orgseer/pkg/nested"
)

func init() {
	orgCmd.Flags().StringVarP(&orgPath, "path", "p", "",
		"dotted path of a nested field to print, e.g. plan.name")
	rootCmd.AddCommand(orgCmd)
}

var orgPath string

var orgCmd = &cobra.Command{
	Use:   "org name",
	Short: "Show an organization",
	Long:  `Fetch an organization document, or a single nested field of it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  showOrg,
}

func showOrg(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	oc := newOrgClient(cmd.Context(), conf, args[0])

	org, err := oc.Org(cmd.Context())
	if err != nil {
		return err
	}

	var v interface{} = org
	if path := nested.ParsePath(orgPath); len(path) > 0 {
		if v, err = nested.Access(org, path...); err != nil {
			return err
		}
	}

	return writeOutput(cmd.OutOrStdout(), outputFormat, v)
}
