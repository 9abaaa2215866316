package cmd

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circleous/orgseer/internal/database"
	"github.com/circleous/orgseer/internal/survey"
)

func init() {
	surveyCmd.Flags().StringVar(&dbPath, "database", "",
		"sqlite database file, overrides the config")
	rootCmd.AddCommand(surveyCmd)
}

var dbPath string

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Survey every configured organization",
	Long: `List the repositories of every [[organization]] in the config file and
store them in the sqlite database.`,
	RunE: runSurvey,
}

func runSurvey(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(conf.Organizations) == 0 {
		return errors.New("no organization configured")
	}

	if dbPath != "" {
		conf.Database = dbPath
	}

	db, err := database.NewDatabase(conf.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return err
	}

	s, err := survey.New(conf, db)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Runner(cmd.Context()); err != nil {
		return err
	}

	stat := s.Stat()
	log.Info().Uint("organizations", stat.Organizations).
		Uint("repositories", stat.Repositories).
		Uint("failures", stat.Failures).
		Msg("survey done")

	if stat.Failures > 0 {
		return errors.New("survey finished with failures")
	}

	return nil
}
