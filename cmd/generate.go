package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circleous/orgseer/internal/database"
	"github.com/circleous/orgseer/pkg/git"
	"github.com/circleous/orgseer/pkg/nested"
)

func init() {
	generateCmd.Flags().BoolVar(&jsonOut, "json", false, "use json as output file type")
	generateCmd.Flags().BoolVar(&yamlOut, "yaml", false, "use yaml as output file type")
	generateCmd.Flags().StringVar(&generateOrg, "org", "", "only export this organization")
	generateCmd.Flags().StringVarP(&fieldPath, "field", "f", "",
		"dotted path of a payload field to add to every record, e.g. license.spdx_id")
	generateCmd.Flags().StringVar(&generateDB, "database", "",
		"sqlite database file, overrides the config")
	rootCmd.AddCommand(generateCmd)
}

var (
	jsonOut     bool
	yamlOut     bool
	generateOrg string
	fieldPath   string
	generateDB  string
)

var generateCmd = &cobra.Command{
	Use:   "generate output_file_name",
	Short: "Generate repository data from database",
	Long: `Generate repository data from database. A file type can be choose either by specifying
with the flag or output file name extension (.json or .yaml). Use - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: generate,
}

// record is the exported shape of a stored repository
type record struct {
	Org          string      `json:"org" yaml:"org"`
	Name         string      `json:"name" yaml:"name"`
	License      string      `json:"license,omitempty" yaml:"license,omitempty"`
	URL          string      `json:"url,omitempty" yaml:"url,omitempty"`
	LatestCommit string      `json:"latest_commit,omitempty" yaml:"latest_commit,omitempty"`
	Field        interface{} `json:"field,omitempty" yaml:"field,omitempty"`
}

func generate(cmd *cobra.Command, args []string) error {
	if jsonOut && yamlOut {
		return errors.New("--json and --yaml flags can't be used together, choose one of them")
	}

	outputFileName := args[0]
	format := generateFormat(outputFileName)

	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if generateDB != "" {
		conf.Database = generateDB
	}

	db, err := database.NewDatabase(conf.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return err
	}

	repos, err := db.ListRepos(cmd.Context(), generateOrg)
	if err != nil {
		return err
	}

	records := toRecords(repos, nested.ParsePath(fieldPath))

	log.Debug().Str("filename", outputFileName).Str("format", format).
		Int("records", len(records)).Msg("output")

	if outputFileName == "-" {
		return writeOutput(cmd.OutOrStdout(), format, records)
	}

	return writeFile(outputFileName, format, records)
}

// writeFile is writeOutput into a new file, a failed Close is reported since
// the data may not be on disk
func writeFile(name, format string, v interface{}) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return writeOutput(f, format, v)
}

func generateFormat(fileName string) string {
	switch {
	case jsonOut:
		return "json"
	case yamlOut:
		return "yaml"
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}

	return outputFormat
}

func toRecords(repos []git.Repository, field []string) []record {
	records := make([]record, 0, len(repos))
	for _, repo := range repos {
		r := record{
			Org:          repo.Org,
			Name:         repo.Name,
			License:      repo.License,
			URL:          repo.URL,
			LatestCommit: repo.LatestCommit,
		}

		if len(field) > 0 {
			// a record without the field is still exported
			if v, err := nested.AccessJSON(repo.Payload, field...); err == nil {
				r.Field = v.Value()
			}
		}

		records = append(records, r)
	}
	return records
}
