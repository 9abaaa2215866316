package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/circleous/orgseer/pkg/git"
	"github.com/circleous/orgseer/pkg/gitservice/github"
)

var (
	defaultMaxWorker = 10
	defaultTimeout   = 30 * time.Second
	defaultDatabase  = "orgseer.db"
)

// Duration is a time.Duration read from a toml string such as "15s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// OrganizationConfig is per organization configuration struct
type OrganizationConfig struct {
	// Type is the type of git service will be used to query
	Type string `toml:"type"`

	// Name is the name of the organization
	Name string `toml:"name"`

	// License if set, only repositories with this license key are surveyed
	License string `toml:"license"`
}

// Config is the configuration struct for orgseer. It can be created with Parse.
type Config struct {
	// BaseURL of the GitHub compatible REST API
	BaseURL string `toml:"base_url"`

	// GithubToken, falls back to the GITHUB_TOKEN environment variable
	GithubToken string `toml:"github_token"`

	// MaxWorker is the max number of organizations surveyed concurrently
	MaxWorker int `toml:"max_worker"`

	// Timeout for every single request
	Timeout Duration `toml:"timeout"`

	// Database is the sqlite file the survey writes to
	Database string `toml:"database"`

	// ResolveHead if set to true, the HEAD commit of every repository is
	// resolved from its remote
	ResolveHead bool `toml:"resolve_head"`

	// Organizations
	Organizations []OrganizationConfig `toml:"organization"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		BaseURL:     github.DefaultBaseURL,
		GithubToken: os.Getenv("GITHUB_TOKEN"),
		MaxWorker:   defaultMaxWorker,
		Timeout:     Duration{defaultTimeout},
		Database:    defaultDatabase,
	}
}

// Parse builds a Config from a toml file
func Parse(configPath string) (*Config, error) {
	var config Config

	meta, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, err
	}

	if !meta.IsDefined("base_url") {
		config.BaseURL = github.DefaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	if !meta.IsDefined("github_token") {
		config.GithubToken = os.Getenv("GITHUB_TOKEN")
	}

	if !meta.IsDefined("max_worker") {
		config.MaxWorker = defaultMaxWorker
	}

	if config.MaxWorker <= 0 {
		return nil, errors.New("max_worker must be greater than zero")
	}

	if !meta.IsDefined("timeout") {
		config.Timeout = Duration{defaultTimeout}
	}

	if !meta.IsDefined("database") {
		config.Database = defaultDatabase
	}

	for i, org := range config.Organizations {
		if org.Name == "" {
			return nil, fmt.Errorf("organization #%d has no name", i+1)
		}

		if org.Type == "" {
			config.Organizations[i].Type = git.GITHUB
		}

		if config.Organizations[i].Type != git.GITHUB {
			return nil, fmt.Errorf("organization %s: unsupported type %q", org.Name, org.Type)
		}
	}

	return &config, nil
}
