package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/circleous/orgseer/pkg/git"
	"github.com/circleous/orgseer/pkg/gitservice"
	"github.com/circleous/orgseer/pkg/gitservice/github"
	"github.com/circleous/orgseer/pkg/memo"
	"github.com/circleous/orgseer/pkg/nested"
)

// ErrUnexpectedPayload is returned when a fetched document does not have the
// shape of the requested resource
var ErrUnexpectedPayload = errors.New("unexpected payload")

const (
	orgKey   = "org"
	reposKey = "repos"
)

// OrgClient exposes an organization and its repositories. Every remote
// resource is fetched at most once per OrgClient.
type OrgClient struct {
	name    string
	baseURL string
	fetcher gitservice.Fetcher

	cache memo.Cache
}

// Option configures an OrgClient
type Option func(*OrgClient)

// WithFetcher replaces the default HTTP fetcher
func WithFetcher(f gitservice.Fetcher) Option {
	return func(c *OrgClient) {
		c.fetcher = f
	}
}

// WithBaseURL points the client at another GitHub compatible API
func WithBaseURL(baseURL string) Option {
	return func(c *OrgClient) {
		c.baseURL = baseURL
	}
}

// New create a client for the organization name
func New(name string, opts ...Option) *OrgClient {
	c := &OrgClient{
		name:    name,
		baseURL: github.DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fetcher == nil {
		c.fetcher = github.NewFetcher(context.Background())
	}

	return c
}

// Name return the organization name the client was built with
func (c *OrgClient) Name() string {
	return c.name
}

// Org return the organization document
func (c *OrgClient) Org(ctx context.Context) (nested.Map, error) {
	return memo.Get(ctx, &c.cache, orgKey, func(ctx context.Context) (nested.Map, error) {
		url := fmt.Sprintf("%s/orgs/%s", c.baseURL, c.name)

		doc, err := c.fetcher.FetchJSON(ctx, url)
		if err != nil {
			return nil, err
		}

		org, ok := doc.(nested.Map)
		if !ok {
			return nil, fmt.Errorf("%w: organization %s is %T", ErrUnexpectedPayload, c.name, doc)
		}

		log.Debug().Str("organization", c.name).Msg("organization fetched")
		return org, nil
	})
}

// ReposURL return the repos_url advertised by the organization document
func (c *OrgClient) ReposURL(ctx context.Context) (string, error) {
	org, err := c.Org(ctx)
	if err != nil {
		return "", err
	}

	return nested.As[string](org, "repos_url")
}

// Repos return every repository document of the organization, in the order
// the API returned them
func (c *OrgClient) Repos(ctx context.Context) ([]nested.Map, error) {
	return memo.Get(ctx, &c.cache, reposKey, func(ctx context.Context) ([]nested.Map, error) {
		url, err := c.ReposURL(ctx)
		if err != nil {
			return nil, err
		}

		doc, err := c.fetcher.FetchJSON(ctx, url)
		if err != nil {
			return nil, err
		}

		items, ok := doc.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: repository list of %s is %T", ErrUnexpectedPayload, c.name, doc)
		}

		repos := make([]nested.Map, 0, len(items))
		for i, item := range items {
			repo, ok := item.(nested.Map)
			if !ok {
				return nil, fmt.Errorf("%w: repository %d of %s is %T", ErrUnexpectedPayload, i, c.name, item)
			}
			repos = append(repos, repo)
		}

		log.Debug().Str("organization", c.name).Int("count", len(repos)).Msg("repositories fetched")
		return repos, nil
	})
}

// PublicRepos return the repository names of the organization. When license
// is not empty only repositories carrying that license key are kept.
func (c *OrgClient) PublicRepos(ctx context.Context, license string) ([]string, error) {
	repos, err := c.Repos(ctx)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, repo := range repos {
		if license != "" && !HasLicense(repo, license) {
			continue
		}

		name, err := nested.As[string](repo, "name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

// Repositories is PublicRepos returning flattened records instead of names
func (c *OrgClient) Repositories(ctx context.Context, opt *git.ListRepositoriesOptions) ([]git.Repository, error) {
	if opt == nil {
		opt = &git.DefaultListRepositoriesOpt
	}

	repos, err := c.Repos(ctx)
	if err != nil {
		return nil, err
	}

	var result []git.Repository
	for _, repo := range repos {
		if opt.License != "" && !HasLicense(repo, opt.License) {
			continue
		}

		name, err := nested.As[string](repo, "name")
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(repo)
		if err != nil {
			return nil, err
		}

		// both are optional in the API
		license, _ := nested.As[string](repo, "license", "key")
		cloneURL, _ := nested.As[string](repo, "clone_url")

		result = append(result, git.Repository{
			Org:     c.name,
			Name:    name,
			License: license,
			URL:     cloneURL,
			Payload: payload,
		})
	}

	return result, nil
}

// HasLicense reports whether repo's license.key equals licenseKey. A
// repository without license information never matches.
func HasLicense(repo nested.Map, licenseKey string) bool {
	key, err := nested.Access(repo, "license", "key")
	if err != nil {
		return false
	}
	return key == licenseKey
}
