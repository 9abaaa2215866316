package survey

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/puddle"

	"github.com/circleous/orgseer/internal/config"
	"github.com/circleous/orgseer/internal/database"
	"github.com/circleous/orgseer/pkg/git"
	"github.com/circleous/orgseer/pkg/gitservice"
	"github.com/circleous/orgseer/pkg/gitservice/github"
)

// FetcherFactory builds the fetchers kept in the survey pool
type FetcherFactory func(ctx context.Context) (gitservice.Fetcher, error)

type survey struct {
	p           *puddle.Pool
	config      *config.Config
	db          database.Service
	stat        analysisStat
	resolveHead func(ctx context.Context, url string) (string, error)
}

// Service is the main interface for survey module
type Service interface {
	// Runner surveys every configured organization
	Runner(ctx context.Context) error
	// Stat return the counters of the last run
	Stat() Stat
	Close()
}

// Option customizes a survey
type Option func(*survey)

// WithFetcherFactory replaces the HTTP fetchers, mostly useful for tests
func WithFetcherFactory(factory FetcherFactory) Option {
	return func(s *survey) {
		s.p.Close()
		s.p = newPool(factory, s.config.MaxWorker)
	}
}

// New init survey
func New(conf *config.Config, db database.Service, opts ...Option) (Service, error) {
	if conf == nil {
		return nil, errors.New("nil config")
	}

	if db == nil {
		return nil, errors.New("nil database")
	}

	if conf.MaxWorker <= 0 {
		return nil, fmt.Errorf("max_worker must be positive, got %d", conf.MaxWorker)
	}

	timeout := conf.Timeout.Duration
	token := conf.GithubToken

	s := &survey{
		config:      conf,
		db:          db,
		resolveHead: remoteHead,
	}
	s.p = newPool(func(ctx context.Context) (gitservice.Fetcher, error) {
		ctx = context.WithValue(ctx, git.TimeoutKey, timeout)
		return github.NewFetcherWithToken(ctx, token), nil
	}, conf.MaxWorker)

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func newPool(factory FetcherFactory, size int) *puddle.Pool {
	constructor := func(ctx context.Context) (interface{}, error) {
		return factory(ctx)
	}
	destructor := func(interface{}) {}

	return puddle.NewPool(constructor, destructor, int32(size))
}

func (s *survey) Stat() Stat {
	return s.stat.snapshot()
}

func (s *survey) Close() {
	s.p.Close()
}
