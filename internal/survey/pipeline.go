package survey

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/circleous/orgseer/internal/config"
	"github.com/circleous/orgseer/pkg/client"
	cgit "github.com/circleous/orgseer/pkg/git"
	"github.com/circleous/orgseer/pkg/gitservice"
)

func (s *survey) processOrganization(ctx context.Context, org config.OrganizationConfig) {
	log.Debug().Str("organization", org.Name).Msg("processing org")

	res, err := s.p.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Str("organization", org.Name).
			Msg("failed to acquire fetcher")
		s.stat.IncreaseFailures(1)
		return
	}
	defer res.Release()

	oc := client.New(org.Name,
		client.WithFetcher(res.Value().(gitservice.Fetcher)),
		client.WithBaseURL(s.config.BaseURL))

	repos, err := oc.Repositories(ctx, &cgit.ListRepositoriesOptions{
		License: org.License,
	})
	if err != nil {
		log.Error().Err(err).Str("organization", org.Name).
			Str("type", org.Type).
			Msg("failed to fetch organization repositories")
		s.stat.IncreaseFailures(1)
		return
	}

	s.stat.IncreaseOrganization(1)
	log.Debug().Str("organization", org.Name).Msgf("got repo %d", len(repos))

	for _, repo := range repos {
		if s.config.ResolveHead && repo.URL != "" {
			s.fillLatestCommit(ctx, &repo)
		}

		if err := s.db.UpsertRepo(ctx, repo); err != nil {
			log.Error().Err(err).Str("organization", org.Name).
				Str("repo", repo.Name).
				Msg("failed to store repository")
			s.stat.IncreaseFailures(1)
			continue
		}
		s.stat.IncreaseRepositories(1)
	}
}

func (s *survey) fillLatestCommit(ctx context.Context, repo *cgit.Repository) {
	previous, err := s.db.GetRepoLatestCommit(ctx, repo.Org, repo.Name)
	if err != nil {
		log.Debug().Err(err).Str("repo", repo.Name).Msg("no previous commit")
	}

	hash, err := s.resolveHead(ctx, repo.URL)
	if err != nil {
		// keep what we knew, a repository without HEAD is still listed
		log.Error().Err(err).Str("url", repo.URL).
			Msg("failed to resolve HEAD")
		repo.LatestCommit = previous
		return
	}

	if previous != "" && previous != hash {
		log.Info().Str("repo", repo.Org+"/"+repo.Name).
			Str("from", previous).Str("to", hash).
			Msg("new commits")
	}
	repo.LatestCommit = hash
}

// Runner run the overall survey pipeline. It returns only once every started
// organization is done, even when ctx is cancelled midway.
func (s *survey) Runner(ctx context.Context) error {
	s.stat.reset()

	weight := int64(s.config.MaxWorker)
	sem := semaphore.NewWeighted(weight)

	var err error
	for _, org := range s.config.Organizations {
		if err = sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Str("organization", org.Name).
				Msg("survey interrupted")
			break
		}

		org := org // copy
		go func() {
			defer sem.Release(1)
			s.processOrganization(ctx, org)
		}()
	}

	// wait for the in-flight workers, ctx may already be done
	if werr := sem.Acquire(context.Background(), weight); werr != nil {
		return werr
	}
	sem.Release(weight)

	if err == nil {
		err = ctx.Err()
	}
	return err
}
