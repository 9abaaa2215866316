package survey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleous/orgseer/internal/config"
	"github.com/circleous/orgseer/internal/database"
	"github.com/circleous/orgseer/pkg/gitservice"
)

var documents = map[string]string{
	"https://api.test/orgs/google":       `{"repos_url": "https://api.test/orgs/google/repos"}`,
	"https://api.test/orgs/google/repos": `[{"name": "r1", "clone_url": "https://git.test/google/r1.git", "license": {"key": "mit"}}, {"name": "r2", "clone_url": "https://git.test/google/r2.git", "license": {"key": "apache-2.0"}}]`,
	"https://api.test/orgs/abc":          `{"repos_url": "https://api.test/orgs/abc/repos"}`,
	"https://api.test/orgs/abc/repos":    `[{"name": "x"}]`,
}

type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *countingFetcher) FetchJSON(_ context.Context, url string) (interface{}, error) {
	f.mu.Lock()
	f.calls[url]++
	f.mu.Unlock()

	body, ok := documents[url]
	if !ok {
		return nil, &gitservice.TransportError{URL: url, StatusCode: 404, Err: errors.New("not found")}
	}

	var doc interface{}
	err := json.Unmarshal([]byte(body), &doc)
	return doc, err
}

func newTestSurvey(t *testing.T, conf *config.Config) (*survey, database.Service, *countingFetcher) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "survey.db"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(db.Close)

	f := &countingFetcher{calls: map[string]int{}}
	svc, err := New(conf, db, WithFetcherFactory(func(context.Context) (gitservice.Fetcher, error) {
		return f, nil
	}))
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	return svc.(*survey), db, f
}

func testConfig() *config.Config {
	conf := config.Default()
	conf.BaseURL = "https://api.test"
	conf.MaxWorker = 2
	conf.Organizations = []config.OrganizationConfig{
		{Type: "github", Name: "google", License: "apache-2.0"},
		{Type: "github", Name: "abc"},
		{Type: "github", Name: "ghost"},
	}
	return conf
}

func TestRunner(t *testing.T) {
	ctx := context.Background()
	s, db, f := newTestSurvey(t, testConfig())

	require.NoError(t, s.Runner(ctx))

	assert.Equal(t, Stat{Organizations: 2, Repositories: 2, Failures: 1}, s.Stat())

	google, err := db.ListRepos(ctx, "google")
	require.NoError(t, err)
	require.Len(t, google, 1)
	assert.Equal(t, "r2", google[0].Name)
	assert.Equal(t, "apache-2.0", google[0].License)
	assert.Empty(t, google[0].LatestCommit)

	abc, err := db.ListRepos(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, abc, 1)
	assert.Equal(t, "x", abc[0].Name)

	assert.Equal(t, 1, f.calls["https://api.test/orgs/google/repos"])
}

func TestRunnerResolveHead(t *testing.T) {
	ctx := context.Background()
	conf := testConfig()
	conf.ResolveHead = true
	conf.Organizations = conf.Organizations[:1]
	conf.Organizations[0].License = ""

	s, db, _ := newTestSurvey(t, conf)
	s.resolveHead = func(_ context.Context, url string) (string, error) {
		if url == "https://git.test/google/r1.git" {
			return "", errors.New("unreachable")
		}
		return "0123456789abcdef0123456789abcdef01234567", nil
	}

	require.NoError(t, s.Runner(ctx))

	repos, err := db.ListRepos(ctx, "google")
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Empty(t, repos[0].LatestCommit)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", repos[1].LatestCommit)
}

func TestNewRejectsNil(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNewRejectsMaxWorker(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "survey.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, n := range []int{0, -1} {
		conf := testConfig()
		conf.MaxWorker = n

		svc, err := New(conf, db)
		assert.Error(t, err)
		assert.Nil(t, svc)
	}
}

// blockingFetcher holds the first request until release is closed
type blockingFetcher struct {
	*countingFetcher
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) FetchJSON(ctx context.Context, url string) (interface{}, error) {
	first := false
	f.once.Do(func() { first = true })
	if first {
		close(f.started)
		<-f.release
	}
	return f.countingFetcher.FetchJSON(ctx, url)
}

func TestRunnerWaitsForWorkersOnCancel(t *testing.T) {
	conf := testConfig()
	conf.MaxWorker = 1

	s, _, _ := newTestSurvey(t, conf)
	f := &blockingFetcher{
		countingFetcher: &countingFetcher{calls: map[string]int{}},
		started:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	s.p.Close()
	s.p = newPool(func(context.Context) (gitservice.Fetcher, error) {
		return f, nil
	}, conf.MaxWorker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Runner(ctx)
	}()

	<-f.started
	cancel()

	select {
	case err := <-done:
		t.Fatalf("Runner returned while a worker was still running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(f.release)
	assert.ErrorIs(t, <-done, context.Canceled)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 1, f.calls["https://api.test/orgs/google"])
	assert.Zero(t, f.calls["https://api.test/orgs/abc"])
}

func TestRemoteHeadHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := remoteHead(ctx, server.URL+"/google/r1.git")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHeadCommit(t *testing.T) {
	main := plumbing.NewHashReference("refs/heads/main",
		plumbing.NewHash("1111111111111111111111111111111111111111"))
	dev := plumbing.NewHashReference("refs/heads/dev",
		plumbing.NewHash("2222222222222222222222222222222222222222"))

	hash, err := headCommit([]*plumbing.Reference{
		plumbing.NewSymbolicReference(plumbing.HEAD, "refs/heads/main"), main, dev,
	})
	require.NoError(t, err)
	assert.Equal(t, "1111111111111111111111111111111111111111", hash)

	hash, err = headCommit([]*plumbing.Reference{
		plumbing.NewHashReference(plumbing.HEAD, dev.Hash()), main,
	})
	require.NoError(t, err)
	assert.Equal(t, "2222222222222222222222222222222222222222", hash)

	_, err = headCommit([]*plumbing.Reference{main})
	assert.ErrorIs(t, err, errNoHead)

	_, err = headCommit([]*plumbing.Reference{
		plumbing.NewSymbolicReference(plumbing.HEAD, "refs/heads/gone"),
	})
	assert.ErrorIs(t, err, errNoHead)
}
