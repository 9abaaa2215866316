package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/circleous/orgseer/pkg/git"
	"github.com/circleous/orgseer/pkg/gitservice"
)

// DefaultBaseURL is the public GitHub REST API endpoint
const DefaultBaseURL = "https://api.github.com"

const defaultTimeout = 30 * time.Second

// ErrInvalidJSON is wrapped in a TransportError when the body can't be parsed
var ErrInvalidJSON = errors.New("response body is not valid json")

// Fetcher is the net/http backed gitservice.Fetcher
type Fetcher struct {
	client *http.Client
}

// NewFetcher create plain new fetcher without token, change the request
// timeout in context.Value with git.TimeoutKey as key
func NewFetcher(ctx context.Context) *Fetcher {
	hc := &http.Client{
		Transport: newCheckTransport(http.DefaultTransport),
		Timeout:   timeoutFrom(ctx),
	}

	return &Fetcher{client: hc}
}

// NewFetcherWithToken create new fetcher sending token on every request
func NewFetcherWithToken(ctx context.Context, token string) *Fetcher {
	if token == "" {
		return NewFetcher(ctx)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	hc := oauth2.NewClient(ctx, ts)
	hc.Transport = newCheckTransport(hc.Transport)
	hc.Timeout = timeoutFrom(ctx)

	return &Fetcher{client: hc}
}

// FetchRaw performs a single GET on url and returns the body once it is known
// to be valid JSON.
func (f *Fetcher) FetchRaw(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &gitservice.TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	log.Debug().Str("url", url).Msg("fetching")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &gitservice.TransportError{
			URL:        url,
			StatusCode: statusCode(err),
			Err:        err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &gitservice.TransportError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	if !gjson.ValidBytes(body) {
		return nil, &gitservice.TransportError{URL: url, StatusCode: resp.StatusCode, Err: ErrInvalidJSON}
	}

	return body, nil
}

// FetchJSON implements gitservice.Fetcher
func (f *Fetcher) FetchJSON(ctx context.Context, url string) (interface{}, error) {
	body, err := f.FetchRaw(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &gitservice.TransportError{URL: url, Err: err}
	}

	return doc, nil
}

func timeoutFrom(ctx context.Context) time.Duration {
	if timeout, ok := ctx.Value(git.TimeoutKey).(time.Duration); ok && timeout > 0 {
		return timeout
	}
	return defaultTimeout
}

// statusCode digs the HTTP status out of the error produced by checkTransport
func statusCode(err error) int {
	var rlErr *github.RateLimitError
	if errors.As(err, &rlErr) && rlErr.Response != nil {
		return rlErr.Response.StatusCode
	}

	var arlErr *github.AbuseRateLimitError
	if errors.As(err, &arlErr) && arlErr.Response != nil {
		return arlErr.Response.StatusCode
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode
	}

	return 0
}
