package github

import (
	"net/http"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/rs/zerolog/log"
)

// checkTransport turns error responses into go-github typed errors so callers
// can tell a rate limit from a missing organization. It never retries.
type checkTransport struct {
	transport http.RoundTripper
}

func (ct *checkTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := ct.transport.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// redirects are left to http.Client
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}
	defer resp.Body.Close()

	ghErr := github.CheckResponse(resp)

	if rlErr, ok := ghErr.(*github.RateLimitError); ok {
		log.Warn().Int("limit", rlErr.Rate.Limit).
			Str("reset_in", time.Until(rlErr.Rate.Reset.Time).Round(time.Second).String()).
			Msg("rate limit reached")
	}

	if _, ok := ghErr.(*github.AbuseRateLimitError); ok {
		log.Warn().Msg("abuse detection mechanism triggered")
	}

	return nil, ghErr
}

// newCheckTransport wraps rt with response checking
func newCheckTransport(rt http.RoundTripper) *checkTransport {
	return &checkTransport{transport: rt}
}
