package git

type contextKey string

const (
	// GITHUB service type
	GITHUB = "github"
)

// TimeoutKey is the context key to use with context.WithValue to associate
// the per request time.Duration used by fetchers.
var TimeoutKey = contextKey("timeout")

// DefaultListRepositoriesOpt is the default option for list repository
var DefaultListRepositoriesOpt = ListRepositoriesOptions{}

// ListRepositoriesOptions is the option struct used when fetching
// organizations repositories
type ListRepositoriesOptions struct {
	// License keeps only repositories whose license.key equals it, empty
	// means every repository
	License string
}
