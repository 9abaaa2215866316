package git

// Repository is the flattened record of a repository listed from an
// organization
type Repository struct {
	// Org is the organization the repository was listed from
	Org string
	// Name repository name as reported by the API
	Name string
	// License is the license.key of the repository, empty when unlicensed
	License string
	// URL git clone-able repo URL
	URL string
	// LatestCommit latest commit hash of the repo
	LatestCommit string
	// Payload is the raw JSON object returned by the API
	Payload []byte
}
