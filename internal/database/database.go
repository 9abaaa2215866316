package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/circleous/orgseer/pkg/git"
)

// GetRepoLatestCommit return the last recorded commit, empty when the
// repository was never surveyed
func (db *databaseConnection) GetRepoLatestCommit(ctx context.Context,
	org, repoName string) (string, error) {
	var hash sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT last_commit FROM repositories WHERE org = ? AND name = ? LIMIT 1`,
		org, repoName).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash.String, err
}

func (db *databaseConnection) UpsertRepo(ctx context.Context,
	repo git.Repository) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO repositories (
			org, name, license, url, last_commit, payload, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (org, name) DO UPDATE SET
			license = excluded.license,
			url = excluded.url,
			last_commit = excluded.last_commit,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		repo.Org, repo.Name, repo.License, repo.URL, repo.LatestCommit,
		string(repo.Payload), time.Now().UTC())
	return err
}

// ListRepos return stored repositories ordered by organization then name, an
// empty org lists every organization
func (db *databaseConnection) ListRepos(ctx context.Context,
	org string) ([]git.Repository, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT org, name, license, url, last_commit, payload
		FROM repositories
		WHERE ? = '' OR org = ?
		ORDER BY org, name`,
		org, org)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []git.Repository
	for rows.Next() {
		var (
			repo                              git.Repository
			license, url, lastCommit, payload sql.NullString
		)
		if err := rows.Scan(&repo.Org, &repo.Name, &license, &url,
			&lastCommit, &payload); err != nil {
			return nil, err
		}
		repo.License = license.String
		repo.URL = url.String
		repo.LatestCommit = lastCommit.String
		repo.Payload = []byte(payload.String)
		repos = append(repos, repo)
	}

	return repos, rows.Err()
}
