package database

import (
	"context"
	"database/sql"

	// for database/sql
	_ "github.com/mattn/go-sqlite3"

	"github.com/circleous/orgseer/pkg/git"
)

type databaseConnection struct {
	conn *sql.DB
}

// Service is the main interface for database package
type Service interface {
	Initialize() error
	Close()

	UpsertRepo(ctx context.Context, repo git.Repository) error
	GetRepoLatestCommit(ctx context.Context, org, repoName string) (string, error)
	ListRepos(ctx context.Context, org string) ([]git.Repository, error)
}

// NewDatabase create a new connection to database
func NewDatabase(dbURI string) (Service, error) {
	conn, err := sql.Open("sqlite3", dbURI)
	if err != nil {
		return nil, err
	}

	return &databaseConnection{
		conn: conn,
	}, nil
}

func (dbc *databaseConnection) Initialize() error {
	_, err := dbc.conn.Exec(`
		CREATE TABLE IF NOT EXISTS repositories(
			id INTEGER PRIMARY KEY,
			org VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			license VARCHAR(64),
			url TEXT,
			last_commit VARCHAR(40),
			payload TEXT,
			updated_at TIMESTAMP,
			UNIQUE(org,name)
		);
	`)
	return err
}

func (dbc *databaseConnection) Close() {
	dbc.conn.Close()
}
