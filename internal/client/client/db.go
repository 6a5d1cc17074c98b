// Package client bootstraps the local persistence of the study client:
// it opens the SQLite database, applies the embedded goose migrations, and
// wires up the repositories.
package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/studybridge/internal/client/migrations"
	"github.com/dmitrijs2005/studybridge/internal/client/repositories/profile"
	"github.com/dmitrijs2005/studybridge/internal/client/repositories/uploads"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the stores backed by the client database.
type Repositories struct {
	Profile profile.Repository
	Uploads uploads.Repository
	DB      *sql.DB
}

// RunMigrations applies the embedded migrations. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the client database at dsn,
// migrates it, and returns the repositories over it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	repos := &Repositories{
		Profile: profile.NewSQLiteRepository(db),
		Uploads: uploads.NewSQLiteRepository(db),
		DB:      db,
	}
	return repos, nil
}
