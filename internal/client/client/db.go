package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/impify/internal/client/migrations"
	"github.com/dmitrijs2005/impify/internal/client/repositories/kv"
	"github.com/dmitrijs2005/impify/internal/client/repositories/previews"
	"github.com/dmitrijs2005/impify/internal/filex"
)

// Repositories groups the local stores. Session is process-scoped memory and
// is lost on exit; Persistent and Previews live in SQLite.
type Repositories struct {
	Persistent kv.Repository
	Session    kv.Repository
	Previews   previews.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Persistent: kv.NewSQLiteRepository(db),
		Session:    kv.NewMemoryRepository(),
		Previews:   previews.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and applies pending migrations.
// The parent directory of a plain file path is created if missing.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
