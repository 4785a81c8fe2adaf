package previews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, fileID string) (*models.Preview, error) {
	p := &models.Preview{FileID: fileID}
	err := r.db.QueryRowContext(ctx,
		`SELECT data_url, size, created_at FROM previews WHERE file_id = ?`, fileID,
	).Scan(&p.DataURL, &p.Size, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preview %s: %w", fileID, err)
	}
	return p, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, p *models.Preview) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO previews (file_id, data_url, size, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			data_url = excluded.data_url,
			size = excluded.size,
			created_at = excluded.created_at
	`, p.FileID, p.DataURL, p.Size, created)
	if err != nil {
		return fmt.Errorf("failed to put preview %s: %w", p.FileID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, fileID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM previews WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete preview %s: %w", fileID, err)
	}
	return nil
}
