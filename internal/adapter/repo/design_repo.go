package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// DesignRepositoryPG implements domain.DesignRepository.
type DesignRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDesignRepository creates a design repository backed by PostgreSQL.
func NewDesignRepository(pool *pgxpool.Pool) *DesignRepositoryPG {
	return &DesignRepositoryPG{pool: pool}
}

// Create inserts a new saved design.
func (r *DesignRepositoryPG) Create(ctx context.Context, d *domain.Design) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO designs (id, name, canvas_data, preview_key)
VALUES ($1, $2, $3, $4);
`, d.ID, d.Name, d.CanvasData, d.PreviewKey)
	return err
}

// List returns saved designs, newest first.
func (r *DesignRepositoryPG) List(ctx context.Context) ([]domain.Design, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, canvas_data, COALESCE(preview_key, ''), created_at
FROM designs
ORDER BY created_at DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Design
	for rows.Next() {
		var d domain.Design
		if err := rows.Scan(&d.ID, &d.Name, &d.CanvasData, &d.PreviewKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// GetByID fetches a design by its identifier.
func (r *DesignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Design, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, canvas_data, COALESCE(preview_key, ''), created_at
FROM designs
WHERE id = $1;
`, id)

	var d domain.Design
	if err := row.Scan(&d.ID, &d.Name, &d.CanvasData, &d.PreviewKey, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Delete removes a design.
func (r *DesignRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM designs WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
