package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// ProductRepositoryPG implements domain.ProductRepository.
type ProductRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a product repository backed by PostgreSQL.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepositoryPG {
	return &ProductRepositoryPG{pool: pool}
}

// GetByID fetches a product including its specs JSONB.
func (r *ProductRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, category_id, COALESCE(base_image, ''), COALESCE(mask_image, ''), COALESCE(specs, '{}'::jsonb), created_at, updated_at
FROM products
WHERE id = $1;
`, id)

	var p domain.Product
	var specs []byte
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.CategoryID,
		&p.BaseImage,
		&p.MaskImage,
		&specs,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(specs, &p.Specs); err != nil {
		p.Specs = map[string]any{}
	}
	return &p, nil
}

// ClearImages nulls the requested image columns and rewrites specs in one
// statement. Updates maps column names ("base_image", "mask_image", "specs")
// to their new values; nil clears a column.
func (r *ProductRepositoryPG) ClearImages(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	query := `UPDATE products SET updated_at = NOW()`
	args := []any{id}
	for _, col := range []string{"base_image", "mask_image"} {
		if v, ok := updates[col]; ok {
			args = append(args, v)
			query += `, ` + col + ` = $` + strconv.Itoa(len(args))
		}
	}
	if specs, ok := updates["specs"]; ok {
		encoded, err := json.Marshal(specs)
		if err != nil {
			return err
		}
		args = append(args, encoded)
		query += `, specs = $` + strconv.Itoa(len(args))
	}
	query += ` WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
