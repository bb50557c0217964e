package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// CategoryRepositoryPG implements domain.CategoryRepository.
type CategoryRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a category repository backed by PostgreSQL.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepositoryPG {
	return &CategoryRepositoryPG{pool: pool}
}

const categoryColumns = "id, name, parent_id, sort_order, layer_level, created_at, updated_at"

// List returns all categories ordered by parent then sort_order.
func (r *CategoryRepositoryPG) List(ctx context.Context) ([]domain.Category, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM product_categories
ORDER BY parent_id NULLS FIRST, sort_order, id;
`, categoryColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

// ListSiblings returns the categories sharing the given parent (nil = roots).
func (r *CategoryRepositoryPG) ListSiblings(ctx context.Context, parentID *string) ([]domain.Category, error) {
	var rows pgx.Rows
	var err error
	if parentID == nil {
		rows, err = r.pool.Query(ctx, fmt.Sprintf(`
SELECT %s FROM product_categories WHERE parent_id IS NULL ORDER BY sort_order, id;
`, categoryColumns))
	} else {
		rows, err = r.pool.Query(ctx, fmt.Sprintf(`
SELECT %s FROM product_categories WHERE parent_id = $1 ORDER BY sort_order, id;
`, categoryColumns), *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

// GetByID fetches a single category.
func (r *CategoryRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT %s FROM product_categories WHERE id = $1;
`, categoryColumns), id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create inserts a new category and returns the stored row.
func (r *CategoryRepositoryPG) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
INSERT INTO product_categories (id, name, parent_id, sort_order, layer_level)
VALUES (gen_random_uuid(), $1, $2, $3, $4)
RETURNING %s;
`, categoryColumns), c.Name, c.ParentID, c.SortOrder, c.LayerLevel)
	return scanCategory(row)
}

// Update applies the provided column values and returns the updated row.
// Fields maps column names to values; the caller validates them.
func (r *CategoryRepositoryPG) Update(ctx context.Context, id string, fields map[string]any) (*domain.Category, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	args = append(args, id)
	for _, col := range []string{"name", "parent_id", "sort_order", "layer_level"} {
		v, ok := fields[col]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf(`
UPDATE product_categories SET %s WHERE id = $1 RETURNING %s;
`, strings.Join(sets, ", "), categoryColumns)
	c, err := scanCategory(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// SetSortOrder updates a single category's sort position.
func (r *CategoryRepositoryPG) SetSortOrder(ctx context.Context, id string, sortOrder int) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE product_categories SET sort_order = $2, updated_at = NOW() WHERE id = $1;
`, id, sortOrder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a category; children cascade at the database level.
func (r *CategoryRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_categories WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ParentID,
		&c.SortOrder,
		&c.LayerLevel,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCategories(rows pgx.Rows) ([]domain.Category, error) {
	var items []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
