package domain

import "context"

// CategoryRepository defines persistence for product categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	ListSiblings(ctx context.Context, parentID *string) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c *Category) (*Category, error)
	Update(ctx context.Context, id string, fields map[string]any) (*Category, error)
	SetSortOrder(ctx context.Context, id string, sortOrder int) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository exposes the product operations the API needs.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	ClearImages(ctx context.Context, id string, updates map[string]any) error
}

// DesignRepository handles persistence for saved designs.
type DesignRepository interface {
	Create(ctx context.Context, d *Design) error
	List(ctx context.Context) ([]Design, error)
	GetByID(ctx context.Context, id string) (*Design, error)
	Delete(ctx context.Context, id string) error
}

// AnalyticsRepository updates request counters.
type AnalyticsRepository interface {
	IncrementRequest(ctx context.Context, day string, metric RequestMetric) error
	GetSummary(ctx context.Context, limit int) ([]AnalyticsDaily, error)
}
