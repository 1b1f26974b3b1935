package domain

import "context"

// Repository is the data access contract shared by every entity.
// Expected failures are returned as *RuleError; anything else is a fault.
type Repository[E Entity] interface {
	Schema() *Schema
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]E, error)
	GetPage(ctx context.Context, pageSize, offset int) ([]E, error)
	GetByID(ctx context.Context, id int32) (E, error)
	Create(ctx context.Context, e E) (E, error)
	Update(ctx context.Context, e E) (E, error)
	Delete(ctx context.Context, id int32) error
	Search(ctx context.Context, text string) ([]E, error)
	GetByAttributes(ctx context.Context, partial E) ([]E, error)
}
