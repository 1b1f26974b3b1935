package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
)

// Store is the set of data-access primitives a backend provides for one table.
// Rules such as uniqueness and foreign-key checks live in Repository, not here.
type Store[E domain.Entity] interface {
	Count(ctx context.Context) (int64, error)
	// List returns rows ordered by id; limit <= 0 means no limit
	List(ctx context.Context, limit, offset int) ([]E, error)
	Get(ctx context.Context, id int32) (E, bool, error)
	Insert(ctx context.Context, e E) (E, error)
	Update(ctx context.Context, e E) (E, error)
	Delete(ctx context.Context, id int32) error
	// Search matches text as a case-insensitive substring of any searchable column
	Search(ctx context.Context, text string) ([]E, error)
	Filter(ctx context.Context, criteria []domain.Criterion) ([]E, error)

	// Conflicts reports whether another row (id != excludeID) holds value in column
	Conflicts(ctx context.Context, column string, value any, excludeID int32) (bool, error)
	// Exists reports whether table holds a row with the given id
	Exists(ctx context.Context, table string, id int32) (bool, error)
	// CountReferences counts rows of table whose column equals id
	CountReferences(ctx context.Context, table, column string, id int32) (int64, error)
}

// Repository applies the entity rules shared by every table on top of a Store
type Repository[E domain.Entity] struct {
	store  Store[E]
	schema *domain.Schema
	policy domain.CreatePolicy
	now    func() time.Time
}

// Option configures a Repository
type Option func(*options)

type options struct {
	policy domain.CreatePolicy
	now    func() time.Time
}

// WithCreatePolicy selects how Create treats an id that already exists
func WithCreatePolicy(policy domain.CreatePolicy) Option {
	return func(o *options) { o.policy = policy }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Repository over store. newEntity is only used to read the schema.
func New[E domain.Entity](store Store[E], newEntity func() E, opts ...Option) *Repository[E] {
	o := options{
		policy: domain.CreateUpserts,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[E]{
		store:  store,
		schema: newEntity().Schema(),
		policy: o.policy,
		now:    o.now,
	}
}

// Schema returns the schema of the managed entity
func (r *Repository[E]) Schema() *domain.Schema {
	return r.schema
}

// Count returns the number of stored rows
func (r *Repository[E]) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx)
}

// GetAll returns every row ordered by id
func (r *Repository[E]) GetAll(ctx context.Context) ([]E, error) {
	return r.store.List(ctx, 0, 0)
}

// GetPage returns up to pageSize rows starting after offset rows
func (r *Repository[E]) GetPage(ctx context.Context, pageSize, offset int) ([]E, error) {
	if pageSize <= 0 {
		return []E{}, nil
	}
	return r.store.List(ctx, pageSize, offset)
}

// GetByID returns the row with id or a not-found rule error
func (r *Repository[E]) GetByID(ctx context.Context, id int32) (E, error) {
	e, ok, err := r.store.Get(ctx, id)
	if err != nil {
		var zero E
		return zero, fmt.Errorf("get %s %d: %w", r.schema.Name, id, err)
	}
	if !ok {
		var zero E
		return zero, domain.NotFound(r.schema.Name, id)
	}
	return e, nil
}

// Create inserts e after the uniqueness and parent checks. When e carries the
// id of an existing row the create policy decides between updating that row
// and failing with ErrAlreadyExists.
func (r *Repository[E]) Create(ctx context.Context, e E) (E, error) {
	var zero E
	if err := r.validate(ctx, e); err != nil {
		return zero, err
	}

	base := e.Base()
	if base.ID > 0 {
		_, exists, err := r.store.Get(ctx, base.ID)
		if err != nil {
			return zero, fmt.Errorf("get %s %d: %w", r.schema.Name, base.ID, err)
		}
		if exists {
			if r.policy == domain.CreateRejectsExisting {
				return zero, domain.AlreadyExists(r.schema.Name, base.ID)
			}
			return r.Update(ctx, e)
		}
	}

	base.ID = 0
	base.Created = r.now()
	base.Modified = nil

	created, err := r.store.Insert(ctx, e)
	if err != nil {
		return zero, fmt.Errorf("insert %s: %w", r.schema.Name, err)
	}
	return created, nil
}

// Update overwrites the mutable columns of an existing row. Created is kept
// from the stored row and Modified is stamped with the current time.
func (r *Repository[E]) Update(ctx context.Context, e E) (E, error) {
	var zero E
	if err := r.validate(ctx, e); err != nil {
		return zero, err
	}

	base := e.Base()
	existing, ok, err := r.store.Get(ctx, base.ID)
	if err != nil {
		return zero, fmt.Errorf("get %s %d: %w", r.schema.Name, base.ID, err)
	}
	if !ok {
		return zero, domain.NotFound(r.schema.Name, base.ID)
	}

	now := r.now()
	base.Created = existing.Base().Created
	base.Modified = &now

	updated, err := r.store.Update(ctx, e)
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", r.schema.Name, base.ID, err)
	}
	return updated, nil
}

// Delete removes the row with id unless another table still references it
func (r *Repository[E]) Delete(ctx context.Context, id int32) error {
	_, ok, err := r.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get %s %d: %w", r.schema.Name, id, err)
	}
	if !ok {
		return domain.NotFound(r.schema.Name, id)
	}

	for _, child := range r.schema.Children {
		n, err := r.store.CountReferences(ctx, child.Table, child.Column, id)
		if err != nil {
			return fmt.Errorf("count %s references to %s %d: %w", child.Entity, r.schema.Name, id, err)
		}
		if n > 0 {
			return domain.HasChildren(r.schema.Name, id, child)
		}
	}

	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", r.schema.Name, id, err)
	}
	return nil
}

// Search returns rows whose searchable columns contain text
func (r *Repository[E]) Search(ctx context.Context, text string) ([]E, error) {
	if len(r.schema.Search) == 0 || text == "" {
		return []E{}, nil
	}
	return r.store.Search(ctx, text)
}

// GetByAttributes filters on every non-default field of partial. Nothing
// supplied means nothing matches.
func (r *Repository[E]) GetByAttributes(ctx context.Context, partial E) ([]E, error) {
	criteria := domain.Criteria(partial)
	if len(criteria) == 0 {
		return []E{}, nil
	}
	return r.store.Filter(ctx, criteria)
}

func (r *Repository[E]) validate(ctx context.Context, e E) error {
	if err := r.checkUnique(ctx, e); err != nil {
		return err
	}
	return r.checkParents(ctx, e)
}

func (r *Repository[E]) checkUnique(ctx context.Context, e E) error {
	values := e.Values()
	for _, column := range r.schema.Unique {
		value := values[r.schema.ColumnIndex(column)]
		if domain.IsDefault(value) {
			continue
		}
		conflict, err := r.store.Conflicts(ctx, column, value, e.Base().ID)
		if err != nil {
			return fmt.Errorf("check unique %s.%s: %w", r.schema.Table, column, err)
		}
		if conflict {
			return domain.DuplicateField(r.schema.Name, column, value)
		}
	}
	return nil
}

func (r *Repository[E]) checkParents(ctx context.Context, e E) error {
	values := e.Values()
	for _, parent := range r.schema.Parents {
		value := values[r.schema.ColumnIndex(parent.Column)]
		id, _ := value.(int32)
		if id <= 0 {
			return domain.ParentNotFound(r.schema.Name, parent, value)
		}
		ok, err := r.store.Exists(ctx, parent.Table, id)
		if err != nil {
			return fmt.Errorf("check %s %d: %w", parent.Entity, id, err)
		}
		if !ok {
			return domain.ParentNotFound(r.schema.Name, parent, id)
		}
	}
	return nil
}
