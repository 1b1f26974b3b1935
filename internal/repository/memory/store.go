// Package memory provides a process-local implementation of the repository
// store. It backs DATA_BACKEND=memory and the repository unit tests.
package memory

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type row struct {
	model  domain.Model
	values []any
}

type table struct {
	schema *domain.Schema
	rows   map[int32]row
	nextID int32
}

// DB holds every in-memory table so stores can answer cross-table questions.
// It is safe for concurrent use.
type DB struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// NewDB creates an empty database
func NewDB() *DB {
	return &DB{tables: make(map[string]*table)}
}

func (db *DB) register(schema *domain.Schema) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tables[schema.Table]; !ok {
		db.tables[schema.Table] = &table{schema: schema, rows: make(map[int32]row), nextID: 1}
	}
}

// Store implements repository.Store for one entity type
type Store[E domain.Entity] struct {
	db        *DB
	schema    *domain.Schema
	newEntity func() E
}

// NewStore registers the entity's table in db and returns its store
func NewStore[E domain.Entity](db *DB, newEntity func() E) *Store[E] {
	schema := newEntity().Schema()
	db.register(schema)
	return &Store[E]{db: db, schema: schema, newEntity: newEntity}
}

func (s *Store[E]) table() *table {
	return s.db.tables[s.schema.Table]
}

// materialize builds a fresh entity from a stored row
func (s *Store[E]) materialize(r row) E {
	e := s.newEntity()
	*e.Base() = r.model
	for i, target := range e.Targets() {
		if r.values[i] == nil {
			continue
		}
		reflect.ValueOf(target).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return e
}

func (s *Store[E]) sorted(match func(row) bool) []E {
	t := s.table()
	ids := make([]int32, 0, len(t.rows))
	for id, r := range t.rows {
		if match == nil || match(r) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]E, len(ids))
	for i, id := range ids {
		result[i] = s.materialize(t.rows[id])
	}
	return result
}

func (s *Store[E]) Count(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.table().rows)), nil
}

func (s *Store[E]) List(ctx context.Context, limit, offset int) ([]E, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	all := s.sorted(nil)
	if offset >= len(all) {
		return []E{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store[E]) Get(ctx context.Context, id int32) (E, bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.table().rows[id]
	if !ok {
		var zero E
		return zero, false, nil
	}
	return s.materialize(r), true, nil
}

func (s *Store[E]) Insert(ctx context.Context, e E) (E, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	t := s.table()
	values := copyValues(e.Values())
	if err := s.checkConstraints(t, values, 0); err != nil {
		var zero E
		return zero, err
	}

	model := *e.Base()
	model.ID = t.nextID
	t.nextID++

	r := row{model: model, values: values}
	t.rows[model.ID] = r
	return s.materialize(r), nil
}

func (s *Store[E]) Update(ctx context.Context, e E) (E, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	t := s.table()
	model := *e.Base()
	if _, ok := t.rows[model.ID]; !ok {
		var zero E
		return zero, domain.NotFound(s.schema.Name, model.ID)
	}
	values := copyValues(e.Values())
	if err := s.checkConstraints(t, values, model.ID); err != nil {
		var zero E
		return zero, err
	}

	r := row{model: model, values: values}
	t.rows[model.ID] = r
	return s.materialize(r), nil
}

func (s *Store[E]) Delete(ctx context.Context, id int32) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, child := range s.schema.Children {
		if s.db.references(child.Table, child.Column, id) > 0 {
			return domain.HasChildren(s.schema.Name, id, child)
		}
	}
	delete(s.table().rows, id)
	return nil
}

// checkConstraints enforces the unique and foreign key columns of the schema,
// the way the PostgreSQL tables do. The caller holds the write lock.
func (s *Store[E]) checkConstraints(t *table, values []any, id int32) error {
	for _, column := range s.schema.Unique {
		i := s.schema.ColumnIndex(column)
		if domain.IsDefault(values[i]) {
			continue
		}
		for otherID, r := range t.rows {
			if otherID != id && equal(r.values[i], values[i]) {
				return domain.DuplicateField(s.schema.Name, column, values[i])
			}
		}
	}

	for _, parent := range s.schema.Parents {
		ref, _ := values[s.schema.ColumnIndex(parent.Column)].(int32)
		pt, ok := s.db.tables[parent.Table]
		if !ok {
			return domain.ParentNotFound(s.schema.Name, parent, ref)
		}
		if _, ok := pt.rows[ref]; !ok {
			return domain.ParentNotFound(s.schema.Name, parent, ref)
		}
	}
	return nil
}

func (s *Store[E]) Search(ctx context.Context, text string) ([]E, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	needle := strings.ToLower(text)
	indexes := make([]int, 0, len(s.schema.Search))
	for _, column := range s.schema.Search {
		indexes = append(indexes, s.schema.ColumnIndex(column))
	}

	return s.sorted(func(r row) bool {
		for _, i := range indexes {
			if v, ok := r.values[i].(string); ok && strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}), nil
}

func (s *Store[E]) Filter(ctx context.Context, criteria []domain.Criterion) ([]E, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.sorted(func(r row) bool {
		for _, c := range criteria {
			if c.Column == "id" {
				if id, _ := c.Value.(int32); id != r.model.ID {
					return false
				}
				continue
			}
			i := s.schema.ColumnIndex(c.Column)
			if i < 0 || !equal(r.values[i], c.Value) {
				return false
			}
		}
		return true
	}), nil
}

func (s *Store[E]) Conflicts(ctx context.Context, column string, value any, excludeID int32) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	i := s.schema.ColumnIndex(column)
	if i < 0 {
		return false, nil
	}
	for id, r := range s.table().rows {
		if id != excludeID && equal(r.values[i], value) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store[E]) Exists(ctx context.Context, tableName string, id int32) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	t, ok := s.db.tables[tableName]
	if !ok {
		return false, nil
	}
	_, ok = t.rows[id]
	return ok, nil
}

func (s *Store[E]) CountReferences(ctx context.Context, tableName, column string, id int32) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.references(tableName, column, id), nil
}

// references counts rows of tableName whose column points at id. The caller holds a lock.
func (db *DB) references(tableName, column string, id int32) int64 {
	t, ok := db.tables[tableName]
	if !ok {
		return 0
	}
	i := t.schema.ColumnIndex(column)
	if i < 0 {
		return 0
	}
	var n int64
	for _, r := range t.rows {
		if ref, _ := r.values[i].(int32); ref == id {
			n++
		}
	}
	return n
}

func copyValues(values []any) []any {
	out := make([]any, len(values))
	copy(out, values)
	return out
}

func equal(a, b any) bool {
	switch av := a.(type) {
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}
