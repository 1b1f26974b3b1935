package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Store implements repository.Store for one entity table using PostgreSQL
type Store[E domain.Entity] struct {
	pool      *pgxpool.Pool
	schema    *domain.Schema
	newEntity func() E

	table      string
	selectCols string
}

// NewStore creates a Store for the entity produced by newEntity
func NewStore[E domain.Entity](pool *pgxpool.Pool, newEntity func() E) *Store[E] {
	schema := newEntity().Schema()
	cols := append([]string{"id", "created", "modified"}, schema.Columns...)
	return &Store[E]{
		pool:       pool,
		schema:     schema,
		newEntity:  newEntity,
		table:      ident(schema.Table),
		selectCols: identList(cols),
	}
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func identList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ident(n)
	}
	return strings.Join(quoted, ", ")
}

func (s *Store[E]) scan(row pgx.Row) (E, error) {
	e := s.newEntity()
	base := e.Base()
	dest := append([]any{&base.ID, &base.Created, &base.Modified}, e.Targets()...)
	if err := row.Scan(dest...); err != nil {
		var zero E
		return zero, err
	}
	return e, nil
}

func (s *Store[E]) query(ctx context.Context, sql string, args ...any) ([]E, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]E, 0)
	for rows.Next() {
		e, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Count returns the number of rows in the table
func (s *Store[E]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+s.table).Scan(&n)
	return n, err
}

// List returns rows ordered by id
func (s *Store[E]) List(ctx context.Context, limit, offset int) ([]E, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", s.selectCols, s.table)
	if limit > 0 {
		return s.query(ctx, sql+" LIMIT $1 OFFSET $2", limit, offset)
	}
	if offset > 0 {
		return s.query(ctx, sql+" OFFSET $1", offset)
	}
	return s.query(ctx, sql)
}

// Get returns the row with id; the bool is false when no row matches
func (s *Store[E]) Get(ctx context.Context, id int32) (E, bool, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", s.selectCols, s.table)
	e, err := s.scan(s.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, false, nil
		}
		return e, false, err
	}
	return e, true, nil
}

// Insert stores e and returns the row as persisted
func (s *Store[E]) Insert(ctx context.Context, e E) (E, error) {
	base := e.Base()
	cols := append([]string{"created", "modified"}, s.schema.Columns...)
	args := append([]any{base.Created, base.Modified}, e.Values()...)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.table, identList(cols), strings.Join(placeholders, ", "), s.selectCols)

	created, err := s.scan(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return created, s.mapError(err, base.ID)
	}
	return created, nil
}

// Update overwrites the modified timestamp and every mutable column of e
func (s *Store[E]) Update(ctx context.Context, e E) (E, error) {
	base := e.Base()
	values := e.Values()

	sets := make([]string, 0, len(values)+1)
	args := make([]any, 0, len(values)+2)
	sets = append(sets, "modified = $1")
	args = append(args, base.Modified)
	for i, col := range s.schema.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", ident(col), i+2))
		args = append(args, values[i])
	}
	args = append(args, base.ID)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		s.table, strings.Join(sets, ", "), len(args), s.selectCols)

	updated, err := s.scan(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, domain.NotFound(s.schema.Name, base.ID)
		}
		return updated, s.mapError(err, base.ID)
	}
	return updated, nil
}

// Delete removes the row with id
func (s *Store[E]) Delete(ctx context.Context, id int32) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM "+s.table+" WHERE id = $1", id)
	if err != nil {
		return s.mapError(err, id)
	}
	return nil
}

// Search matches text case-insensitively anywhere inside the searchable columns
func (s *Store[E]) Search(ctx context.Context, text string) ([]E, error) {
	conds := make([]string, len(s.schema.Search))
	for i, col := range s.schema.Search {
		conds[i] = ident(col) + " ILIKE $1"
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id", s.selectCols, s.table, strings.Join(conds, " OR "))
	return s.query(ctx, sql, "%"+escapeLike(text)+"%")
}

// Filter returns rows matching every criterion
func (s *Store[E]) Filter(ctx context.Context, criteria []domain.Criterion) ([]E, error) {
	conds := make([]string, len(criteria))
	args := make([]any, len(criteria))
	for i, c := range criteria {
		conds[i] = fmt.Sprintf("%s = $%d", ident(c.Column), i+1)
		args[i] = c.Value
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id", s.selectCols, s.table, strings.Join(conds, " AND "))
	return s.query(ctx, sql, args...)
}

// Conflicts reports whether a row other than excludeID already holds value in column
func (s *Store[E]) Conflicts(ctx context.Context, column string, value any, excludeID int32) (bool, error) {
	var exists bool
	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND id <> $2)", s.table, ident(column))
	err := s.pool.QueryRow(ctx, sql, value, excludeID).Scan(&exists)
	return exists, err
}

// Exists reports whether table has a row with id
func (s *Store[E]) Exists(ctx context.Context, table string, id int32) (bool, error) {
	var exists bool
	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", ident(table))
	err := s.pool.QueryRow(ctx, sql, id).Scan(&exists)
	return exists, err
}

// CountReferences counts rows in table whose column points at id
func (s *Store[E]) CountReferences(ctx context.Context, table, column string, id int32) (int64, error) {
	var n int64
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", ident(table), ident(column))
	err := s.pool.QueryRow(ctx, sql, id).Scan(&n)
	return n, err
}

// mapError turns constraint violations that slipped past the repository
// checks (e.g. concurrent writers) into rule errors
func (s *Store[E]) mapError(err error, id int32) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return domain.DuplicateField(s.schema.Name, constraintColumn(s.schema.Table, pgErr.ConstraintName), nil)
	case pgForeignKeyViolation:
		if pgErr.TableName != s.schema.Table {
			return domain.HasChildren(s.schema.Name, id, s.childRelation(pgErr.TableName, pgErr.ConstraintName))
		}
		column := constraintColumn(s.schema.Table, pgErr.ConstraintName)
		for _, parent := range s.schema.Parents {
			if parent.Column == column {
				return domain.ParentNotFound(s.schema.Name, parent, nil)
			}
		}
		return &domain.RuleError{Err: domain.ErrParentNotFound, Entity: s.schema.Name, Field: column}
	}
	return err
}

// childRelation names the referencing entity of a foreign key violation raised on table
func (s *Store[E]) childRelation(table, constraint string) domain.Relation {
	column := constraintColumn(table, constraint)
	var match *domain.Relation
	for i, child := range s.schema.Children {
		if child.Table != table {
			continue
		}
		if child.Column == column {
			return child
		}
		if match == nil {
			match = &s.schema.Children[i]
		}
	}
	if match != nil {
		return *match
	}
	return domain.Relation{Entity: table, Table: table, Column: column}
}

// constraintColumn recovers the column from PostgreSQL's default constraint
// names, e.g. banks_name_key -> name, budgets_category_id_fkey -> category_id
func constraintColumn(table, constraint string) string {
	name := strings.TrimPrefix(constraint, table+"_")
	name = strings.TrimSuffix(name, "_key")
	name = strings.TrimSuffix(name, "_fkey")
	return name
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
