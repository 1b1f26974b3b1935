package domain

import "time"

// Model holds the identity and audit columns shared by every entity
type Model struct {
	ID       int32      `json:"id"`
	Created  time.Time  `json:"created"`
	Modified *time.Time `json:"modified,omitempty"`
}

// Base returns the embedded model so generic code can reach the shared columns
func (m *Model) Base() *Model {
	return m
}

// Relation describes a foreign key between two tables.
// For a parent relation Column lives on the entity's own table and points at Table.
// For a child relation Column lives on Table and points back at the entity.
type Relation struct {
	Entity string
	Table  string
	Column string
}

// Schema describes how an entity maps onto its table
type Schema struct {
	// Name is the resource name used in routes, cache keys and messages (e.g. "Bank")
	Name  string
	Table string
	// Columns lists the mutable columns in the order returned by Entity.Values and Entity.Targets
	Columns  []string
	Unique   []string
	Parents  []Relation
	Children []Relation
	Search   []string
}

// ColumnIndex returns the position of column in Columns, or -1
func (s *Schema) ColumnIndex(column string) int {
	for i, c := range s.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Entity is implemented by pointers to every persisted type
type Entity interface {
	Base() *Model
	Schema() *Schema
	// Values returns the mutable column values in Schema.Columns order
	Values() []any
	// Targets returns pointers to the mutable fields in Schema.Columns order
	Targets() []any
}

// CreatePolicy decides what Create does when the supplied id already exists
type CreatePolicy string

const (
	// CreateUpserts silently turns the create into an update
	CreateUpserts CreatePolicy = "upsert"
	// CreateRejectsExisting fails the create with ErrAlreadyExists
	CreateRejectsExisting CreatePolicy = "reject"
)
