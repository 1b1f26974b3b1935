package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allEntities() []Entity {
	return []Entity{
		NewBank(),
		NewTransactionType(),
		NewTransactionCategory(),
		NewBudgetType(),
		NewBudget(),
		NewTransaction(),
	}
}

func TestSchemas_ColumnsMatchValuesAndTargets(t *testing.T) {
	for _, e := range allEntities() {
		s := e.Schema()
		t.Run(s.Name, func(t *testing.T) {
			assert.Len(t, e.Values(), len(s.Columns))
			assert.Len(t, e.Targets(), len(s.Columns))

			for _, col := range s.Unique {
				assert.GreaterOrEqual(t, s.ColumnIndex(col), 0, "unique column %s", col)
			}
			for _, col := range s.Search {
				assert.GreaterOrEqual(t, s.ColumnIndex(col), 0, "search column %s", col)
			}
			for _, p := range s.Parents {
				assert.GreaterOrEqual(t, s.ColumnIndex(p.Column), 0, "parent column %s", p.Column)
			}
		})
	}
}

func TestSchemas_RelationsAreMirrored(t *testing.T) {
	byName := make(map[string]*Schema)
	for _, e := range allEntities() {
		byName[e.Schema().Name] = e.Schema()
	}

	for _, s := range byName {
		for _, p := range s.Parents {
			parent, ok := byName[p.Entity]
			require.True(t, ok, "unknown parent %s of %s", p.Entity, s.Name)
			assert.Equal(t, parent.Table, p.Table)
			assert.Contains(t, parent.Children, Relation{Entity: s.Name, Table: s.Table, Column: p.Column},
				"%s does not list %s as a child", parent.Name, s.Name)
		}
		for _, c := range s.Children {
			child, ok := byName[c.Entity]
			require.True(t, ok, "unknown child %s of %s", c.Entity, s.Name)
			assert.Equal(t, child.Table, c.Table)
			assert.Contains(t, child.Parents, Relation{Entity: s.Name, Table: s.Table, Column: c.Column},
				"%s does not list %s as a parent", child.Name, s.Name)
		}
	}
}

func TestTargets_WriteThroughToFields(t *testing.T) {
	b := NewBank()
	*(b.Targets()[0].(*string)) = "Acme"
	assert.Equal(t, "Acme", b.Name)
	assert.Equal(t, []any{"Acme"}, b.Values())
}
