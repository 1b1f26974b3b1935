package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCriteria_EmptyEntityYieldsNothing(t *testing.T) {
	assert.Empty(t, Criteria(NewBank()))
	assert.Empty(t, Criteria(NewTransaction()))
	assert.Empty(t, Criteria(NewBudget()))
}

func TestCriteria_OnlySuppliedFields(t *testing.T) {
	category := &TransactionCategory{Name: "Food", Color: "#00FF00"}

	criteria := Criteria(category)

	assert.Equal(t, []Criterion{
		{Column: "name", Value: "Food"},
		{Column: "color", Value: "#00FF00"},
	}, criteria)
}

func TestCriteria_IncludesIDAndTypedValues(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tx := &Transaction{Model: Model{ID: 7}, BankID: 2, Amount: decimal.NewFromInt(15), Date: date}

	criteria := Criteria(tx)

	assert.Len(t, criteria, 4)
	assert.Equal(t, Criterion{Column: "id", Value: int32(7)}, criteria[0])
	assert.Equal(t, "bank_id", criteria[1].Column)
	assert.Equal(t, "amount", criteria[2].Column)
	assert.Equal(t, "date", criteria[3].Column)
}

func TestIsDefault(t *testing.T) {
	assert.True(t, IsDefault(""))
	assert.True(t, IsDefault(int32(0)))
	assert.True(t, IsDefault(decimal.Zero))
	assert.True(t, IsDefault(time.Time{}))
	assert.True(t, IsDefault((*time.Time)(nil)))
	assert.False(t, IsDefault("x"))
	assert.False(t, IsDefault(int32(3)))
	assert.False(t, IsDefault(decimal.NewFromFloat(0.5)))
}

func TestSchemaColumnIndex(t *testing.T) {
	s := NewTransactionCategory().Schema()
	assert.Equal(t, 2, s.ColumnIndex("icon"))
	assert.Equal(t, -1, s.ColumnIndex("missing"))
}

func TestRuleError_UnwrapsToSentinel(t *testing.T) {
	err := DuplicateField("Bank", "name", "Acme")
	assert.ErrorIs(t, err, ErrDuplicateField)
	assert.True(t, IsRuleError(err))
	assert.Contains(t, err.Error(), "Acme")

	err = HasChildren("Bank", 3, Relation{Entity: "Transaction"})
	assert.ErrorIs(t, err, ErrHasChildren)
	assert.Contains(t, err.Error(), "Transaction")
}
