package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fields(errs []FieldError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestBank_Validate(t *testing.T) {
	assert.Empty(t, Bank{Name: "Acme"}.Validate())
	assert.Equal(t, []string{"name"}, fields(Bank{Name: "  "}.Validate()))
	assert.Equal(t, []string{"name"}, fields(Bank{Name: strings.Repeat("a", domain.MaxBankNameLength+1)}.Validate()))
}

func TestTransactionCategory_Validate(t *testing.T) {
	valid := TransactionCategory{Name: "Food", Icon: "utensils", Color: "#a1B2c3"}
	assert.Empty(t, valid.Validate())

	invalid := TransactionCategory{Name: "", Icon: "", Color: "red"}
	assert.Equal(t, []string{"name", "icon", "color"}, fields(invalid.Validate()))
}

func TestBudgetType_Validate(t *testing.T) {
	assert.Empty(t, BudgetType{Name: "Weekly", Days: 7}.Validate())
	assert.Equal(t, []string{"days"}, fields(BudgetType{Name: "Weekly"}.Validate()))
}

func TestBudget_Validate(t *testing.T) {
	assert.Empty(t, Budget{CategoryID: 1, BudgetTypeID: 1, Amount: decimal.NewFromInt(10)}.Validate())
	assert.Equal(t, []string{"categoryId", "budgetTypeId", "amount"},
		fields(Budget{Amount: decimal.NewFromInt(-1)}.Validate()))
}

func TestTransaction_Validate(t *testing.T) {
	valid := Transaction{CategoryID: 1, TypeID: 1, BankID: 1, Amount: decimal.NewFromInt(-20), Date: time.Now()}
	assert.Empty(t, valid.Validate())

	assert.Equal(t, []string{"categoryId", "typeId", "bankId", "amount", "date"}, fields(Transaction{}.Validate()))
}

func TestTransaction_EntityMapping(t *testing.T) {
	modified := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	entity := &domain.Transaction{
		Model:       domain.Model{ID: 5, Created: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Modified: &modified},
		CategoryID:  1,
		TypeID:      2,
		BankID:      3,
		Amount:      decimal.RequireFromString("99.95"),
		Date:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Rent",
	}

	d := FromTransaction(entity)

	assert.Equal(t, int32(5), d.ID)
	assert.Equal(t, &modified, d.Modified)
	assert.Equal(t, entity, d.ToEntity())
}

func TestValidate_NeverNil(t *testing.T) {
	assert.NotNil(t, Bank{Name: "Acme"}.Validate())
}
