package domain

import "github.com/shopspring/decimal"

// Budget caps spending in a category over a budget type's period
type Budget struct {
	Model
	CategoryID   int32           `json:"categoryId"`
	BudgetTypeID int32           `json:"budgetTypeId"`
	Amount       decimal.Decimal `json:"amount"`
}

var budgetSchema = &Schema{
	Name:    "Budget",
	Table:   "budgets",
	Columns: []string{"category_id", "budget_type_id", "amount"},
	Parents: []Relation{
		{Entity: "TransactionCategory", Table: "transaction_categories", Column: "category_id"},
		{Entity: "BudgetType", Table: "budget_types", Column: "budget_type_id"},
	},
}

func NewBudget() *Budget { return &Budget{} }

func (b *Budget) Schema() *Schema { return budgetSchema }
func (b *Budget) Values() []any   { return []any{b.CategoryID, b.BudgetTypeID, b.Amount} }
func (b *Budget) Targets() []any  { return []any{&b.CategoryID, &b.BudgetTypeID, &b.Amount} }
