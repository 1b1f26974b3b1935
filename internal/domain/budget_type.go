package domain

// BudgetType is a budgeting period such as "Weekly" (7 days) or "Monthly" (30 days)
type BudgetType struct {
	Model
	Name string `json:"name"`
	Days int32  `json:"days"`
}

var budgetTypeSchema = &Schema{
	Name:    "BudgetType",
	Table:   "budget_types",
	Columns: []string{"name", "days"},
	Unique:  []string{"name"},
	Children: []Relation{
		{Entity: "Budget", Table: "budgets", Column: "budget_type_id"},
	},
	Search: []string{"name"},
}

func NewBudgetType() *BudgetType { return &BudgetType{} }

func (b *BudgetType) Schema() *Schema { return budgetTypeSchema }
func (b *BudgetType) Values() []any   { return []any{b.Name, b.Days} }
func (b *BudgetType) Targets() []any  { return []any{&b.Name, &b.Days} }
