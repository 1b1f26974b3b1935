package domain

// TransactionCategory groups transactions and budgets. Name, icon and colour
// are each unique across all categories.
type TransactionCategory struct {
	Model
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

var transactionCategorySchema = &Schema{
	Name:    "TransactionCategory",
	Table:   "transaction_categories",
	Columns: []string{"name", "description", "icon", "color"},
	Unique:  []string{"name", "icon", "color"},
	Children: []Relation{
		{Entity: "Transaction", Table: "transactions", Column: "category_id"},
		{Entity: "Budget", Table: "budgets", Column: "category_id"},
	},
	Search: []string{"name", "description", "icon", "color"},
}

func NewTransactionCategory() *TransactionCategory { return &TransactionCategory{} }

func (c *TransactionCategory) Schema() *Schema { return transactionCategorySchema }

func (c *TransactionCategory) Values() []any {
	return []any{c.Name, c.Description, c.Icon, c.Color}
}

func (c *TransactionCategory) Targets() []any {
	return []any{&c.Name, &c.Description, &c.Icon, &c.Color}
}
