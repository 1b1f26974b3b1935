package domain

// TransactionType classifies a transaction (income, expense, transfer...)
type TransactionType struct {
	Model
	Name        string `json:"name"`
	Description string `json:"description"`
}

var transactionTypeSchema = &Schema{
	Name:    "TransactionType",
	Table:   "transaction_types",
	Columns: []string{"name", "description"},
	Unique:  []string{"name"},
	Children: []Relation{
		{Entity: "Transaction", Table: "transactions", Column: "type_id"},
	},
	Search: []string{"name", "description"},
}

func NewTransactionType() *TransactionType { return &TransactionType{} }

func (t *TransactionType) Schema() *Schema { return transactionTypeSchema }
func (t *TransactionType) Values() []any   { return []any{t.Name, t.Description} }
func (t *TransactionType) Targets() []any  { return []any{&t.Name, &t.Description} }
