package domain

// Bank is a financial institution transactions are booked against
type Bank struct {
	Model
	Name string `json:"name"`
}

// MaxBankNameLength is the column width of banks.name
const MaxBankNameLength = 100

var bankSchema = &Schema{
	Name:    "Bank",
	Table:   "banks",
	Columns: []string{"name"},
	Unique:  []string{"name"},
	Children: []Relation{
		{Entity: "Transaction", Table: "transactions", Column: "bank_id"},
	},
	Search: []string{"name"},
}

func NewBank() *Bank { return &Bank{} }

func (b *Bank) Schema() *Schema { return bankSchema }
func (b *Bank) Values() []any   { return []any{b.Name} }
func (b *Bank) Targets() []any  { return []any{&b.Name} }
