package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	Model
	CategoryID  int32           `json:"categoryId"`
	TypeID      int32           `json:"typeId"`
	BankID      int32           `json:"bankId"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

var transactionSchema = &Schema{
	Name:    "Transaction",
	Table:   "transactions",
	Columns: []string{"category_id", "type_id", "bank_id", "amount", "date", "description"},
	Parents: []Relation{
		{Entity: "TransactionCategory", Table: "transaction_categories", Column: "category_id"},
		{Entity: "TransactionType", Table: "transaction_types", Column: "type_id"},
		{Entity: "Bank", Table: "banks", Column: "bank_id"},
	},
	Search: []string{"description"},
}

func NewTransaction() *Transaction { return &Transaction{} }

func (t *Transaction) Schema() *Schema { return transactionSchema }

func (t *Transaction) Values() []any {
	return []any{t.CategoryID, t.TypeID, t.BankID, t.Amount, t.Date, t.Description}
}

func (t *Transaction) Targets() []any {
	return []any{&t.CategoryID, &t.TypeID, &t.BankID, &t.Amount, &t.Date, &t.Description}
}
