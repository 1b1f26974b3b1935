package dto

import (
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Field widths shared with the migrations
const (
	maxNameLength        = 50
	maxDescriptionLength = 255
	maxIconLength        = 50
)

// Bank is the API shape of domain.Bank
type Bank struct {
	Audit
	Name string `json:"name" example:"Acme Savings"`
}

func FromBank(b *domain.Bank) Bank {
	return Bank{Audit: auditFrom(b.Model), Name: b.Name}
}

func (d Bank) Validate() []FieldError {
	var c checker
	c.required("name", d.Name, domain.MaxBankNameLength)
	return c.result()
}

func (d Bank) ToEntity() *domain.Bank {
	return &domain.Bank{Model: d.model(), Name: d.Name}
}

// TransactionType is the API shape of domain.TransactionType
type TransactionType struct {
	Audit
	Name        string `json:"name" example:"Expense"`
	Description string `json:"description"`
}

func FromTransactionType(t *domain.TransactionType) TransactionType {
	return TransactionType{Audit: auditFrom(t.Model), Name: t.Name, Description: t.Description}
}

func (d TransactionType) Validate() []FieldError {
	var c checker
	c.required("name", d.Name, maxNameLength)
	c.optional("description", d.Description, maxDescriptionLength)
	return c.result()
}

func (d TransactionType) ToEntity() *domain.TransactionType {
	return &domain.TransactionType{Model: d.model(), Name: d.Name, Description: d.Description}
}

// TransactionCategory is the API shape of domain.TransactionCategory
type TransactionCategory struct {
	Audit
	Name        string `json:"name" example:"Groceries"`
	Description string `json:"description"`
	Icon        string `json:"icon" example:"cart"`
	Color       string `json:"color" example:"#4CAF50"`
}

func FromTransactionCategory(t *domain.TransactionCategory) TransactionCategory {
	return TransactionCategory{
		Audit:       auditFrom(t.Model),
		Name:        t.Name,
		Description: t.Description,
		Icon:        t.Icon,
		Color:       t.Color,
	}
}

func (d TransactionCategory) Validate() []FieldError {
	var c checker
	c.required("name", d.Name, maxNameLength)
	c.optional("description", d.Description, maxDescriptionLength)
	c.required("icon", d.Icon, maxIconLength)
	if !colorPattern.MatchString(d.Color) {
		c.add("color", "color must be a hex colour like #RRGGBB")
	}
	return c.result()
}

func (d TransactionCategory) ToEntity() *domain.TransactionCategory {
	return &domain.TransactionCategory{
		Model:       d.model(),
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		Color:       d.Color,
	}
}

// BudgetType is the API shape of domain.BudgetType
type BudgetType struct {
	Audit
	Name string `json:"name" example:"Monthly"`
	Days int32  `json:"days" example:"30"`
}

func FromBudgetType(t *domain.BudgetType) BudgetType {
	return BudgetType{Audit: auditFrom(t.Model), Name: t.Name, Days: t.Days}
}

func (d BudgetType) Validate() []FieldError {
	var c checker
	c.required("name", d.Name, maxNameLength)
	if d.Days <= 0 {
		c.add("days", "days must be greater than zero")
	}
	return c.result()
}

func (d BudgetType) ToEntity() *domain.BudgetType {
	return &domain.BudgetType{Model: d.model(), Name: d.Name, Days: d.Days}
}

// Budget is the API shape of domain.Budget
type Budget struct {
	Audit
	CategoryID   int32           `json:"categoryId" example:"1"`
	BudgetTypeID int32           `json:"budgetTypeId" example:"1"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"250.00"`
}

func FromBudget(b *domain.Budget) Budget {
	return Budget{Audit: auditFrom(b.Model), CategoryID: b.CategoryID, BudgetTypeID: b.BudgetTypeID, Amount: b.Amount}
}

func (d Budget) Validate() []FieldError {
	var c checker
	c.positiveID("categoryId", d.CategoryID)
	c.positiveID("budgetTypeId", d.BudgetTypeID)
	if !d.Amount.IsPositive() {
		c.add("amount", "amount must be greater than zero")
	}
	return c.result()
}

func (d Budget) ToEntity() *domain.Budget {
	return &domain.Budget{Model: d.model(), CategoryID: d.CategoryID, BudgetTypeID: d.BudgetTypeID, Amount: d.Amount}
}

// Transaction is the API shape of domain.Transaction
type Transaction struct {
	Audit
	CategoryID  int32           `json:"categoryId" example:"1"`
	TypeID      int32           `json:"typeId" example:"1"`
	BankID      int32           `json:"bankId" example:"1"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"12.50"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description" example:"Lunch"`
}

func FromTransaction(t *domain.Transaction) Transaction {
	return Transaction{
		Audit:       auditFrom(t.Model),
		CategoryID:  t.CategoryID,
		TypeID:      t.TypeID,
		BankID:      t.BankID,
		Amount:      t.Amount,
		Date:        t.Date,
		Description: t.Description,
	}
}

func (d Transaction) Validate() []FieldError {
	var c checker
	c.positiveID("categoryId", d.CategoryID)
	c.positiveID("typeId", d.TypeID)
	c.positiveID("bankId", d.BankID)
	if d.Amount.IsZero() {
		c.add("amount", "amount must not be zero")
	}
	if d.Date.IsZero() {
		c.add("date", "date is required")
	}
	c.optional("description", d.Description, maxDescriptionLength)
	return c.result()
}

func (d Transaction) ToEntity() *domain.Transaction {
	return &domain.Transaction{
		Model:       d.model(),
		CategoryID:  d.CategoryID,
		TypeID:      d.TypeID,
		BankID:      d.BankID,
		Amount:      d.Amount,
		Date:        d.Date,
		Description: d.Description,
	}
}
