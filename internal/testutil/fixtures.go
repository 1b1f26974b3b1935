package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/repository"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Repositories holds one in-memory repository per entity over a shared database
type Repositories struct {
	Banks        *repository.Repository[*domain.Bank]
	Types        *repository.Repository[*domain.TransactionType]
	Categories   *repository.Repository[*domain.TransactionCategory]
	BudgetTypes  *repository.Repository[*domain.BudgetType]
	Budgets      *repository.Repository[*domain.Budget]
	Transactions *repository.Repository[*domain.Transaction]
}

// NewRepositories builds the in-memory repositories
func NewRepositories(opts ...repository.Option) *Repositories {
	db := memory.NewDB()
	return &Repositories{
		Banks:        repository.New(memory.NewStore(db, domain.NewBank), domain.NewBank, opts...),
		Types:        repository.New(memory.NewStore(db, domain.NewTransactionType), domain.NewTransactionType, opts...),
		Categories:   repository.New(memory.NewStore(db, domain.NewTransactionCategory), domain.NewTransactionCategory, opts...),
		BudgetTypes:  repository.New(memory.NewStore(db, domain.NewBudgetType), domain.NewBudgetType, opts...),
		Budgets:      repository.New(memory.NewStore(db, domain.NewBudget), domain.NewBudget, opts...),
		Transactions: repository.New(memory.NewStore(db, domain.NewTransaction), domain.NewTransaction, opts...),
	}
}

// Seeded holds the rows created by Seed
type Seeded struct {
	Bank        *domain.Bank
	Type        *domain.TransactionType
	Category    *domain.TransactionCategory
	BudgetType  *domain.BudgetType
	Budget      *domain.Budget
	Transaction *domain.Transaction
}

// Seed inserts one row of every entity, wired together by foreign keys
func (r *Repositories) Seed(t *testing.T) *Seeded {
	t.Helper()
	ctx := context.Background()
	var s Seeded
	var err error

	s.Bank, err = r.Banks.Create(ctx, &domain.Bank{Name: "Acme"})
	require.NoError(t, err)
	s.Type, err = r.Types.Create(ctx, &domain.TransactionType{Name: "Expense", Description: "Money going out"})
	require.NoError(t, err)
	s.Category, err = r.Categories.Create(ctx, &domain.TransactionCategory{Name: "Food", Icon: "utensils", Color: "#FF5722"})
	require.NoError(t, err)
	s.BudgetType, err = r.BudgetTypes.Create(ctx, &domain.BudgetType{Name: "Monthly", Days: 30})
	require.NoError(t, err)
	s.Budget, err = r.Budgets.Create(ctx, &domain.Budget{
		CategoryID:   s.Category.ID,
		BudgetTypeID: s.BudgetType.ID,
		Amount:       decimal.NewFromInt(400),
	})
	require.NoError(t, err)
	s.Transaction, err = r.Transactions.Create(ctx, &domain.Transaction{
		CategoryID:  s.Category.ID,
		TypeID:      s.Type.ID,
		BankID:      s.Bank.ID,
		Amount:      decimal.RequireFromString("18.40"),
		Date:        time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		Description: "Groceries at the market",
	})
	require.NoError(t, err)
	return &s
}
