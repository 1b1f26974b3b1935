package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/repository"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore widens the window between the repository's checks and its write
type slowStore[E domain.Entity] struct {
	*memory.Store[E]
	delay time.Duration
}

func (s *slowStore[E]) Conflicts(ctx context.Context, column string, value any, excludeID int32) (bool, error) {
	conflict, err := s.Store.Conflicts(ctx, column, value, excludeID)
	time.Sleep(s.delay)
	return conflict, err
}

func (s *slowStore[E]) Exists(ctx context.Context, table string, id int32) (bool, error) {
	ok, err := s.Store.Exists(ctx, table, id)
	time.Sleep(s.delay)
	return ok, err
}

func (s *slowStore[E]) CountReferences(ctx context.Context, table, column string, id int32) (int64, error) {
	n, err := s.Store.CountReferences(ctx, table, column, id)
	time.Sleep(s.delay)
	return n, err
}

func TestStore_ConcurrentCreatesKeepNameUnique(t *testing.T) {
	db := memory.NewDB()
	banks := repository.New[*domain.Bank](&slowStore[*domain.Bank]{Store: memory.NewStore(db, domain.NewBank), delay: 5 * time.Millisecond}, domain.NewBank)
	ctx := context.Background()

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = banks.Create(ctx, &domain.Bank{Name: "Acme"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateField)
	}
	assert.Equal(t, 1, succeeded)

	count, err := banks.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_DeleteRacingChildInsertLeavesNoOrphan(t *testing.T) {
	db := memory.NewDB()
	ctx := context.Background()
	delay := 5 * time.Millisecond

	banks := repository.New[*domain.Bank](&slowStore[*domain.Bank]{Store: memory.NewStore(db, domain.NewBank), delay: delay}, domain.NewBank)
	categories := repository.New(memory.NewStore(db, domain.NewTransactionCategory), domain.NewTransactionCategory)
	types := repository.New(memory.NewStore(db, domain.NewTransactionType), domain.NewTransactionType)
	transactions := repository.New[*domain.Transaction](&slowStore[*domain.Transaction]{Store: memory.NewStore(db, domain.NewTransaction), delay: delay}, domain.NewTransaction)

	bank, err := banks.Create(ctx, &domain.Bank{Name: "Acme"})
	require.NoError(t, err)
	category, err := categories.Create(ctx, &domain.TransactionCategory{Name: "Food", Icon: "utensils", Color: "#FF0000"})
	require.NoError(t, err)
	txType, err := types.Create(ctx, &domain.TransactionType{Name: "Expense"})
	require.NoError(t, err)

	var deleteErr, createErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		deleteErr = banks.Delete(ctx, bank.ID)
	}()
	go func() {
		defer wg.Done()
		_, createErr = transactions.Create(ctx, &domain.Transaction{
			CategoryID: category.ID,
			TypeID:     txType.ID,
			BankID:     bank.ID,
			Amount:     decimal.NewFromInt(10),
			Date:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}()
	wg.Wait()

	// Exactly one of the two writes wins
	if deleteErr == nil {
		assert.ErrorIs(t, createErr, domain.ErrParentNotFound)
		count, err := transactions.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	} else {
		assert.ErrorIs(t, deleteErr, domain.ErrHasChildren)
		assert.NoError(t, createErr)
		_, err := banks.GetByID(ctx, bank.ID)
		assert.NoError(t, err)
	}
}

func TestStore_InsertEnforcesConstraints(t *testing.T) {
	db := memory.NewDB()
	ctx := context.Background()
	banks := memory.NewStore(db, domain.NewBank)
	budgets := memory.NewStore(db, domain.NewBudget)
	memory.NewStore(db, domain.NewTransactionCategory)
	memory.NewStore(db, domain.NewBudgetType)

	_, err := banks.Insert(ctx, &domain.Bank{Name: "Acme"})
	require.NoError(t, err)

	_, err = banks.Insert(ctx, &domain.Bank{Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrDuplicateField)

	_, err = budgets.Insert(ctx, &domain.Budget{CategoryID: 4, BudgetTypeID: 2, Amount: decimal.NewFromInt(50)})
	assert.ErrorIs(t, err, domain.ErrParentNotFound)
	var rule *domain.RuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "TransactionCategory", rule.Related)
}

func TestStore_UpdateKeepsOwnUniqueValue(t *testing.T) {
	db := memory.NewDB()
	ctx := context.Background()
	banks := memory.NewStore(db, domain.NewBank)

	acme, err := banks.Insert(ctx, &domain.Bank{Name: "Acme"})
	require.NoError(t, err)
	other, err := banks.Insert(ctx, &domain.Bank{Name: "Other"})
	require.NoError(t, err)

	_, err = banks.Update(ctx, &domain.Bank{Model: acme.Model, Name: "Acme"})
	assert.NoError(t, err)

	_, err = banks.Update(ctx, &domain.Bank{Model: other.Model, Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrDuplicateField)
}

func TestStore_DeleteRejectsReferencedRow(t *testing.T) {
	db := memory.NewDB()
	ctx := context.Background()
	categories := memory.NewStore(db, domain.NewTransactionCategory)
	budgetTypes := memory.NewStore(db, domain.NewBudgetType)
	budgets := memory.NewStore(db, domain.NewBudget)

	category, err := categories.Insert(ctx, &domain.TransactionCategory{Name: "Food", Icon: "utensils", Color: "#FF0000"})
	require.NoError(t, err)
	budgetType, err := budgetTypes.Insert(ctx, &domain.BudgetType{Name: "Monthly", Days: 30})
	require.NoError(t, err)
	_, err = budgets.Insert(ctx, &domain.Budget{CategoryID: category.ID, BudgetTypeID: budgetType.ID, Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	err = categories.Delete(ctx, category.ID)
	assert.ErrorIs(t, err, domain.ErrHasChildren)

	_, found, err := categories.Get(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, found)
}
