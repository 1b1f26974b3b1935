package repository

import "github.com/dafibh/ledger/ledger-backend/internal/domain"

var (
	_ domain.Repository[*domain.Bank]        = (*Repository[*domain.Bank])(nil)
	_ domain.Repository[*domain.Transaction] = (*Repository[*domain.Transaction])(nil)
)
