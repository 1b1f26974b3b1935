package service

import "github.com/dafibh/ledger/ledger-backend/internal/dto"

// Result is the outcome of a service call. Status false carries an expected
// failure (validation, not found, conflicts) with a localized message.
type Result[T any] struct {
	Status  bool
	Message string
	Data    T
	// Errors lists invalid fields when a DTO failed validation
	Errors []dto.FieldError
}

// Page is a slice of a list together with the total number of stored rows
type Page[T any] struct {
	Result[[]T]
	TotalRecords int64
}

func ok[T any](message string, data T) Result[T] {
	return Result[T]{Status: true, Message: message, Data: data}
}

func fail[T any](message string) Result[T] {
	return Result[T]{Status: false, Message: message}
}
