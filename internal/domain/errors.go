package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrDuplicateField = errors.New("duplicate field")
	ErrParentNotFound = errors.New("referenced resource not found")
	ErrHasChildren    = errors.New("resource has child dependencies")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
)

// RuleError is an expected failure raised by a repository rule (uniqueness,
// foreign keys, existence). It unwraps to one of the sentinel errors above.
type RuleError struct {
	Err    error
	Entity string
	ID     int32
	// Field is the offending column for duplicate/parent failures
	Field string
	Value any
	// Related names the other entity for parent/child failures
	Related string
}

func (e *RuleError) Error() string {
	switch {
	case errors.Is(e.Err, ErrDuplicateField):
		return fmt.Sprintf("%s: %s %q already in use", e.Entity, e.Field, fmt.Sprint(e.Value))
	case errors.Is(e.Err, ErrParentNotFound):
		return fmt.Sprintf("%s: %s %v not found", e.Entity, e.Related, e.Value)
	case errors.Is(e.Err, ErrHasChildren):
		return fmt.Sprintf("%s %d is referenced by %s", e.Entity, e.ID, e.Related)
	default:
		return fmt.Sprintf("%s %d: %v", e.Entity, e.ID, e.Err)
	}
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// IsRuleError reports whether err is an expected, data-level failure
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

func NotFound(entity string, id int32) error {
	return &RuleError{Err: ErrNotFound, Entity: entity, ID: id}
}

func AlreadyExists(entity string, id int32) error {
	return &RuleError{Err: ErrAlreadyExists, Entity: entity, ID: id}
}

func DuplicateField(entity, field string, value any) error {
	return &RuleError{Err: ErrDuplicateField, Entity: entity, Field: field, Value: value}
}

func ParentNotFound(entity string, parent Relation, value any) error {
	return &RuleError{Err: ErrParentNotFound, Entity: entity, Field: parent.Column, Value: value, Related: parent.Entity}
}

func HasChildren(entity string, id int32, child Relation) error {
	return &RuleError{Err: ErrHasChildren, Entity: entity, ID: id, Related: child.Entity}
}
