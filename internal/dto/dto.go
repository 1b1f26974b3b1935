// Package dto holds the request and response shapes of every entity
package dto

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
)

// FieldError describes one invalid field of a request body
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DTO is implemented by every entity DTO
type DTO[E domain.Entity] interface {
	// Validate returns the invalid fields, empty when the DTO can be persisted
	Validate() []FieldError
	ToEntity() E
}

// Audit carries the identity and audit columns
type Audit struct {
	ID       int32      `json:"id"`
	Created  time.Time  `json:"created"`
	Modified *time.Time `json:"modified,omitempty"`
}

func auditFrom(m domain.Model) Audit {
	return Audit{ID: m.ID, Created: m.Created, Modified: m.Modified}
}

func (a Audit) model() domain.Model {
	return domain.Model{ID: a.ID, Created: a.Created, Modified: a.Modified}
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type checker struct {
	errs []FieldError
}

func (c *checker) add(field, message string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: message})
}

func (c *checker) required(field, value string, max int) {
	switch {
	case strings.TrimSpace(value) == "":
		c.add(field, field+" is required")
	case len(value) > max:
		c.add(field, field+" must be at most "+strconv.Itoa(max)+" characters")
	}
}

func (c *checker) optional(field, value string, max int) {
	if len(value) > max {
		c.add(field, field+" must be at most "+strconv.Itoa(max)+" characters")
	}
}

func (c *checker) positiveID(field string, id int32) {
	if id <= 0 {
		c.add(field, field+" must be a positive id")
	}
}

func (c *checker) result() []FieldError {
	if c.errs == nil {
		return []FieldError{}
	}
	return c.errs
}
