package service

import (
	"context"
	"errors"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
)

// ruleMessage localizes an expected failure. The bool is false when err is a fault.
func ruleMessage(ctx context.Context, tr *i18n.Translator, err error) (string, bool) {
	var rule *domain.RuleError
	if !errors.As(err, &rule) {
		return "", false
	}

	values := i18n.Values{
		"entity":  rule.Entity,
		"id":      rule.ID,
		"field":   rule.Field,
		"value":   rule.Value,
		"related": rule.Related,
	}

	switch {
	case errors.Is(rule.Err, domain.ErrNotFound):
		return tr.T(ctx, i18n.MsgNotFound, values), true
	case errors.Is(rule.Err, domain.ErrAlreadyExists):
		return tr.T(ctx, i18n.MsgAlreadyExists, values), true
	case errors.Is(rule.Err, domain.ErrDuplicateField):
		return tr.T(ctx, i18n.MsgDuplicateField, values), true
	case errors.Is(rule.Err, domain.ErrParentNotFound):
		return tr.T(ctx, i18n.MsgParentNotFound, values), true
	case errors.Is(rule.Err, domain.ErrHasChildren):
		return tr.T(ctx, i18n.MsgHasChildren, values), true
	default:
		return rule.Error(), true
	}
}
