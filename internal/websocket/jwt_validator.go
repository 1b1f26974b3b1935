package websocket

import (
	"context"
	"errors"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/ledger/ledger-backend/internal/auth"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// TokenValidator checks the token a browser passes on the upgrade request
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (subject string, err error)
}

// JWTValidator validates HS256 bearer tokens for WebSocket connections
type JWTValidator struct {
	validator *validator.Validator
}

// NewJWTValidator creates a JWTValidator for the given settings
func NewJWTValidator(settings auth.Settings) (*JWTValidator, error) {
	v, err := auth.NewValidator(settings)
	if err != nil {
		return nil, err
	}
	return &JWTValidator{validator: v}, nil
}

// ValidateToken validates a JWT token and returns its subject
func (v *JWTValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	subject, err := auth.Subject(ctx, v.validator, token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return subject, nil
}
