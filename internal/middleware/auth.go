package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/ledger/ledger-backend/internal/auth"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SubjectKey is the context key for the token subject
	SubjectKey contextKey = "subject"
)

// AuthMiddleware validates HS256 bearer tokens
type AuthMiddleware struct {
	validator  *validator.Validator
	translator *i18n.Translator
}

// NewAuthMiddleware creates an AuthMiddleware for the given token settings
func NewAuthMiddleware(settings auth.Settings, translator *i18n.Translator) (*AuthMiddleware, error) {
	v, err := auth.NewValidator(settings)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{validator: v, translator: translator}, nil
}

// Authenticate returns an Echo middleware that rejects requests without a valid bearer token
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			unauthorized := m.translator.T(ctx, i18n.MsgUnauthorized, nil)

			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return reject(c, http.StatusUnauthorized, unauthorized)
			}

			subject, err := auth.Subject(ctx, m.validator, token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("Token validation failed")
				return reject(c, http.StatusUnauthorized, unauthorized)
			}

			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, SubjectKey, subject)))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetSubject extracts the authenticated subject from the context
func GetSubject(c echo.Context) string {
	if subject, ok := c.Request().Context().Value(SubjectKey).(string); ok {
		return subject
	}
	return ""
}
