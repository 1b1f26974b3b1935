package middleware

import (
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/labstack/echo/v4"
)

// HeaderAPILanguage selects the language of response messages
const HeaderAPILanguage = "Api-Language"

// Language stores the negotiated message language in the request context
func Language(translator *i18n.Translator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := translator.Negotiate(c.Request().Header.Get(HeaderAPILanguage))
			ctx := i18n.WithLanguage(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("Content-Language", lang)
			return next(c)
		}
	}
}
