package middleware

import (
	"github.com/labstack/echo/v4"
)

// envelope mirrors the handler response shape so rejected requests look the
// same as any other failed operation
type envelope struct {
	Status   bool   `json:"status"`
	Message  string `json:"message"`
	Response any    `json:"response"`
}

func reject(c echo.Context, code int, message string) error {
	return c.JSON(code, envelope{Status: false, Message: message})
}
