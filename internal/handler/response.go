package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/dto"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Response is the envelope of every single-value response
type Response struct {
	Status   bool   `json:"status"`
	Message  string `json:"message"`
	Response any    `json:"response"`
}

// PageResponse is the envelope of paginated lists
type PageResponse struct {
	Status       bool   `json:"status"`
	Message      string `json:"message"`
	Response     any    `json:"response"`
	TotalRecords int64  `json:"totalRecords"`
}

// respond writes a service result: 200 on success, 400 for any expected failure.
// Validation failures list the offending fields as the response.
func respond[T any](c echo.Context, res service.Result[T]) error {
	if !res.Status {
		if len(res.Errors) > 0 {
			return badRequest(c, res.Message, res.Errors)
		}
		return badRequest(c, res.Message, nil)
	}
	return c.JSON(http.StatusOK, Response{Status: true, Message: res.Message, Response: res.Data})
}

func respondPage[T any](c echo.Context, page service.Page[T]) error {
	if !page.Status {
		return badRequest(c, page.Message, nil)
	}
	return c.JSON(http.StatusOK, PageResponse{
		Status:       true,
		Message:      page.Message,
		Response:     page.Data,
		TotalRecords: page.TotalRecords,
	})
}

func badRequest(c echo.Context, message string, errs []dto.FieldError) error {
	res := Response{Status: false, Message: message}
	if errs != nil {
		res.Response = errs
	}
	return c.JSON(http.StatusBadRequest, res)
}

// NewServiceUnavailableError creates a service unavailable response
func NewServiceUnavailableError(c echo.Context, message string) error {
	return c.JSON(http.StatusServiceUnavailable, Response{Status: false, Message: message})
}

// NewHTTPErrorHandler returns the global echo error handler. Unexpected faults
// answer 500 and carry the error trace unless production is set.
func NewHTTPErrorHandler(translator *i18n.Translator, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
			message := http.StatusText(httpErr.Code)
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
			writeError(c, httpErr.Code, Response{Status: false, Message: message})
			return
		}

		req := c.Request()
		log.Error().
			Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("Unhandled error")

		res := Response{Status: false, Message: translator.T(req.Context(), i18n.MsgInternalError, nil)}
		if !production {
			res.Response = err.Error()
		}
		writeError(c, http.StatusInternalServerError, res)
	}
}

func writeError(c echo.Context, code int, res Response) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, res)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}
