package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// LogoHandler handles bank logo uploads
type LogoHandler struct {
	logoService *service.LogoService
	translator  *i18n.Translator
}

// NewLogoHandler creates a new LogoHandler. A nil service answers 503.
func NewLogoHandler(logoService *service.LogoService, translator *i18n.Translator) *LogoHandler {
	return &LogoHandler{logoService: logoService, translator: translator}
}

// LogoResponse represents a stored logo in API responses
type LogoResponse struct {
	BankID    int32  `json:"bankId"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// Register mounts the logo routes on the Bank group
func (h *LogoHandler) Register(g *echo.Group, guard echo.MiddlewareFunc) {
	var writes []echo.MiddlewareFunc
	if guard != nil {
		writes = append(writes, guard)
	}
	g.PUT("/:id/Logo", h.Upload, writes...)
	g.GET("/:id/Logo", h.Get)
	g.DELETE("/:id/Logo", h.Delete, writes...)
}

// Upload godoc
// @Summary Upload a bank logo
// @Description Accepts PNG, JPEG, GIF or BMP up to 2MB; the image is stored as a 256px wide PNG
// @Tags banks
// @Accept mpfd
// @Produce json
// @Param id path int true "Bank id"
// @Param file formData file true "Logo image"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 503 {object} Response
// @Security BearerAuth
// @Router /Bank/{id}/Logo [put]
func (h *LogoHandler) Upload(c echo.Context) error {
	if !h.logoService.IsEnabled() {
		return NewServiceUnavailableError(c, h.message(c, i18n.MsgStorageUnavailable, nil))
	}
	bankID, ok := idParam(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidID, nil), nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, h.message(c, i18n.MsgLogoInvalid, i18n.Values{"reason": "file is required"}), nil)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	// One byte past the limit is enough to reject oversized files
	data, err := io.ReadAll(io.LimitReader(src, service.MaxLogoSize+1))
	if err != nil {
		return err
	}

	info, err := h.logoService.Upload(c.Request().Context(), bankID, data, file.Filename)
	if err != nil {
		return h.failure(c, bankID, err)
	}

	log.Info().Int32("bank_id", bankID).Str("path", info.Path).Msg("Bank logo uploaded")
	return c.JSON(http.StatusOK, Response{
		Status:   true,
		Message:  h.message(c, i18n.MsgLogoUploaded, i18n.Values{"id": bankID}),
		Response: toLogoResponse(info),
	})
}

// Get godoc
// @Summary Get a bank logo URL
// @Tags banks
// @Produce json
// @Param id path int true "Bank id"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 503 {object} Response
// @Router /Bank/{id}/Logo [get]
func (h *LogoHandler) Get(c echo.Context) error {
	if !h.logoService.IsEnabled() {
		return NewServiceUnavailableError(c, h.message(c, i18n.MsgStorageUnavailable, nil))
	}
	bankID, ok := idParam(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidID, nil), nil)
	}

	info, err := h.logoService.Get(c.Request().Context(), bankID)
	if err != nil {
		return h.failure(c, bankID, err)
	}
	return c.JSON(http.StatusOK, Response{
		Status:   true,
		Message:  h.message(c, i18n.MsgSuccess, nil),
		Response: toLogoResponse(info),
	})
}

// Delete godoc
// @Summary Delete a bank logo
// @Tags banks
// @Produce json
// @Param id path int true "Bank id"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 503 {object} Response
// @Security BearerAuth
// @Router /Bank/{id}/Logo [delete]
func (h *LogoHandler) Delete(c echo.Context) error {
	if !h.logoService.IsEnabled() {
		return NewServiceUnavailableError(c, h.message(c, i18n.MsgStorageUnavailable, nil))
	}
	bankID, ok := idParam(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidID, nil), nil)
	}

	if err := h.logoService.Delete(c.Request().Context(), bankID); err != nil {
		return h.failure(c, bankID, err)
	}

	log.Info().Int32("bank_id", bankID).Msg("Bank logo deleted")
	return c.JSON(http.StatusOK, Response{
		Status:   true,
		Message:  h.message(c, i18n.MsgLogoDeleted, i18n.Values{"id": bankID}),
		Response: bankID,
	})
}

// failure maps expected logo errors to 400 and hands everything else to the error handler
func (h *LogoHandler) failure(c echo.Context, bankID int32, err error) error {
	switch {
	case service.IsLogoValidationError(err):
		return badRequest(c, h.message(c, i18n.MsgLogoInvalid, i18n.Values{"reason": err.Error()}), nil)
	case errors.Is(err, service.ErrLogoNotFound):
		return badRequest(c, h.message(c, i18n.MsgLogoNotFound, i18n.Values{"id": bankID}), nil)
	case errors.Is(err, domain.ErrNotFound):
		return badRequest(c, h.message(c, i18n.MsgNotFound, i18n.Values{"entity": "Bank", "id": bankID}), nil)
	default:
		log.Error().Err(err).Int32("bank_id", bankID).Msg("Logo operation failed")
		return err
	}
}

func (h *LogoHandler) message(c echo.Context, key string, values i18n.Values) string {
	return h.translator.T(c.Request().Context(), key, values)
}

func toLogoResponse(info *service.LogoInfo) LogoResponse {
	return LogoResponse{
		BankID:    info.BankID,
		URL:       info.URL,
		ExpiresAt: info.ExpiresAt.Format(time.RFC3339),
	}
}
