package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dafibh/ledger/ledger-backend/internal/dto"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/dafibh/ledger/ledger-backend/internal/middleware"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// EntityService is the service surface a CRUDHandler exposes over HTTP
type EntityService[D any] interface {
	Entity() string
	GetAll(ctx context.Context, pageSize, offsetSize *int) (service.Page[D], error)
	GetByID(ctx context.Context, id int32) (service.Result[D], error)
	Create(ctx context.Context, d D) (service.Result[D], error)
	Update(ctx context.Context, d D) (service.Result[D], error)
	Delete(ctx context.Context, id int32) (service.Result[int32], error)
	Search(ctx context.Context, text string) (service.Result[[]D], error)
	Find(ctx context.Context, partial D) (service.Result[[]D], error)
}

// CRUDHandler serves the resource group of one entity
type CRUDHandler[D any] struct {
	service    EntityService[D]
	translator *i18n.Translator
}

// NewCRUDHandler creates a CRUDHandler for svc
func NewCRUDHandler[D any](svc EntityService[D], translator *i18n.Translator) *CRUDHandler[D] {
	return &CRUDHandler[D]{service: svc, translator: translator}
}

// Entity returns the resource name the handler is mounted under
func (h *CRUDHandler[D]) Entity() string {
	return h.service.Entity()
}

// Register mounts the handler's routes on g. guard, when not nil, protects the writes.
func (h *CRUDHandler[D]) Register(g *echo.Group, guard echo.MiddlewareFunc) {
	var writes []echo.MiddlewareFunc
	if guard != nil {
		writes = append(writes, guard)
	}

	g.GET("", h.GetAll)
	g.GET("/Search", h.Search)
	g.GET("/:id", h.GetByID)
	g.POST("", h.Create, writes...)
	g.POST("/Find", h.Find)
	g.PUT("", h.Update, writes...)
	g.DELETE("/:id", h.Delete, writes...)
}

// GetAll godoc
// @Summary List records
// @Description Returns one page of records ordered by id
// @Tags entities
// @Produce json
// @Param entity path string true "Entity name" Enums(Bank, TransactionType, TransactionCategory, BudgetType, Budget, Transaction)
// @Param pageSize query int false "Page size"
// @Param offsetSize query int false "Rows to skip"
// @Param Api-Language header string false "Message language"
// @Success 200 {object} PageResponse
// @Failure 400 {object} Response
// @Router /{entity} [get]
func (h *CRUDHandler[D]) GetAll(c echo.Context) error {
	pageSize, errs := queryInt(c, "pageSize", nil)
	offsetSize, errs := queryInt(c, "offsetSize", errs)
	if len(errs) > 0 {
		return badRequest(c, h.message(c, i18n.MsgValidationFailed, nil), errs)
	}

	page, err := h.service.GetAll(c.Request().Context(), pageSize, offsetSize)
	if err != nil {
		return h.fault("list", err)
	}
	return respondPage(c, page)
}

// GetByID godoc
// @Summary Get a record
// @Tags entities
// @Produce json
// @Param entity path string true "Entity name"
// @Param id path int true "Record id"
// @Param Api-Language header string false "Message language"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /{entity}/{id} [get]
func (h *CRUDHandler[D]) GetByID(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidID, nil), nil)
	}

	res, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.fault("get", err)
	}
	return respond(c, res)
}

// Create godoc
// @Summary Create a record
// @Description An id naming an existing record updates it unless creation is configured to reject existing ids
// @Tags entities
// @Accept json
// @Produce json
// @Param entity path string true "Entity name"
// @Param Api-Language header string false "Message language"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Security BearerAuth
// @Router /{entity} [post]
func (h *CRUDHandler[D]) Create(c echo.Context) error {
	d, ok := h.bind(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidBody, nil), nil)
	}

	res, err := h.service.Create(c.Request().Context(), d)
	if err != nil {
		return h.fault("create", err)
	}
	if res.Status {
		log.Info().Str("entity", h.Entity()).Str("subject", subject(c)).Msg("Record saved")
	}
	return respond(c, res)
}

// Update godoc
// @Summary Update a record
// @Tags entities
// @Accept json
// @Produce json
// @Param entity path string true "Entity name"
// @Param Api-Language header string false "Message language"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Security BearerAuth
// @Router /{entity} [put]
func (h *CRUDHandler[D]) Update(c echo.Context) error {
	d, ok := h.bind(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidBody, nil), nil)
	}

	res, err := h.service.Update(c.Request().Context(), d)
	if err != nil {
		return h.fault("update", err)
	}
	if res.Status {
		log.Info().Str("entity", h.Entity()).Str("subject", subject(c)).Msg("Record updated")
	}
	return respond(c, res)
}

// Delete godoc
// @Summary Delete a record
// @Description Fails while other records still reference it
// @Tags entities
// @Produce json
// @Param entity path string true "Entity name"
// @Param id path int true "Record id"
// @Param Api-Language header string false "Message language"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Security BearerAuth
// @Router /{entity}/{id} [delete]
func (h *CRUDHandler[D]) Delete(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidID, nil), nil)
	}

	res, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		return h.fault("delete", err)
	}
	if res.Status {
		log.Info().Str("entity", h.Entity()).Int32("id", id).Str("subject", subject(c)).Msg("Record deleted")
	}
	return respond(c, res)
}

// Search godoc
// @Summary Search records
// @Description Case-insensitive substring match over the text columns
// @Tags entities
// @Produce json
// @Param entity path string true "Entity name"
// @Param search query string true "Text to look for"
// @Param Api-Language header string false "Message language"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /{entity}/Search [get]
func (h *CRUDHandler[D]) Search(c echo.Context) error {
	res, err := h.service.Search(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return h.fault("search", err)
	}
	return respond(c, res)
}

// Find godoc
// @Summary Filter records
// @Description Returns records equal to every supplied field; an empty body matches nothing
// @Tags entities
// @Accept json
// @Produce json
// @Param entity path string true "Entity name"
// @Param Api-Language header string false "Message language"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /{entity}/Find [post]
func (h *CRUDHandler[D]) Find(c echo.Context) error {
	d, ok := h.bind(c)
	if !ok {
		return badRequest(c, h.message(c, i18n.MsgInvalidBody, nil), nil)
	}

	res, err := h.service.Find(c.Request().Context(), d)
	if err != nil {
		return h.fault("find", err)
	}
	return respond(c, res)
}

func (h *CRUDHandler[D]) bind(c echo.Context) (D, bool) {
	var d D
	if err := c.Bind(&d); err != nil {
		log.Debug().Err(err).Str("entity", h.Entity()).Msg("Invalid request body")
		return d, false
	}
	return d, true
}

// idParam parses the :id path parameter; only positive ids are accepted
func idParam(c echo.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func (h *CRUDHandler[D]) message(c echo.Context, key string, values i18n.Values) string {
	return h.translator.T(c.Request().Context(), key, values)
}

// fault wraps an unexpected error for the global error handler
func (h *CRUDHandler[D]) fault(op string, err error) error {
	return fmt.Errorf("%s %s: %w", op, h.Entity(), err)
}

func subject(c echo.Context) string {
	return middleware.GetSubject(c)
}

// queryInt parses an optional integer query parameter, appending to errs when malformed
func queryInt(c echo.Context, name string, errs []dto.FieldError) (*int, []dto.FieldError) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, errs
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, append(errs, dto.FieldError{Field: name, Message: name + " must be an integer"})
	}
	return &v, errs
}
