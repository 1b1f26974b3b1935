package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/cache"
	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/dto"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/dafibh/ledger/ledger-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// CRUDConfig holds the settings shared by every CRUD service
type CRUDConfig struct {
	CacheTTL        time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultCRUDConfig returns sensible defaults
func DefaultCRUDConfig() CRUDConfig {
	return CRUDConfig{
		CacheTTL:        cache.DefaultTTL,
		DefaultPageSize: domain.DefaultPageSize,
		MaxPageSize:     domain.MaxPageSize,
	}
}

// CRUDService maps an entity repository onto DTOs, localized results and a
// read-through cache. Successful writes are published to websocket clients.
type CRUDService[E domain.Entity, D dto.DTO[E]] struct {
	repo       domain.Repository[E]
	toDTO      func(E) D
	cache      cache.Cache
	translator *i18n.Translator
	publisher  websocket.EventPublisher
	config     CRUDConfig
	logger     zerolog.Logger
	entity     string

	afterDelete []func(ctx context.Context, id int32)
}

// NewCRUDService creates a CRUDService. toDTO maps stored entities to their API shape.
func NewCRUDService[E domain.Entity, D dto.DTO[E]](
	repo domain.Repository[E],
	toDTO func(E) D,
	c cache.Cache,
	translator *i18n.Translator,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config CRUDConfig,
) *CRUDService[E, D] {
	defaults := DefaultCRUDConfig()
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = defaults.DefaultPageSize
	}
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = defaults.MaxPageSize
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	entity := repo.Schema().Name
	return &CRUDService[E, D]{
		repo:       repo,
		toDTO:      toDTO,
		cache:      c,
		translator: translator,
		publisher:  publisher,
		config:     config,
		logger:     logger.With().Str("component", "crud_service").Str("entity", entity).Logger(),
		entity:     entity,
	}
}

// Entity returns the resource name served by this service
func (s *CRUDService[E, D]) Entity() string {
	return s.entity
}

// OnDelete registers fn to run after a row was deleted successfully
func (s *CRUDService[E, D]) OnDelete(fn func(ctx context.Context, id int32)) {
	s.afterDelete = append(s.afterDelete, fn)
}

// Count returns the number of stored rows
func (s *CRUDService[E, D]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// GetAll returns one page of rows. A nil pageSize uses the configured default
// and the size never exceeds the maximum page size or the stored row count.
func (s *CRUDService[E, D]) GetAll(ctx context.Context, pageSize, offsetSize *int) (Page[D], error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return Page[D]{}, err
	}

	size, offset := domain.ValidatePagination(pageSize, offsetSize, total, s.config.DefaultPageSize, s.config.MaxPageSize)
	items := make([]D, 0, size)
	if size > 0 {
		rows, err := s.repo.GetPage(ctx, size, offset)
		if err != nil {
			return Page[D]{}, err
		}
		for _, row := range rows {
			items = append(items, s.toDTO(row))
		}
	}

	message := s.translator.T(ctx, i18n.MsgListed, i18n.Values{"count": len(items), "entity": s.entity})
	return Page[D]{Result: ok(message, items), TotalRecords: total}, nil
}

// GetByID consults the cache first and falls back to the repository on a miss,
// caching what it read.
func (s *CRUDService[E, D]) GetByID(ctx context.Context, id int32) (Result[D], error) {
	if id <= 0 {
		return fail[D](s.translator.T(ctx, i18n.MsgInvalidID, nil)), nil
	}

	key := cache.Key(s.entity, id)
	cached, found, err := cache.Get[D](ctx, s.cache, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	if found {
		return ok(s.translator.T(ctx, i18n.MsgFound, i18n.Values{"entity": s.entity}), cached), nil
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.failure(ctx, err)
	}

	d := s.toDTO(row)
	s.store(ctx, key, d)
	return ok(s.translator.T(ctx, i18n.MsgFound, i18n.Values{"entity": s.entity}), d), nil
}

// Create validates and stores d. An id naming an existing row follows the repository's create policy.
func (s *CRUDService[E, D]) Create(ctx context.Context, d D) (Result[D], error) {
	if res, invalid := s.validate(ctx, d); invalid {
		return res, nil
	}

	row, err := s.repo.Create(ctx, d.ToEntity())
	if err != nil {
		return s.failure(ctx, err)
	}

	saved := s.toDTO(row)
	s.store(ctx, cache.Key(s.entity, row.Base().ID), saved)

	// An existing id turns the create into an update
	if row.Base().Modified != nil {
		s.publisher.Publish(websocket.Updated(s.entity, saved))
		return ok(s.translator.T(ctx, i18n.MsgUpdated, i18n.Values{"entity": s.entity}), saved), nil
	}
	s.publisher.Publish(websocket.Created(s.entity, saved))
	return ok(s.translator.T(ctx, i18n.MsgCreated, i18n.Values{"entity": s.entity}), saved), nil
}

// Update validates d and overwrites the row it identifies
func (s *CRUDService[E, D]) Update(ctx context.Context, d D) (Result[D], error) {
	entity := d.ToEntity()
	if entity.Base().ID <= 0 {
		return fail[D](s.translator.T(ctx, i18n.MsgInvalidID, nil)), nil
	}
	if res, invalid := s.validate(ctx, d); invalid {
		return res, nil
	}

	row, err := s.repo.Update(ctx, entity)
	if err != nil {
		return s.failure(ctx, err)
	}

	saved := s.toDTO(row)
	s.store(ctx, cache.Key(s.entity, row.Base().ID), saved)
	s.publisher.Publish(websocket.Updated(s.entity, saved))
	return ok(s.translator.T(ctx, i18n.MsgUpdated, i18n.Values{"entity": s.entity}), saved), nil
}

// Delete removes the row and its cache entry
func (s *CRUDService[E, D]) Delete(ctx context.Context, id int32) (Result[int32], error) {
	if id <= 0 {
		return fail[int32](s.translator.T(ctx, i18n.MsgInvalidID, nil)), nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if message, isRule := ruleMessage(ctx, s.translator, err); isRule {
			return fail[int32](message), nil
		}
		return Result[int32]{}, err
	}

	key := cache.Key(s.entity, id)
	if err := s.cache.Remove(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache invalidation failed")
	}
	for _, fn := range s.afterDelete {
		fn(ctx, id)
	}

	s.publisher.Publish(websocket.Deleted(s.entity, id))
	return ok(s.translator.T(ctx, i18n.MsgDeleted, i18n.Values{"entity": s.entity}), id), nil
}

// Search returns rows whose text columns contain text
func (s *CRUDService[E, D]) Search(ctx context.Context, text string) (Result[[]D], error) {
	if strings.TrimSpace(text) == "" {
		return fail[[]D](s.translator.T(ctx, i18n.MsgInvalidSearch, nil)), nil
	}

	rows, err := s.repo.Search(ctx, text)
	if err != nil {
		return Result[[]D]{}, err
	}
	return s.list(ctx, rows), nil
}

// Find returns rows matching every non-default field of partial
func (s *CRUDService[E, D]) Find(ctx context.Context, partial D) (Result[[]D], error) {
	rows, err := s.repo.GetByAttributes(ctx, partial.ToEntity())
	if err != nil {
		return Result[[]D]{}, err
	}
	return s.list(ctx, rows), nil
}

func (s *CRUDService[E, D]) list(ctx context.Context, rows []E) Result[[]D] {
	items := make([]D, len(rows))
	for i, row := range rows {
		items[i] = s.toDTO(row)
	}
	return ok(s.translator.T(ctx, i18n.MsgListed, i18n.Values{"count": len(items), "entity": s.entity}), items)
}

func (s *CRUDService[E, D]) validate(ctx context.Context, d D) (Result[D], bool) {
	errs := d.Validate()
	if len(errs) == 0 {
		return Result[D]{}, false
	}
	res := fail[D](s.translator.T(ctx, i18n.MsgValidationFailed, nil))
	res.Errors = errs
	return res, true
}

// failure turns a rule error into a status:false result and passes faults through
func (s *CRUDService[E, D]) failure(ctx context.Context, err error) (Result[D], error) {
	if message, isRule := ruleMessage(ctx, s.translator, err); isRule {
		return fail[D](message), nil
	}
	return Result[D]{}, err
}

// store writes through to the cache; the cache is a mirror so failures are only logged
func (s *CRUDService[E, D]) store(ctx context.Context, key string, d D) {
	if _, err := s.cache.Set(ctx, key, d, s.config.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
