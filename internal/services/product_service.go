package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dafailyasa/salt-be-test/internal/models"
	"github.com/dafailyasa/salt-be-test/internal/repositories"
	"github.com/dafailyasa/salt-be-test/internal/validation"
	"github.com/dafailyasa/salt-be-test/pkg/cache"
	"github.com/dafailyasa/salt-be-test/pkg/logger"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a product stays cached after a read miss.
const DefaultCacheTTL = 300 * time.Second

// Routing keys of the product lifecycle events.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher publishes a message under a routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// ProductEvent is the body of a product lifecycle event.
type ProductEvent struct {
	Event      string          `json:"event"`
	ProductID  string          `json:"productId"`
	Product    *models.Product `json:"product,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Option configures a ProductService.
type Option func(*ProductService)

// WithCacheTTL overrides DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *ProductService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithEventPublisher enables lifecycle events after successful writes.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *ProductService) { s.events = p }
}

// WithValidator replaces the default payload validator.
func WithValidator(v *validation.Validator) Option {
	return func(s *ProductService) { s.validate = v }
}

// ProductService implements cache-aside CRUD over a ProductRepository.
//
// Reads consult the cache first and fill it on a miss. Writes go to the
// repository first; the cache entry is invalidated only after the write is
// confirmed. Cache failures are logged and never returned to the caller.
//
// A read that started before an invalidation can still fill the cache with
// the old record afterwards. That entry lives until the TTL expires.
type ProductService struct {
	repo     repositories.ProductRepository
	cache    cache.Cache
	log      logger.Logger
	validate *validation.Validator
	events   EventPublisher
	ttl      time.Duration
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, c cache.Cache, log logger.Logger, opts ...Option) *ProductService {
	s := &ProductService{
		repo:     repo,
		cache:    c,
		log:      log,
		validate: validation.New(),
		ttl:      DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input and stores a new product. The cache is not
// populated; the first read is always a miss.
func (s *ProductService) Create(ctx context.Context, in *models.ProductInput) (*models.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	product := in.ToProduct()
	product.Slug = models.DeriveSlug(product.Name)

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, persistenceError("create", err)
	}

	s.publish(ctx, EventProductCreated, created.ID, created)
	return created, nil
}

// FindByID returns the product and whether it was served from the cache.
func (s *ProductService) FindByID(ctx context.Context, id string) (*models.Product, bool, error) {
	if !models.IsValidID(id) {
		return nil, false, ErrInvalidID
	}

	var cached models.Product
	found, err := s.cache.Get(ctx, id, &cached)
	if err != nil {
		s.log.Warn("cache get failed, reading from store", zap.String("id", id), zap.Error(err))
	} else if found {
		return &cached, true, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, persistenceError("find", err)
	}

	if err := s.cache.Set(ctx, id, product, s.ttl); err != nil {
		s.log.Warn("cache set failed", zap.String("id", id), zap.Error(err))
	}
	return product, false, nil
}

// Update applies a partial update and invalidates the cached entry.
func (s *ProductService) Update(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	if !models.IsValidID(id) {
		return nil, ErrInvalidID
	}
	if err := s.validate.Struct(u); err != nil {
		return nil, err
	}

	// Slug is derived, never taken from the caller.
	upd := *u
	upd.Slug = nil
	if upd.Name != nil {
		slug := models.DeriveSlug(*upd.Name)
		upd.Slug = &slug
	}

	updated, err := s.repo.UpdateByID(ctx, id, &upd)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("update", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, EventProductUpdated, id, updated)
	return updated, nil
}

// Delete removes the product and invalidates the cached entry.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if !models.IsValidID(id) {
		return ErrInvalidID
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return persistenceError("delete", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.invalidate(ctx, id)
	s.publish(ctx, EventProductDeleted, id, nil)
	return nil
}

// Health pings the store and the cache. A nil entry means healthy.
func (s *ProductService) Health(ctx context.Context) (storeErr, cacheErr error) {
	return s.repo.Ping(ctx), s.cache.Ping(ctx)
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}

func (s *ProductService) publish(ctx context.Context, event, id string, p *models.Product) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(ProductEvent{
		Event:      event,
		ProductID:  id,
		Product:    p,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("failed to marshal product event", zap.String("event", event), zap.Error(err))
		return
	}

	if err := s.events.Publish(ctx, event, body); err != nil {
		s.log.Warn("failed to publish product event", zap.String("event", event), zap.String("id", id), zap.Error(err))
		return
	}
	s.log.Debug("published product event", zap.String("event", event), zap.String("id", id))
}
