package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dafailyasa/salt-be-test/internal/models"
	"github.com/dafailyasa/salt-be-test/internal/repositories"
	"github.com/dafailyasa/salt-be-test/internal/services"
	"github.com/dafailyasa/salt-be-test/internal/validation"
	"github.com/dafailyasa/salt-be-test/pkg/cache"
	"github.com/dafailyasa/salt-be-test/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateByID(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockCache is a mock implementation of cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	return m.Called(ctx, routingKey, body).Error(0)
}

func ptr[T any](v T) *T { return &v }

var ctxAny = mock.Anything

const productID = "65a1b2c3d4e5f6a7b8c9d0e1"

func validInput(name string) *models.ProductInput {
	return &models.ProductInput{
		Name:      ptr(name),
		ShortDesc: ptr("cotton tee"),
		Stock:     ptr(1),
		Images:    []string{"https://cdn.example.com/bulls.png"},
		Price:     ptr(10000.0),
		Dimension: &models.DimensionInput{},
	}
}

func newMocked(opts ...services.Option) (*services.ProductService, *MockProductRepository, *MockCache) {
	repo := new(MockProductRepository)
	c := new(MockCache)
	return services.NewProductService(repo, c, logger.NewNop(), opts...), repo, c
}

func TestProductService_Create(t *testing.T) {
	service, repo, c := newMocked()

	repo.On("Create", ctxAny, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "t-shirt-bulls" && p.Slug == "t-shirt-bulls" &&
			p.Status == models.StatusDraft && p.Discount == 0 && p.ID == ""
	})).Return(&models.Product{ID: productID, Name: "t-shirt-bulls", Slug: "t-shirt-bulls"}, nil).Once()

	created, err := service.Create(context.Background(), validInput("t-shirt-bulls"))

	require.NoError(t, err)
	assert.Equal(t, productID, created.ID)
	assert.Equal(t, "t-shirt-bulls", created.Slug)
	repo.AssertExpectations(t)
	// creation never warms the cache
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_Create_ValidationError(t *testing.T) {
	service, repo, _ := newMocked()

	in := validInput("x")
	in.Images = nil
	_, err := service.Create(context.Background(), in)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "images", verr.Fields[0].Field)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_Create_PersistenceError(t *testing.T) {
	service, repo, _ := newMocked()
	dbErr := errors.New("connection refused")
	repo.On("Create", ctxAny, mock.Anything).Return(nil, dbErr).Once()

	_, err := service.Create(context.Background(), validInput("x"))

	var perr *services.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)
	assert.False(t, perr.ClientFault)
	assert.ErrorIs(t, err, dbErr)
}

func TestProductService_Create_ConstraintViolationIsClientFault(t *testing.T) {
	service, repo, _ := newMocked()
	repo.On("Create", ctxAny, mock.Anything).
		Return(nil, errors.Join(repositories.ErrConstraintViolation, errors.New("E11000"))).Once()

	_, err := service.Create(context.Background(), validInput("x"))

	var perr *services.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.ClientFault)
}

func TestProductService_FindByID_InvalidID(t *testing.T) {
	service, repo, c := newMocked()

	for _, id := range []string{"", "123", "not-a-mongo-object-id", "550e8400-e29b-41d4-a716-446655440000"} {
		_, _, err := service.FindByID(context.Background(), id)
		assert.ErrorIs(t, err, services.ErrInvalidID, id)
	}

	// shape is checked before any I/O
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_FindByID_CacheHit(t *testing.T) {
	service, repo, c := newMocked()

	c.On("Get", ctxAny, productID, mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Product)
			*dest = models.Product{ID: productID, Name: "cached"}
		}).
		Return(true, nil).Once()

	product, fromCache, err := service.FindByID(context.Background(), productID)

	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, "cached", product.Name)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestProductService_FindByID_MissFillsCache(t *testing.T) {
	service, repo, c := newMocked()
	stored := &models.Product{ID: productID, Name: "stored"}

	c.On("Get", ctxAny, productID, mock.Anything).Return(false, nil).Once()
	repo.On("FindByID", ctxAny, productID).Return(stored, nil).Once()
	c.On("Set", ctxAny, productID, stored, services.DefaultCacheTTL).Return(nil).Once()

	product, fromCache, err := service.FindByID(context.Background(), productID)

	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, stored, product)
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestProductService_FindByID_CustomTTL(t *testing.T) {
	service, repo, c := newMocked(services.WithCacheTTL(time.Minute))
	stored := &models.Product{ID: productID}

	c.On("Get", ctxAny, productID, mock.Anything).Return(false, nil).Once()
	repo.On("FindByID", ctxAny, productID).Return(stored, nil).Once()
	c.On("Set", ctxAny, productID, stored, time.Minute).Return(nil).Once()

	_, _, err := service.FindByID(context.Background(), productID)
	require.NoError(t, err)
	c.AssertExpectations(t)
}

func TestProductService_FindByID_CacheErrorsDegrade(t *testing.T) {
	service, repo, c := newMocked()
	stored := &models.Product{ID: productID}

	c.On("Get", ctxAny, productID, mock.Anything).Return(false, errors.New("redis down")).Once()
	repo.On("FindByID", ctxAny, productID).Return(stored, nil).Once()
	c.On("Set", ctxAny, productID, stored, mock.Anything).Return(errors.New("redis down")).Once()

	product, fromCache, err := service.FindByID(context.Background(), productID)

	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, stored, product)
}

func TestProductService_FindByID_NotFound(t *testing.T) {
	service, repo, c := newMocked()

	c.On("Get", ctxAny, productID, mock.Anything).Return(false, nil).Once()
	repo.On("FindByID", ctxAny, productID).Return(nil, repositories.ErrProductNotFound).Once()

	_, _, err := service.FindByID(context.Background(), productID)

	assert.ErrorIs(t, err, services.ErrNotFound)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_FindByID_StoreError(t *testing.T) {
	service, repo, c := newMocked()

	c.On("Get", ctxAny, productID, mock.Anything).Return(false, nil).Once()
	repo.On("FindByID", ctxAny, productID).Return(nil, errors.New("timeout")).Once()

	_, _, err := service.FindByID(context.Background(), productID)

	var perr *services.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "find", perr.Op)
}

func TestProductService_Update(t *testing.T) {
	service, repo, c := newMocked()
	updated := &models.Product{ID: productID, Name: "t-shirt-dragon", Slug: "t-shirt-dragon"}

	in := &models.ProductUpdate{Name: ptr("t-shirt-dragon"), Slug: ptr("ignored")}
	repo.On("UpdateByID", ctxAny, productID, mock.MatchedBy(func(u *models.ProductUpdate) bool {
		return u.Slug != nil && *u.Slug == "t-shirt-dragon"
	})).Return(updated, nil).Once()
	c.On("Delete", ctxAny, []string{productID}).Return(nil).Once()

	product, err := service.Update(context.Background(), productID, in)

	require.NoError(t, err)
	assert.Equal(t, updated, product)
	assert.Equal(t, "ignored", *in.Slug, "caller payload is not mutated")
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestProductService_Update_WithoutNameKeepsSlug(t *testing.T) {
	service, repo, c := newMocked()

	repo.On("UpdateByID", ctxAny, productID, mock.MatchedBy(func(u *models.ProductUpdate) bool {
		return u.Slug == nil && *u.Stock == 4
	})).Return(&models.Product{ID: productID, Stock: 4}, nil).Once()
	c.On("Delete", ctxAny, []string{productID}).Return(nil).Once()

	_, err := service.Update(context.Background(), productID, &models.ProductUpdate{Stock: ptr(4), Slug: ptr("hack")})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProductService_Update_Failures(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		service, repo, c := newMocked()
		_, err := service.Update(context.Background(), "bad", &models.ProductUpdate{})
		assert.ErrorIs(t, err, services.ErrInvalidID)
		repo.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
		c.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("invalid payload", func(t *testing.T) {
		service, repo, _ := newMocked()
		_, err := service.Update(context.Background(), productID, &models.ProductUpdate{Stock: ptr(-1)})
		var verr *validation.Error
		assert.ErrorAs(t, err, &verr)
		repo.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found leaves cache untouched", func(t *testing.T) {
		service, repo, c := newMocked()
		repo.On("UpdateByID", ctxAny, productID, mock.Anything).Return(nil, repositories.ErrProductNotFound).Once()

		_, err := service.Update(context.Background(), productID, &models.ProductUpdate{Name: ptr("x")})
		assert.ErrorIs(t, err, services.ErrNotFound)
		c.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("store error leaves cache untouched", func(t *testing.T) {
		service, repo, c := newMocked()
		repo.On("UpdateByID", ctxAny, productID, mock.Anything).Return(nil, errors.New("boom")).Once()

		_, err := service.Update(context.Background(), productID, &models.ProductUpdate{Name: ptr("x")})
		var perr *services.PersistenceError
		assert.ErrorAs(t, err, &perr)
		c.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("invalidation failure is not surfaced", func(t *testing.T) {
		service, repo, c := newMocked()
		repo.On("UpdateByID", ctxAny, productID, mock.Anything).Return(&models.Product{ID: productID}, nil).Once()
		c.On("Delete", ctxAny, []string{productID}).Return(errors.New("redis down")).Once()

		_, err := service.Update(context.Background(), productID, &models.ProductUpdate{Name: ptr("x")})
		assert.NoError(t, err)
	})
}

func TestProductService_Delete(t *testing.T) {
	service, repo, c := newMocked()
	repo.On("DeleteByID", ctxAny, productID).Return(true, nil).Once()
	c.On("Delete", ctxAny, []string{productID}).Return(nil).Once()

	require.NoError(t, service.Delete(context.Background(), productID))
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestProductService_Delete_Failures(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		service, repo, _ := newMocked()
		assert.ErrorIs(t, service.Delete(context.Background(), "zzz"), services.ErrInvalidID)
		repo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		service, repo, c := newMocked()
		repo.On("DeleteByID", ctxAny, productID).Return(false, nil).Once()
		assert.ErrorIs(t, service.Delete(context.Background(), productID), services.ErrNotFound)
		c.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("store error", func(t *testing.T) {
		service, repo, c := newMocked()
		repo.On("DeleteByID", ctxAny, productID).Return(false, errors.New("boom")).Once()
		var perr *services.PersistenceError
		assert.ErrorAs(t, service.Delete(context.Background(), productID), &perr)
		c.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestProductService_PublishesEvents(t *testing.T) {
	pub := new(MockPublisher)
	service, repo, c := newMocked(services.WithEventPublisher(pub))

	repo.On("Create", ctxAny, mock.Anything).Return(&models.Product{ID: productID}, nil).Once()
	repo.On("DeleteByID", ctxAny, productID).Return(true, nil).Once()
	c.On("Delete", ctxAny, []string{productID}).Return(nil).Once()

	pub.On("Publish", ctxAny, services.EventProductCreated, mock.MatchedBy(func(body []byte) bool {
		var ev services.ProductEvent
		return json.Unmarshal(body, &ev) == nil && ev.ProductID == productID && ev.Event == services.EventProductCreated
	})).Return(nil).Once()
	// publish failures are logged only
	pub.On("Publish", ctxAny, services.EventProductDeleted, mock.Anything).Return(errors.New("amqp closed")).Once()

	_, err := service.Create(context.Background(), validInput("x"))
	require.NoError(t, err)
	require.NoError(t, service.Delete(context.Background(), productID))
	pub.AssertExpectations(t)
}

func TestProductService_Health(t *testing.T) {
	service, repo, c := newMocked()
	repo.On("Ping", ctxAny).Return(nil).Once()
	c.On("Ping", ctxAny).Return(errors.New("down")).Once()

	storeErr, cacheErr := service.Health(context.Background())
	assert.NoError(t, storeErr)
	assert.Error(t, cacheErr)
}

// The tests below run against the in-memory store and cache.

func newInMemory(t *testing.T) (*services.ProductService, *repositories.MockProductRepository, cache.Cache) {
	t.Helper()
	repo := repositories.NewMockProductRepository()
	c, err := cache.NewMemoryCache(nil)
	require.NoError(t, err)
	return services.NewProductService(repo, c, logger.NewNop()), repo, c
}

func TestCacheAside_ReadTwice(t *testing.T) {
	service, _, _ := newInMemory(t)
	ctx := context.Background()

	created, err := service.Create(ctx, validInput("mug"))
	require.NoError(t, err)

	first, fromCache, err := service.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, fromCache)

	second, fromCache, err := service.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fromCache)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Images, second.Images)
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
}

func TestCacheAside_SameNameTwice(t *testing.T) {
	service, _, _ := newInMemory(t)
	ctx := context.Background()

	a, err := service.Create(ctx, validInput("mug"))
	require.NoError(t, err)
	b, err := service.Create(ctx, validInput("mug"))
	require.NoError(t, err)
	assert.Equal(t, a.Slug, b.Slug)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCacheAside_TShirtScenario(t *testing.T) {
	service, _, c := newInMemory(t)
	ctx := context.Background()

	created, err := service.Create(ctx, validInput("t-shirt-bulls"))
	require.NoError(t, err)
	assert.Equal(t, "t-shirt-bulls", created.Slug)

	// warm the cache
	_, _, err = service.FindByID(ctx, created.ID)
	require.NoError(t, err)
	found, err := c.Get(ctx, created.ID, &models.Product{})
	require.NoError(t, err)
	require.True(t, found)

	updated, err := service.Update(ctx, created.ID, &models.ProductUpdate{Name: ptr("t-shirt-dragon")})
	require.NoError(t, err)
	assert.Equal(t, "t-shirt-dragon", updated.Slug)

	product, fromCache, err := service.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "t-shirt-dragon", product.Name)
	assert.Equal(t, "t-shirt-dragon", product.Slug)
}

func TestCacheAside_DeleteRemovesStoreAndCache(t *testing.T) {
	service, repo, c := newInMemory(t)
	ctx := context.Background()

	created, err := service.Create(ctx, validInput("gone"))
	require.NoError(t, err)
	_, _, err = service.FindByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))
	assert.Zero(t, repo.Len())

	found, err := c.Get(ctx, created.ID, &models.Product{})
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = service.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCacheAside_MissingIDsDoNotMutate(t *testing.T) {
	service, repo, _ := newInMemory(t)
	ctx := context.Background()

	_, err := service.Create(ctx, validInput("keep"))
	require.NoError(t, err)

	missing := models.NewID()
	_, err = service.Update(ctx, missing, &models.ProductUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, missing), services.ErrNotFound)
	_, err = service.Update(ctx, "bad-id", &models.ProductUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, services.ErrInvalidID)
	assert.Equal(t, 1, repo.Len())
}
