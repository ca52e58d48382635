package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/dafailyasa/salt-be-test/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// Records are copied on the way in and out so callers never share state
// with the store.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := clone(*product)
	p.ID = models.NewID()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.products[p.ID] = p

	out := clone(p)
	return &out, nil
}

// FindByID returns a product by its ID.
func (r *MockProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	out := clone(product)
	return &out, nil
}

// UpdateByID modifies an existing product.
func (r *MockProductRepository) UpdateByID(_ context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	product = clone(product)
	u.Apply(&product)
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product

	out := clone(product)
	return &out, nil
}

// DeleteByID removes a product by its ID.
func (r *MockProductRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

// Ping always succeeds.
func (r *MockProductRepository) Ping(context.Context) error { return nil }

// Len returns the number of stored products.
func (r *MockProductRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

func clone(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}
