package repositories

import (
	"context"
	"errors"

	"github.com/dafailyasa/salt-be-test/internal/models"
)

var (
	// ErrProductNotFound is returned when no product matches the given ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrConstraintViolation marks a write rejected by a store constraint,
	// such as a duplicate key. It is wrapped together with the driver error.
	ErrConstraintViolation = errors.New("constraint violation")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Create persists p, assigning its ID and timestamps, and returns the stored record.
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// UpdateByID applies the non-nil fields of u and returns the updated record.
	UpdateByID(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error)
	// DeleteByID reports whether a record was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}
