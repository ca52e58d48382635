package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafailyasa/salt-be-test/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
// The *gorm.DB should be opened with TranslateError enabled so duplicate keys
// are reported as ErrConstraintViolation.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// AutoMigrate creates or updates the products table.
func (r *GORMProductRepository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate products table: %w", err)
	}
	return nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	p := *product
	p.ID = models.NewID()
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", translate(err))
	}
	return &p, nil
}

// FindByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// UpdateByID updates the given fields inside a transaction, locking the row
// so the returned record reflects this update.
func (r *GORMProductRepository) UpdateByID(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
			return err
		}
		u.Apply(&product)
		product.UpdatedAt = time.Now()
		// Save writes zero values too, so fields explicitly set to 0 persist.
		return tx.Save(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, translate(err))
	}
	return &product, nil
}

// DeleteByID deletes a product by its ID from the database.
func (r *GORMProductRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete product %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Ping checks the underlying connection.
func (r *GORMProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	return err
}
