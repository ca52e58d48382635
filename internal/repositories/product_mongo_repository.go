package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafailyasa/salt-be-test/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ProductsCollection is the collection products are stored in.
const ProductsCollection = "products"

type dimensionDocument struct {
	Length float64 `bson:"length"`
	Width  float64 `bson:"width"`
	Height float64 `bson:"height"`
	Weight float64 `bson:"weight"`
}

type productDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Slug      string             `bson:"slug"`
	ShortDesc string             `bson:"shortDesc"`
	LongDesc  string             `bson:"longDesc,omitempty"`
	Discount  float64            `bson:"discount"`
	Stock     int                `bson:"stock"`
	Images    []string           `bson:"images"`
	Price     float64            `bson:"price"`
	Status    string             `bson:"status"`
	Dimension dimensionDocument  `bson:"dimension"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toDocument(p *models.Product) productDocument {
	return productDocument{
		Name:      p.Name,
		Slug:      p.Slug,
		ShortDesc: p.ShortDesc,
		LongDesc:  p.LongDesc,
		Discount:  p.Discount,
		Stock:     p.Stock,
		Images:    p.Images,
		Price:     p.Price,
		Status:    string(p.Status),
		Dimension: dimensionDocument(p.Dimension),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d *productDocument) toModel() *models.Product {
	return &models.Product{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Slug:      d.Slug,
		ShortDesc: d.ShortDesc,
		LongDesc:  d.LongDesc,
		Discount:  d.Discount,
		Stock:     d.Stock,
		Images:    d.Images,
		Price:     d.Price,
		Status:    models.Status(d.Status),
		Dimension: models.Dimension(d.Dimension),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a repository over the products collection of db.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(ProductsCollection)}
}

// EnsureIndexes creates the index on name.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create products index: %w", err)
	}
	return nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	doc := toDocument(product)
	doc.ID = primitive.NewObjectID()
	// BSON dates have millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to create product: %w: %w", ErrConstraintViolation, err)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return doc.toModel(), nil
}

// FindByID retrieves a product by its hex ObjectID.
func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", id, err)
	}

	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// UpdateByID applies a $set of the provided fields and returns the document
// as it is after the update.
func (r *MongoProductRepository) UpdateByID(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", id, err)
	}

	update := buildUpdate(u, time.Now().UTC().Truncate(time.Millisecond))
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to update product %s: %w: %w", id, ErrConstraintViolation, err)
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// DeleteByID removes a product and reports whether one was found.
func (r *MongoProductRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid product id %q: %w", id, err)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

// Ping checks the primary is reachable.
func (r *MongoProductRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// buildUpdate turns a partial update into a $set document. Dimension fields
// are set individually so absent measurements keep their stored value.
func buildUpdate(u *models.ProductUpdate, now time.Time) bson.D {
	set := bson.D{}
	add := func(key string, v any) { set = append(set, bson.E{Key: key, Value: v}) }

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Slug != nil {
		add("slug", *u.Slug)
	}
	if u.ShortDesc != nil {
		add("shortDesc", *u.ShortDesc)
	}
	if u.LongDesc != nil {
		add("longDesc", *u.LongDesc)
	}
	if u.Discount != nil {
		add("discount", *u.Discount)
	}
	if u.Stock != nil {
		add("stock", *u.Stock)
	}
	if u.Images != nil {
		add("images", u.Images)
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if d := u.Dimension; d != nil {
		if d.Length != nil {
			add("dimension.length", *d.Length)
		}
		if d.Width != nil {
			add("dimension.width", *d.Width)
		}
		if d.Height != nil {
			add("dimension.height", *d.Height)
		}
		if d.Weight != nil {
			add("dimension.weight", *d.Weight)
		}
	}
	add("updatedAt", now)

	return bson.D{{Key: "$set", Value: set}}
}
