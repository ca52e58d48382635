package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the sales state of a product.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Dimension holds the physical measurements of a product.
type Dimension struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// Product represents a product in the catalogue.
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Name      string    `json:"name" gorm:"not null;index"`
	Slug      string    `json:"slug" gorm:"not null"`
	ShortDesc string    `json:"shortDesc" gorm:"not null"`
	LongDesc  string    `json:"longDesc"`
	Discount  float64   `json:"discount" gorm:"not null"`
	Stock     int       `json:"stock" gorm:"not null"`
	Images    []string  `json:"images" gorm:"serializer:json;not null"`
	Price     float64   `json:"price" gorm:"not null"`
	Status    Status    `json:"status" gorm:"type:varchar(16);not null"`
	Dimension Dimension `json:"dimension" gorm:"embedded;embeddedPrefix:dimension_"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DimensionInput carries optional measurements; absent values default to 0.
type DimensionInput struct {
	Length *float64 `json:"length" validate:"omitempty,gte=0"`
	Width  *float64 `json:"width" validate:"omitempty,gte=0"`
	Height *float64 `json:"height" validate:"omitempty,gte=0"`
	Weight *float64 `json:"weight" validate:"omitempty,gte=0"`
}

// ProductInput is the payload accepted when creating a product.
// Pointer fields distinguish an absent value from a zero value.
type ProductInput struct {
	Name      *string         `json:"name" validate:"required,min=1"`
	ShortDesc *string         `json:"shortDesc" validate:"required,min=1"`
	LongDesc  *string         `json:"longDesc" validate:"omitempty"`
	Discount  *float64        `json:"discount" validate:"omitempty,gte=0"`
	Stock     *int            `json:"stock" validate:"required,gte=0"`
	Images    []string        `json:"images" validate:"required,min=1,dive,required,url"`
	Price     *float64        `json:"price" validate:"required,gte=0"`
	Status    *Status         `json:"status" validate:"omitempty,oneof=draft available sold"`
	Dimension *DimensionInput `json:"dimension" validate:"required"`
}

// ToProduct builds a new Product from the input, applying defaults for
// optional fields. ID, Slug and timestamps are left for the caller.
func (in *ProductInput) ToProduct() *Product {
	p := &Product{
		Status: StatusDraft,
		Images: append([]string(nil), in.Images...),
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.ShortDesc != nil {
		p.ShortDesc = *in.ShortDesc
	}
	if in.LongDesc != nil {
		p.LongDesc = *in.LongDesc
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Dimension != nil {
		p.Dimension = in.Dimension.ToDimension()
	}
	return p
}

// ToDimension converts the input, treating absent values as 0.
func (d *DimensionInput) ToDimension() Dimension {
	var dim Dimension
	if d.Length != nil {
		dim.Length = *d.Length
	}
	if d.Width != nil {
		dim.Width = *d.Width
	}
	if d.Height != nil {
		dim.Height = *d.Height
	}
	if d.Weight != nil {
		dim.Weight = *d.Weight
	}
	return dim
}

// ProductUpdate is a partial update. Nil fields are left untouched.
// Slug is never read from the request body; it is derived from Name.
type ProductUpdate struct {
	Name      *string         `json:"name" validate:"omitempty,min=1"`
	Slug      *string         `json:"-"`
	ShortDesc *string         `json:"shortDesc" validate:"omitempty,min=1"`
	LongDesc  *string         `json:"longDesc"`
	Discount  *float64        `json:"discount" validate:"omitempty,gte=0"`
	Stock     *int            `json:"stock" validate:"omitempty,gte=0"`
	Images    []string        `json:"images" validate:"omitempty,min=1,dive,required,url"`
	Price     *float64        `json:"price" validate:"omitempty,gte=0"`
	Status    *Status         `json:"status" validate:"omitempty,oneof=draft available sold"`
	Dimension *DimensionInput `json:"dimension"`
}

// Apply copies the fields set in u onto p.
func (u *ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Slug != nil {
		p.Slug = *u.Slug
	}
	if u.ShortDesc != nil {
		p.ShortDesc = *u.ShortDesc
	}
	if u.LongDesc != nil {
		p.LongDesc = *u.LongDesc
	}
	if u.Discount != nil {
		p.Discount = *u.Discount
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Images != nil {
		p.Images = append([]string(nil), u.Images...)
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if d := u.Dimension; d != nil {
		if d.Length != nil {
			p.Dimension.Length = *d.Length
		}
		if d.Width != nil {
			p.Dimension.Width = *d.Width
		}
		if d.Height != nil {
			p.Dimension.Height = *d.Height
		}
		if d.Weight != nil {
			p.Dimension.Weight = *d.Weight
		}
	}
}

// NewID returns a fresh identifier in the 24 hex character ObjectID shape.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id has the identifier shape used by every store.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
