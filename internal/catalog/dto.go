package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chifaexpress/storefront-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	ShortDescription *string         `json:"short_description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	ImageURL         *string         `json:"image_url,omitempty"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	return &ProductDTO{
		ID:               p.ID,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		ImageURL:         p.ImageURL,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func FromModels(products []models.Product) []*ProductDTO {
	out := make([]*ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, FromModel(&products[i]))
	}
	return out
}

// CreateProductInput carries the fields accepted when adding a product.
type CreateProductInput struct {
	Name             string
	ShortDescription *string
	Price            decimal.Decimal
	ImageURL         *string
}

// UpdateProductInput carries the optional fields of a product edit. Nil
// fields are left untouched.
type UpdateProductInput struct {
	Name             *string
	ShortDescription *string
	Price            *decimal.Decimal
	ImageURL         *string
}
