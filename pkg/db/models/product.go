package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	ShortDescription *string         `gorm:"column:short_description"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL         *string         `gorm:"column:image_url"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
