package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chifaexpress/storefront-backend/pkg/enums"
)

// Order is the immutable snapshot of a checkout at submission time.
// Totals are copied from the cart when the order is created and never
// recomputed afterwards.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerPhone   string            `gorm:"column:customer_phone;not null;default:''"`
	DeliveryAddress string            `gorm:"column:delivery_address;not null;default:''"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Shipping        decimal.Decimal   `gorm:"column:shipping;type:numeric(12,2);not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Currency        string            `gorm:"column:currency;not null;default:'PEN'"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items           []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
