package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	"github.com/chifaexpress/storefront-backend/pkg/enums"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone,omitempty"`
	DeliveryAddress string            `json:"delivery_address"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Shipping        decimal.Decimal   `json:"shipping"`
	Total           decimal.Decimal   `json:"total"`
	Currency        string            `json:"currency"`
	Status          enums.OrderStatus `json:"status"`
	Items           []LineItemDTO     `json:"items,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// LineItemDTO is one product line of an order as returned to clients.
type LineItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]LineItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, LineItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}

	return &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		DeliveryAddress: o.DeliveryAddress,
		Subtotal:        o.Subtotal,
		Shipping:        o.Shipping,
		Total:           o.Total,
		Currency:        o.Currency,
		Status:          o.Status,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func FromModels(found []models.Order) []*OrderDTO {
	out := make([]*OrderDTO, 0, len(found))
	for i := range found {
		out = append(out, FromModel(&found[i]))
	}
	return out
}
