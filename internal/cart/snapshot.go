package cart

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart position. Name, unit price, and image are snapshots of
// the product at the moment it was added.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

// Snapshot is the full cart state stored under a single key per profile.
// Every mutation rewrites the whole snapshot.
type Snapshot struct {
	Items []Item `json:"items"`
}

// IsEmpty reports whether the snapshot holds no items.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// find returns the index of the item for productID, or -1.
func (s Snapshot) find(productID uuid.UUID) int {
	for i, item := range s.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func encodeSnapshot(s Snapshot) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeSnapshot parses a stored snapshot. Payloads that cannot be parsed
// are treated as an empty cart so a damaged record never blocks shopping.
func decodeSnapshot(raw string) (Snapshot, bool) {
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false
	}
	for _, item := range snap.Items {
		if item.ProductID == uuid.Nil || item.Quantity <= 0 || item.UnitPrice.IsNegative() {
			return Snapshot{}, false
		}
	}
	return snap, true
}
