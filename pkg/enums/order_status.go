package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order. Orders are created
// as pending and advance through the fulfillment chain; cancellation is
// allowed from any non-terminal state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivering,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusSuccessors = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusPreparing,
	OrderStatusPreparing:  OrderStatusReady,
	OrderStatusReady:      OrderStatusDelivering,
	OrderStatusDelivering: OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}

// CanTransitionTo reports whether target is a legal next state.
func (o OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !o.IsValid() || !target.IsValid() {
		return false
	}
	if o.IsTerminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	return orderStatusSuccessors[o] == target
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
