package enums

import "fmt"

// DeliveryStatus is the forward-only fulfillment state of a placed order.
type DeliveryStatus string

const (
	DeliveryStatusPlaced    DeliveryStatus = "Order Placed"
	DeliveryStatusOutForDel DeliveryStatus = "Out for Delivery"
	DeliveryStatusDelivered DeliveryStatus = "Delivered"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPlaced,
	DeliveryStatusOutForDel,
	DeliveryStatusDelivered,
}

// deliveryTransitions maps each state to the states it may advance to.
// Re-applying the current state is allowed and must stay idempotent.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPlaced:    {DeliveryStatusPlaced, DeliveryStatusOutForDel},
	DeliveryStatusOutForDel: {DeliveryStatusOutForDel, DeliveryStatusDelivered},
	DeliveryStatusDelivered: {DeliveryStatusDelivered},
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (d DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, candidate := range deliveryTransitions[d] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
