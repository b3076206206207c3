package models

import "strings"

// OrderStatus is the lifecycle state of an order as reported by the upstream store.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"

	// OrderStatusUnknown is assigned to records whose status is empty or outside the closed set.
	OrderStatusUnknown OrderStatus = "unknown"
)

// UnknownKey is the grouping key substituted for absent dimensions.
const UnknownKey = "unknown"

// OrderStatuses is the closed status set, in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// statusAliases maps the spellings seen across the admin, restaurant and driver screens onto the closed set.
var statusAliases = map[string]OrderStatus{
	"placed":           OrderStatusPending,
	"new":              OrderStatusPending,
	"accepted":         OrderStatusConfirmed,
	"in_preparation":   OrderStatusPreparing,
	"ready_for_pickup": OrderStatusReady,
	"picked_up":        OrderStatusOutForDelivery,
	"in_transit":       OrderStatusOutForDelivery,
	"on_the_way":       OrderStatusOutForDelivery,
	"completed":        OrderStatusDelivered,
	"canceled":         OrderStatusCancelled,
	"rejected":         OrderStatusCancelled,
}

// ParseOrderStatus maps a raw status string onto the closed set. Unrecognised values return OrderStatusUnknown.
func ParseOrderStatus(raw string) OrderStatus {
	s := normalizeStatus(raw)
	for _, known := range OrderStatuses {
		if string(known) == s {
			return known
		}
	}
	if alias, ok := statusAliases[s]; ok {
		return alias
	}
	return OrderStatusUnknown
}

func normalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
