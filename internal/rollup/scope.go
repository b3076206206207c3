package rollup

import (
	"fmt"
	"strings"
)

type ScopeKind string

const (
	ScopePlatform   ScopeKind = "platform"
	ScopeRestaurant ScopeKind = "restaurant"
	ScopeCustomer   ScopeKind = "customer"
	ScopeDriver     ScopeKind = "driver"
)

// Scope narrows the batch to one dashboard's records before any metric is computed.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

func (s Scope) String() string {
	if s.ID == "" {
		return string(s.kind())
	}
	return string(s.kind()) + ":" + s.ID
}

func (s Scope) kind() ScopeKind {
	if s.Kind == "" {
		return ScopePlatform
	}
	return ScopeKind(strings.ToLower(string(s.Kind)))
}

func (s Scope) Validate() error {
	switch s.kind() {
	case ScopePlatform:
		return nil
	case ScopeRestaurant, ScopeCustomer, ScopeDriver:
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: %s scope needs an id", ErrInvalidScope, s.kind())
		}
		return nil
	}
	return fmt.Errorf("%w: kind %q", ErrInvalidScope, s.Kind)
}

// Filter keeps the records belonging to the scope. A restaurant matches on ID or name; a customer on ID or
// email, case-insensitively.
func (s Scope) Filter(records []Record) []Record {
	kind := s.kind()
	if kind == ScopePlatform {
		return records
	}
	id := strings.TrimSpace(s.ID)
	match := func(r Record) bool {
		switch kind {
		case ScopeRestaurant:
			return r.Order.RestaurantID == id || strings.EqualFold(r.Order.RestaurantName, id)
		case ScopeCustomer:
			return r.Order.CustomerID == id || strings.EqualFold(r.Order.CustomerEmail, id)
		case ScopeDriver:
			return r.Order.DriverID == id
		}
		return false
	}

	subset := make([]Record, 0)
	for _, rec := range records {
		if match(rec) {
			subset = append(subset, rec)
		}
	}
	return subset
}
