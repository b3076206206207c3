package rollup

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodrollup/internal/models"
)

// Record is an order after the one normalisation pass: canonical instants, a closed-set status and
// non-negative money. The source order is kept for grouping keys and line items and is never modified.
type Record struct {
	Order       *models.Order
	CreatedAt   time.Time // zero when absent or unparseable
	ConfirmedAt time.Time
	ReadyAt     time.Time
	DeliveredAt time.Time
	Status      models.OrderStatus
	Total       decimal.Decimal
	DeliveryFee decimal.Decimal

	clampedAmount bool
}

// Dated reports whether the record carries a usable creation time.
func (r Record) Dated() bool { return !r.CreatedAt.IsZero() }

func (r Record) Delivered() bool { return r.Status == models.OrderStatusDelivered }

func (r Record) Cancelled() bool { return r.Status == models.OrderStatusCancelled }

// Normalize is the single boundary where raw order fields become canonical values.
func Normalize(orders []models.Order) []Record {
	records := make([]Record, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		rec := Record{
			Order:  o,
			Status: models.ParseOrderStatus(string(o.Status)),
		}
		rec.CreatedAt, _ = NormalizeTime(o.CreatedAt)
		rec.ConfirmedAt, _ = NormalizeTime(o.ConfirmedAt)
		rec.ReadyAt, _ = NormalizeTime(o.ReadyAt)
		rec.DeliveredAt, _ = NormalizeTime(o.DeliveredAt)

		var clampedTotal, clampedFee bool
		rec.Total, clampedTotal = money(o.Total)
		rec.DeliveryFee, clampedFee = money(o.DeliveryFee)
		rec.clampedAmount = clampedTotal || clampedFee

		records = append(records, rec)
	}
	return records
}

// money converts an amount to a decimal; negative and non-finite values become zero and are reported as clamped.
func money(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero, true
	}
	return decimal.NewFromFloat(v), false
}

// InRange keeps the dated records whose creation time falls inside r.
func InRange(records []Record, r Range) ([]Record, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	subset := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Dated() && r.Contains(rec.CreatedAt) {
			subset = append(subset, rec)
		}
	}
	return subset, nil
}

// AllTime is the lifetime pass-through. Undated records are dropped unless includeUndated is set.
func AllTime(records []Record, includeUndated bool) []Record {
	if includeUndated {
		return records
	}
	subset := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Dated() {
			subset = append(subset, rec)
		}
	}
	return subset
}

// KeyFunc extracts a grouping key. An empty result is grouped under models.UnknownKey.
type KeyFunc func(Record) string

func firstKey(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return models.UnknownKey
}

func ByRestaurant(r Record) string {
	return firstKey(r.Order.RestaurantID, r.Order.RestaurantName)
}

func ByCuisine(r Record) string {
	return firstKey(r.Order.Cuisine, r.Order.Category)
}

func ByCategory(r Record) string {
	return firstKey(r.Order.Category)
}

func ByDriver(r Record) string {
	return firstKey(r.Order.DriverID)
}

// ByCustomer prefers the customer ID and falls back to the lower-cased email.
func ByCustomer(r Record) string {
	return firstKey(r.Order.CustomerID, strings.ToLower(r.Order.CustomerEmail))
}

// ByRegion uses the explicit region, then the delivery city.
func ByRegion(r Record) string {
	return firstKey(r.Order.Region, r.Order.Address.City)
}

func ByPaymentMethod(r Record) string {
	return firstKey(strings.ToLower(r.Order.PaymentMethod))
}

type Group struct {
	Key     string
	Records []Record
}

// Groups are ordered by the first appearance of each key.
type Groups []Group

// Count returns the number of records across all groups.
func (g Groups) Count() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Records)
	}
	return n
}

func GroupBy(records []Record, key KeyFunc) Groups {
	index := make(map[string]int)
	var groups Groups
	for _, rec := range records {
		k := strings.TrimSpace(key(rec))
		if k == "" {
			k = models.UnknownKey
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// BucketByHourOfDay splits dated records by the hour of their creation time in loc. All 24 buckets are returned.
func BucketByHourOfDay(records []Record, loc *time.Location) [24][]Record {
	if loc == nil {
		loc = time.UTC
	}
	var buckets [24][]Record
	for _, rec := range records {
		if !rec.Dated() {
			continue
		}
		h := rec.CreatedAt.In(loc).Hour()
		buckets[h] = append(buckets[h], rec)
	}
	return buckets
}

// ItemLine is one normalised line item together with the status of its order.
type ItemLine struct {
	Name     string
	Quantity int
	Subtotal decimal.Decimal
	Status   models.OrderStatus
}

// ItemLines flattens line items. Quantity below one counts as one and a missing subtotal is quantity times unit price.
func ItemLines(records []Record) []ItemLine {
	var lines []ItemLine
	for _, rec := range records {
		for _, item := range rec.Order.Items {
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			subtotal, _ := money(item.LineSubtotal)
			if subtotal.IsZero() {
				unit, _ := money(item.UnitPrice)
				subtotal = unit.Mul(decimal.NewFromInt(int64(qty)))
			}
			lines = append(lines, ItemLine{
				Name:     firstKey(item.Name),
				Quantity: qty,
				Subtotal: subtotal,
				Status:   rec.Status,
			})
		}
	}
	return lines
}
