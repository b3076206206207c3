package rollup

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodrollup/internal/models"
)

func order(id string, created any, status models.OrderStatus, total float64) models.Order {
	return models.Order{ID: id, CreatedAt: created, Status: status, Total: total}
}

func TestNormalize(t *testing.T) {
	orders := []models.Order{
		order("a", "2024-05-01T10:00:00Z", "Completed", 12.5),
		order("b", nil, "teleported", -3),
		order("c", int64(1714557600), models.OrderStatusCancelled, 8),
	}

	records := Normalize(orders)
	if len(records) != len(orders) {
		t.Fatalf("expected %d records, got %d", len(orders), len(records))
	}

	if records[0].Status != models.OrderStatusDelivered {
		t.Fatalf("expected alias to map to delivered, got %s", records[0].Status)
	}
	if !records[0].Total.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected total 12.5, got %s", records[0].Total)
	}
	if records[1].Status != models.OrderStatusUnknown {
		t.Fatalf("expected unknown status, got %s", records[1].Status)
	}
	if records[1].Dated() {
		t.Fatalf("expected record without createdAt to be undated")
	}
	if !records[1].Total.IsZero() || !records[1].clampedAmount {
		t.Fatalf("expected negative total to be clamped to zero")
	}
	if !records[2].CreatedAt.Equal(day(2024, time.May, 1, 10, 0)) {
		t.Fatalf("expected unix seconds to normalise, got %v", records[2].CreatedAt)
	}
	if orders[1].Total != -3 {
		t.Fatalf("expected input to be left untouched")
	}
}

func TestInRange(t *testing.T) {
	records := Normalize([]models.Order{
		order("before", "2024-04-30T23:59:59Z", models.OrderStatusDelivered, 1),
		order("start", "2024-05-01T00:00:00Z", models.OrderStatusDelivered, 1),
		order("inside", "2024-05-01T12:00:00Z", models.OrderStatusDelivered, 1),
		order("end", "2024-05-02T00:00:00Z", models.OrderStatusDelivered, 1),
		order("undated", "", models.OrderStatusDelivered, 1),
	})
	r := Range{Start: day(2024, time.May, 1, 0, 0), End: day(2024, time.May, 2, 0, 0)}

	got, err := InRange(records, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Order.ID != "start" || got[1].Order.ID != "inside" {
		t.Fatalf("expected [start inside], got %v", ids(got))
	}

	if _, err := InRange(records, Range{Start: r.End, End: r.Start}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestAllTime(t *testing.T) {
	records := Normalize([]models.Order{
		order("dated", "2024-05-01T12:00:00Z", models.OrderStatusDelivered, 1),
		order("undated", nil, models.OrderStatusDelivered, 1),
	})

	if got := AllTime(records, false); len(got) != 1 || got[0].Order.ID != "dated" {
		t.Fatalf("expected undated record to be excluded by default, got %v", ids(got))
	}
	if got := AllTime(records, true); len(got) != 2 {
		t.Fatalf("expected both records when undated are included, got %v", ids(got))
	}
}

func TestGroupBy(t *testing.T) {
	orders := []models.Order{
		{ID: "1", Cuisine: "Thai"},
		{ID: "2", Cuisine: "Italian"},
		{ID: "3"},
		{ID: "4", Cuisine: "Thai"},
		{ID: "5", Category: "Pizza"},
	}
	groups := GroupBy(Normalize(orders), ByCuisine)

	want := []struct {
		key   string
		count int
	}{
		{"Thai", 2},
		{"Italian", 1},
		{models.UnknownKey, 1},
		{"Pizza", 1},
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, w := range want {
		if groups[i].Key != w.key || len(groups[i].Records) != w.count {
			t.Fatalf("group %d: expected %s/%d, got %s/%d", i, w.key, w.count, groups[i].Key, len(groups[i].Records))
		}
	}
	if groups.Count() != len(orders) {
		t.Fatalf("expected grouping to keep all %d records, got %d", len(orders), groups.Count())
	}
}

func TestKeyFuncs(t *testing.T) {
	cases := []struct {
		name     string
		order    models.Order
		key      KeyFunc
		expected string
	}{
		{name: "restaurant id", order: models.Order{RestaurantID: "r1", RestaurantName: "Roma"}, key: ByRestaurant, expected: "r1"},
		{name: "restaurant name fallback", order: models.Order{RestaurantName: "Roma"}, key: ByRestaurant, expected: "Roma"},
		{name: "customer email fallback", order: models.Order{CustomerEmail: "Ana@Example.com"}, key: ByCustomer, expected: "ana@example.com"},
		{name: "region from city", order: models.Order{Address: models.Address{City: "Leeds"}}, key: ByRegion, expected: "Leeds"},
		{name: "blank driver", order: models.Order{DriverID: "  "}, key: ByDriver, expected: models.UnknownKey},
		{name: "payment method case", order: models.Order{PaymentMethod: "CARD"}, key: ByPaymentMethod, expected: "card"},
		{name: "missing category", order: models.Order{Cuisine: "Thai"}, key: ByCategory, expected: models.UnknownKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Normalize([]models.Order{tc.order})[0]
			if got := tc.key(rec); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestBucketByHourOfDay(t *testing.T) {
	records := Normalize([]models.Order{
		order("a", "2024-05-01T00:15:00Z", models.OrderStatusDelivered, 1),
		order("b", "2024-05-01T13:00:00Z", models.OrderStatusDelivered, 1),
		order("c", "2024-05-02T13:59:00Z", models.OrderStatusDelivered, 1),
		order("d", nil, models.OrderStatusDelivered, 1),
	})

	buckets := BucketByHourOfDay(records, time.UTC)
	if len(buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(buckets))
	}
	if len(buckets[0]) != 1 || len(buckets[13]) != 2 {
		t.Fatalf("expected 1 order at 00h and 2 at 13h, got %d and %d", len(buckets[0]), len(buckets[13]))
	}

	shifted := BucketByHourOfDay(records, time.FixedZone("UTC+2", 2*60*60))
	if len(shifted[2]) != 1 || len(shifted[15]) != 2 {
		t.Fatalf("expected buckets to follow the location")
	}
}

func TestItemLines(t *testing.T) {
	records := Normalize([]models.Order{{
		ID:     "1",
		Status: models.OrderStatusDelivered,
		Items: []models.OrderItem{
			{Name: "Pad Thai", Quantity: 2, UnitPrice: 9.5},
			{Name: "", Quantity: 0, UnitPrice: 3, LineSubtotal: 4},
		},
	}})

	lines := ItemLines(records)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !lines[0].Subtotal.Equal(decimal.NewFromInt(19)) {
		t.Fatalf("expected subtotal from quantity times price, got %s", lines[0].Subtotal)
	}
	if lines[1].Name != models.UnknownKey || lines[1].Quantity != 1 || !lines[1].Subtotal.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected unnamed item with quantity 1 and subtotal 4, got %+v", lines[1])
	}
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Order.ID)
	}
	return out
}
