package rollup

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodrollup/internal/models"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestSumRevenue(t *testing.T) {
	records := Normalize([]models.Order{
		order("1", nil, models.OrderStatusDelivered, 10.1),
		order("2", nil, models.OrderStatusDelivered, 20.2),
		order("3", nil, models.OrderStatusCancelled, 99),
		order("4", nil, models.OrderStatusPending, 5),
	})

	if got := SumRevenue(records); !got.Equal(dec(30.3)) {
		t.Fatalf("expected 30.3, got %s", got)
	}
	if got := SumRevenue(nil); !got.IsZero() {
		t.Fatalf("expected 0 for empty input, got %s", got)
	}
}

func TestSumRevenueIsOrderIndependentAndMonotonic(t *testing.T) {
	var orders []models.Order
	for i := 0; i < 50; i++ {
		status := models.OrderStatusDelivered
		if i%4 == 0 {
			status = models.OrderStatusCancelled
		}
		orders = append(orders, order("", nil, status, 0.1*float64(i+1)))
	}
	records := Normalize(orders)
	base := SumRevenue(records)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := SumRevenue(shuffled); !got.Equal(base) {
			t.Fatalf("expected %s after shuffle, got %s", base, got)
		}
	}

	more := append(append([]Record(nil), records...), Normalize([]models.Order{order("x", nil, models.OrderStatusDelivered, 0)})...)
	if SumRevenue(more).LessThan(base) {
		t.Fatalf("expected revenue not to decrease when adding a delivered record")
	}
}

func TestCountByStatus(t *testing.T) {
	records := Normalize([]models.Order{
		order("1", nil, models.OrderStatusDelivered, 0),
		order("2", nil, models.OrderStatusDelivered, 0),
		order("3", nil, models.OrderStatusCancelled, 0),
		order("4", nil, "lost", 0),
	})

	counts := CountByStatus(records, models.OrderStatuses)
	if len(counts) != len(models.OrderStatuses)+1 {
		t.Fatalf("expected every status plus unknown, got %d entries", len(counts))
	}

	total := 0
	percent := 0.0
	byStatus := map[models.OrderStatus]int{}
	for _, c := range counts {
		total += c.Count
		percent += c.Percent
		byStatus[c.Status] = c.Count
	}
	if total != len(records) {
		t.Fatalf("expected counts to sum to %d, got %d", len(records), total)
	}
	if math.Abs(percent-100) > 1e-9 {
		t.Fatalf("expected percentages to sum to 100, got %f", percent)
	}
	if byStatus[models.OrderStatusDelivered] != 2 || byStatus[models.OrderStatusUnknown] != 1 || byStatus[models.OrderStatusPending] != 0 {
		t.Fatalf("unexpected distribution %v", byStatus)
	}
}

func TestCountByStatusEmpty(t *testing.T) {
	counts := CountByStatus(nil, models.OrderStatuses)
	if len(counts) != len(models.OrderStatuses)+1 {
		t.Fatalf("expected fixed key set on empty input, got %d entries", len(counts))
	}
	for _, c := range counts {
		if c.Count != 0 || c.Percent != 0 {
			t.Fatalf("expected all-zero distribution, got %+v", c)
		}
	}
}

func TestAverage(t *testing.T) {
	records := Normalize([]models.Order{
		order("1", nil, models.OrderStatusDelivered, 10),
		order("2", nil, models.OrderStatusDelivered, 30),
		order("3", nil, models.OrderStatusCancelled, 1000),
	})
	total := func(r Record) (float64, bool) { return r.Total.InexactFloat64(), true }

	if got := Average(records, total, Record.Delivered); got != 20 {
		t.Fatalf("expected 20, got %f", got)
	}
	if got := Average(nil, total, nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %f", got)
	}
	none := func(Record) bool { return false }
	if got := Average(records, total, none); got != 0 || math.IsNaN(got) {
		t.Fatalf("expected 0 when nothing passes the filter, got %f", got)
	}
}

func TestPercentageChange(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		percent  float64
		positive bool
	}{
		{name: "both zero", current: 0, previous: 0, percent: 0, positive: true},
		{name: "from zero", current: 42, previous: 0, percent: 100, positive: true},
		{name: "growth", current: 150, previous: 100, percent: 50, positive: true},
		{name: "decline", current: 75, previous: 100, percent: -25, positive: false},
		{name: "flat", current: 10, previous: 10, percent: 0, positive: true},
		{name: "to zero", current: 0, previous: 10, percent: -100, positive: false},
		{name: "rounded", current: 1, previous: 3, percent: -66.67, positive: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PercentageChange(dec(tc.current), dec(tc.previous))
			if got.Percent != tc.percent {
				t.Fatalf("expected %v%%, got %v%%", tc.percent, got.Percent)
			}
			if got.IsPositive != tc.positive {
				t.Fatalf("expected isPositive=%v, got %v", tc.positive, got.IsPositive)
			}
		})
	}
}

func TestPercentageChangeFromZeroProperty(t *testing.T) {
	for x := 0; x <= 1000; x += 37 {
		got := CountChange(x, 0)
		want := 100.0
		if x == 0 {
			want = 0
		}
		if got.Percent != want || !got.IsPositive {
			t.Fatalf("CountChange(%d, 0): expected %v%% positive, got %+v", x, want, got)
		}
	}
}

func TestTopNScenarioRevenueBeatsVolume(t *testing.T) {
	var orders []models.Order
	for i := 0; i < 5; i++ {
		o := order("", nil, models.OrderStatusDelivered, 10)
		o.Cuisine = "Italian"
		orders = append(orders, o)
	}
	thai := order("", nil, models.OrderStatusDelivered, 100)
	thai.Cuisine = "Thai"
	orders = append(orders, thai)

	top, err := TopN(Totals(GroupBy(Normalize(orders), ByCuisine)), 1, RankByRevenue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 1 || top[0].Key != "Thai" || !top[0].Revenue.Equal(dec(100)) {
		t.Fatalf("expected [Thai 100], got %+v", top)
	}
}

func TestTopN(t *testing.T) {
	totals := []GroupTotal{
		{Key: "b", Orders: 3, Revenue: dec(50)},
		{Key: "a", Orders: 1, Revenue: dec(50)},
		{Key: "c", Orders: 3, Revenue: dec(50)},
		{Key: "d", Orders: 9, Revenue: dec(10)},
		{Key: "e", Orders: 2, Revenue: dec(70)},
	}
	snapshot := append([]GroupTotal(nil), totals...)

	top, err := TopN(totals, 4, RankByRevenue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, 0, len(top))
	for _, g := range top {
		got = append(got, g.Key)
	}
	if want := []string{"e", "b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(totals, snapshot) {
		t.Fatalf("expected input to be left untouched")
	}

	all, _ := TopN(totals, 50, RankByRevenue)
	if len(all) != len(totals) {
		t.Fatalf("expected min(n, groups)=%d entries, got %d", len(totals), len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Revenue.GreaterThan(all[i-1].Revenue) {
			t.Fatalf("expected descending revenue at %d", i)
		}
	}

	none, _ := TopN(totals, 0, RankByRevenue)
	if len(none) != 0 {
		t.Fatalf("expected empty result for n=0, got %d", len(none))
	}

	if _, err := TopN(totals, -1, RankByRevenue); !errors.Is(err, ErrNegativeTopN) {
		t.Fatalf("expected ErrNegativeTopN, got %v", err)
	}
}

func TestTopNIsStableUnderReordering(t *testing.T) {
	var orders []models.Order
	cuisines := []string{"Thai", "Italian", "Indian", "Greek", "Thai", "Greek", "Indian", "Italian"}
	for i, c := range cuisines {
		o := order("", nil, models.OrderStatusDelivered, 10)
		o.Cuisine = c
		o.ID = string(rune('a' + i))
		orders = append(orders, o)
	}

	want, _ := TopN(Totals(GroupBy(Normalize(orders), ByCuisine)), 3, RankByRevenue)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Order(nil), orders...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, _ := TopN(Totals(GroupBy(Normalize(shuffled), ByCuisine)), 3, RankByRevenue)
		if !reflect.DeepEqual(keys(got), keys(want)) {
			t.Fatalf("expected %v, got %v", keys(want), keys(got))
		}
	}
	if !reflect.DeepEqual(keys(want), []string{"Greek", "Indian", "Italian"}) {
		t.Fatalf("expected ties broken by key, got %v", keys(want))
	}
}

func TestItemTotals(t *testing.T) {
	records := Normalize([]models.Order{
		{ID: "1", Status: models.OrderStatusDelivered, Items: []models.OrderItem{{Name: "Naan", Quantity: 3, UnitPrice: 2}}},
		{ID: "2", Status: models.OrderStatusDelivered, Items: []models.OrderItem{{Name: "Curry", Quantity: 1, UnitPrice: 12}, {Name: "Naan", Quantity: 1, UnitPrice: 2}}},
		{ID: "3", Status: models.OrderStatusCancelled, Items: []models.OrderItem{{Name: "Curry", Quantity: 5, UnitPrice: 12}}},
	})

	top, err := TopN(ItemTotals(ItemLines(records)), 5, RankByQuantity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 2 || top[0].Key != "Naan" || top[0].Quantity != 4 || !top[0].Revenue.Equal(dec(8)) {
		t.Fatalf("expected Naan first with 4 sold, got %+v", top)
	}
	if top[1].Quantity != 1 || top[1].Orders != 2 {
		t.Fatalf("expected cancelled curry to count as an order but not as sold, got %+v", top[1])
	}
}

func keys(totals []GroupTotal) []string {
	out := make([]string, 0, len(totals))
	for _, t := range totals {
		out = append(out, t.Key)
	}
	return out
}
