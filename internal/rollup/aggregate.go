package rollup

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodrollup/internal/models"
)

var hundred = decimal.NewFromInt(100)

// SumRevenue adds up the totals of delivered records.
func SumRevenue(records []Record) decimal.Decimal {
	sum := decimal.Zero
	for _, rec := range records {
		if rec.Delivered() {
			sum = sum.Add(rec.Total)
		}
	}
	return sum
}

// SumDeliveryFees adds up the delivery fees of delivered records.
func SumDeliveryFees(records []Record) decimal.Decimal {
	sum := decimal.Zero
	for _, rec := range records {
		if rec.Delivered() {
			sum = sum.Add(rec.DeliveryFee)
		}
	}
	return sum
}

type StatusCount struct {
	Status  models.OrderStatus `json:"status"`
	Count   int                `json:"count"`
	Percent float64            `json:"percent"`
}

// CountByStatus counts records per status. The key set is statuses followed by models.OrderStatusUnknown, which
// collects every record whose status is not listed. Percentages are all zero for an empty input.
func CountByStatus(records []Record, statuses []models.OrderStatus) []StatusCount {
	counts := make([]StatusCount, 0, len(statuses)+1)
	index := make(map[models.OrderStatus]int, len(statuses)+1)
	for _, s := range statuses {
		if _, dup := index[s]; dup {
			continue
		}
		index[s] = len(counts)
		counts = append(counts, StatusCount{Status: s})
	}
	unknown, ok := index[models.OrderStatusUnknown]
	if !ok {
		unknown = len(counts)
		index[models.OrderStatusUnknown] = unknown
		counts = append(counts, StatusCount{Status: models.OrderStatusUnknown})
	}

	for _, rec := range records {
		if i, ok := index[rec.Status]; ok {
			counts[i].Count++
		} else {
			counts[unknown].Count++
		}
	}

	if total := len(records); total > 0 {
		for i := range counts {
			counts[i].Percent = float64(counts[i].Count) / float64(total) * 100
		}
	}
	return counts
}

// Average is the mean of extract over the records accepted by keep (nil keeps all). Samples for which extract
// reports false are skipped. An empty sample set yields 0.
func Average(records []Record, extract func(Record) (float64, bool), keep func(Record) bool) float64 {
	avg, _ := mean(records, extract, keep)
	return avg
}

func mean(records []Record, extract func(Record) (float64, bool), keep func(Record) bool) (float64, int) {
	var sum float64
	n := 0
	for _, rec := range records {
		if keep != nil && !keep(rec) {
			continue
		}
		v, ok := extract(rec)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// Change compares a current value with the previous one.
type Change struct {
	Current    decimal.Decimal `json:"current"`
	Previous   decimal.Decimal `json:"previous"`
	Percent    float64         `json:"percent"`
	IsPositive bool            `json:"isPositive"`
}

// PercentageChange is (current-previous)/previous*100, rounded to two places. With no previous value the change is
// 100 when there is a current value and 0 otherwise.
func PercentageChange(current, previous decimal.Decimal) Change {
	c := Change{
		Current:    current,
		Previous:   previous,
		IsPositive: current.GreaterThanOrEqual(previous),
	}
	switch {
	case previous.IsZero() && current.IsZero():
		c.Percent = 0
	case previous.IsZero():
		c.Percent = 100
	default:
		c.Percent = current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
	}
	return c
}

// CountChange is PercentageChange over order counts.
func CountChange(current, previous int) Change {
	return PercentageChange(decimal.NewFromInt(int64(current)), decimal.NewFromInt(int64(previous)))
}

// GroupTotal is the reduction of one group. Revenue, fees and quantity only count delivered orders.
type GroupTotal struct {
	Key          string          `json:"key"`
	Orders       int             `json:"orders"`
	Completed    int             `json:"completed"`
	Revenue      decimal.Decimal `json:"revenue"`
	DeliveryFees decimal.Decimal `json:"deliveryFees"`
	Quantity     int             `json:"quantity"`
}

func Totals(groups Groups) []GroupTotal {
	totals := make([]GroupTotal, 0, len(groups))
	for _, g := range groups {
		t := GroupTotal{
			Key:          g.Key,
			Orders:       len(g.Records),
			Revenue:      SumRevenue(g.Records),
			DeliveryFees: SumDeliveryFees(g.Records),
		}
		for _, rec := range g.Records {
			if !rec.Delivered() {
				continue
			}
			t.Completed++
			for _, item := range rec.Order.Items {
				if item.Quantity < 1 {
					t.Quantity++
				} else {
					t.Quantity += item.Quantity
				}
			}
		}
		totals = append(totals, t)
	}
	return totals
}

// ItemTotals reduces line items per item name, in first-seen order.
func ItemTotals(lines []ItemLine) []GroupTotal {
	index := make(map[string]int)
	var totals []GroupTotal
	for _, line := range lines {
		i, ok := index[line.Name]
		if !ok {
			i = len(totals)
			index[line.Name] = i
			totals = append(totals, GroupTotal{Key: line.Name, Revenue: decimal.Zero, DeliveryFees: decimal.Zero})
		}
		totals[i].Orders++
		if line.Status == models.OrderStatusDelivered {
			totals[i].Completed++
			totals[i].Quantity += line.Quantity
			totals[i].Revenue = totals[i].Revenue.Add(line.Subtotal)
		}
	}
	return totals
}

type Metric string

const (
	MetricRevenue   Metric = "revenue"
	MetricOrders    Metric = "orders"
	MetricCompleted Metric = "completed"
	MetricQuantity  Metric = "quantity"
)

func (m Metric) of(t GroupTotal) decimal.Decimal {
	switch m {
	case MetricOrders:
		return decimal.NewFromInt(int64(t.Orders))
	case MetricCompleted:
		return decimal.NewFromInt(int64(t.Completed))
	case MetricQuantity:
		return decimal.NewFromInt(int64(t.Quantity))
	}
	return t.Revenue
}

// Ranking orders group totals by Primary, then Secondary, both descending, then by key ascending.
type Ranking struct {
	Primary   Metric
	Secondary Metric
}

var (
	RankByRevenue  = Ranking{Primary: MetricRevenue, Secondary: MetricOrders}
	RankByOrders   = Ranking{Primary: MetricOrders, Secondary: MetricRevenue}
	RankByQuantity = Ranking{Primary: MetricQuantity, Secondary: MetricRevenue}
)

// TopN returns the first n totals under by. The input slice is left untouched.
func TopN(totals []GroupTotal, n int, by Ranking) ([]GroupTotal, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeTopN, n)
	}
	if by.Primary == "" {
		by = RankByRevenue
	}

	sorted := make([]GroupTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := by.Primary.of(sorted[i]).Cmp(by.Primary.of(sorted[j])); c != 0 {
			return c > 0
		}
		if by.Secondary != "" {
			if c := by.Secondary.of(sorted[i]).Cmp(by.Secondary.of(sorted[j])); c != 0 {
				return c > 0
			}
		}
		return sorted[i].Key < sorted[j].Key
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}

func percentOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
