package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodrollup/internal/rollup"
)

// MetricRow is one scalar of a report in long format, the shape tabular sinks store.
type MetricRow struct {
	GeneratedAt int64   `parquet:"name=generated_at, type=INT64"`
	Scope       string  `parquet:"name=scope, type=BYTE_ARRAY, convertedtype=UTF8"`
	Period      string  `parquet:"name=period, type=BYTE_ARRAY, convertedtype=UTF8"`
	Section     string  `parquet:"name=section, type=BYTE_ARRAY, convertedtype=UTF8"`
	Key         string  `parquet:"name=key, type=BYTE_ARRAY, convertedtype=UTF8"`
	Metric      string  `parquet:"name=metric, type=BYTE_ARRAY, convertedtype=UTF8"`
	Value       float64 `parquet:"name=value, type=DOUBLE"`
	Note        string  `parquet:"name=note, type=BYTE_ARRAY, convertedtype=UTF8"`
}

var csvHeader = []string{"generated_at", "scope", "period", "section", "key", "metric", "value", "note"}

func (r MetricRow) record() []string {
	return []string{
		fmt.Sprintf("%d", r.GeneratedAt),
		r.Scope,
		r.Period,
		r.Section,
		r.Key,
		r.Metric,
		fmt.Sprintf("%g", r.Value),
		r.Note,
	}
}

type rowBuilder struct {
	base MetricRow
	rows []MetricRow
}

func (b *rowBuilder) add(section, key, metric string, value float64) {
	row := b.base
	row.Section, row.Key, row.Metric, row.Value = section, key, metric, value
	b.rows = append(b.rows, row)
}

func (b *rowBuilder) money(section, key, metric string, value decimal.Decimal) {
	b.add(section, key, metric, value.InexactFloat64())
}

func (b *rowBuilder) change(section, key, prefix string, c rollup.Change) {
	b.money(section, key, prefix+"_current", c.Current)
	b.money(section, key, prefix+"_previous", c.Previous)
	b.add(section, key, prefix+"_change_pct", c.Percent)
}

func (b *rowBuilder) totals(section string, totals []rollup.GroupTotal) {
	for i, t := range totals {
		b.add(section, t.Key, "rank", float64(i+1))
		b.add(section, t.Key, "orders", float64(t.Orders))
		b.add(section, t.Key, "completed", float64(t.Completed))
		b.money(section, t.Key, "revenue", t.Revenue)
		b.add(section, t.Key, "quantity", float64(t.Quantity))
	}
}

// Flatten turns a report into metric rows. Money becomes float64 here; the JSON envelope keeps exact decimals.
func Flatten(report *rollup.Report) []MetricRow {
	b := &rowBuilder{base: MetricRow{
		GeneratedAt: report.GeneratedAt.UnixMilli(),
		Scope:       report.Scope.String(),
		Period:      string(report.Period),
	}}

	for _, s := range []struct {
		key string
		ps  rollup.PeriodSummary
	}{
		{"today", report.Summary.Today},
		{"week", report.Summary.Week},
		{"month", report.Summary.Month},
		{"year", report.Summary.Year},
	} {
		b.change("summary", s.key, "revenue", s.ps.Revenue)
		b.change("summary", s.key, "orders", s.ps.Orders)
	}

	sel := report.Selected
	b.add("selected", "", "orders", float64(sel.Orders))
	b.add("selected", "", "completed", float64(sel.Completed))
	b.add("selected", "", "cancelled", float64(sel.Cancelled))
	b.money("selected", "", "revenue", sel.Revenue)
	b.money("selected", "", "delivery_fees", sel.DeliveryFees)
	b.money("selected", "", "average_order_value", sel.AverageOrderValue)
	b.add("selected", "", "average_delivery_fee", sel.AverageDeliveryFee)
	b.add("selected", "", "completion_rate", sel.CompletionRate)
	b.add("selected", "", "cancellation_rate", sel.CancellationRate)

	for _, s := range report.Statuses {
		b.add("status", string(s.Status), "count", float64(s.Count))
		b.add("status", string(s.Status), "percent", s.Percent)
	}

	rk := report.Rankings
	b.totals("ranking.cuisine", rk.Cuisines)
	b.totals("ranking.restaurant", rk.Restaurants)
	b.totals("ranking.item", rk.Items)
	b.totals("ranking.driver", rk.Drivers)
	b.totals("ranking.region", rk.Regions)
	b.totals("ranking.customer", rk.Customers)
	b.totals("ranking.category", rk.Categories)
	b.totals("ranking.payment_method", rk.PaymentMethods)

	ret := report.Retention
	b.add("retention", "", "new_customers", float64(ret.NewCustomers))
	b.add("retention", "", "returning_customers", float64(ret.ReturningCustomers))
	b.add("retention", "", "rate", ret.Rate)
	b.add("retention", "", "repeat_customers", float64(ret.RepeatCustomers))
	b.add("retention", "", "repeat_purchase_rate", ret.RepeatPurchaseRate)
	b.add("retention", "", "avg_orders_per_customer", ret.AvgOrdersPerCustomer)
	b.add("retention", "", "anonymous_orders", float64(ret.AnonymousOrders))

	for _, d := range []struct {
		key  string
		stat rollup.DurationStat
	}{
		{"delivery", report.Durations.Delivery},
		{"preparation", report.Durations.Preparation},
	} {
		b.add("duration", d.key, "minutes", d.stat.Minutes)
		b.rows[len(b.rows)-1].Note = d.stat.Source
		b.add("duration", d.key, "samples", float64(d.stat.Samples))
	}

	for _, h := range report.Hourly {
		key := fmt.Sprintf("%02d", h.Hour)
		b.add("hourly", key, "orders", float64(h.Orders))
		b.money("hourly", key, "revenue", h.Revenue)
	}
	for _, d := range report.Daily {
		key := d.Date.Format("2006-01-02")
		b.add("daily", key, "orders", float64(d.Orders))
		b.money("daily", key, "revenue", d.Revenue)
	}

	lt := report.Lifetime
	note := "dated_only"
	if lt.IncludesUndated {
		note = "includes_undated"
	}
	b.add("lifetime", "", "orders", float64(lt.Orders))
	b.rows[len(b.rows)-1].Note = note
	b.add("lifetime", "", "completed", float64(lt.Completed))
	b.money("lifetime", "", "revenue", lt.Revenue)
	b.money("lifetime", "", "delivery_fees", lt.DeliveryFees)
	b.money("lifetime", "", "average_order_value", lt.AverageOrderValue)
	b.add("lifetime", "", "customers", float64(lt.Customers))

	dq := report.DataQuality
	b.add("data_quality", "", "records", float64(dq.Records))
	b.add("data_quality", "", "undated", float64(dq.Undated))
	b.add("data_quality", "", "unknown_status", float64(dq.UnknownStatus))
	b.add("data_quality", "", "missing_restaurant", float64(dq.MissingRestaurant))
	b.add("data_quality", "", "missing_customer", float64(dq.MissingCustomer))
	b.add("data_quality", "", "missing_cuisine", float64(dq.MissingCuisine))
	b.add("data_quality", "", "clamped_amounts", float64(dq.ClampedAmounts))
	b.add("data_quality", "", "defaulted_fields", float64(dq.DefaultedFields))

	return b.rows
}

// sanitizeTopic keeps topic names usable as a single path segment.
func sanitizeTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "rollup_reports"
	}
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(topic)
}
