package rollup

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/models"
)

const DefaultTopN = 5

// Options configure one Build call. Now is mandatory.
type Options struct {
	Now       time.Time
	Period    Period    // defaults to week
	Alignment Alignment // defaults to rolling
	WeekStart string    // calendar weeks; defaults to Monday
	// Location is used for midnights, hour buckets and daily points. Defaults to Now's location.
	Location *time.Location
	// TopN is the ranking length; 0 means DefaultTopN.
	TopN                     int
	IncludeUndatedInLifetime bool
	// DurationFallback is reported, flagged as fallback, when the period has no records at all.
	DurationFallback time.Duration
	Scope            Scope
	Logger           *zap.Logger
}

func (o Options) normalize() (Options, error) {
	if o.Now.IsZero() {
		return o, ErrMissingNow
	}
	if o.Period == "" {
		o.Period = PeriodWeek
	}
	p, err := ParsePeriod(string(o.Period))
	if err != nil {
		return o, err
	}
	o.Period = p
	if o.Alignment, err = ParseAlignment(string(o.Alignment)); err != nil {
		return o, err
	}
	if _, err = ParseWeekday(o.WeekStart); err != nil {
		return o, err
	}
	if o.TopN < 0 {
		return o, fmt.Errorf("%w: %d", ErrNegativeTopN, o.TopN)
	}
	if o.TopN == 0 {
		o.TopN = DefaultTopN
	}
	if err = o.Scope.Validate(); err != nil {
		return o, err
	}
	if o.Scope.Kind == "" {
		o.Scope.Kind = ScopePlatform
	}
	if o.Location == nil {
		o.Location = o.Now.Location()
	}
	o.Now = o.Now.In(o.Location)
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o, nil
}

func (o Options) periodOptions() PeriodOptions {
	return PeriodOptions{Alignment: o.Alignment, WeekStart: o.WeekStart}
}

// Build runs the whole pipeline over orders. A nil batch is a caller error; an empty one yields an all-zero report.
func Build(orders []models.Order, opts Options) (*Report, error) {
	if orders == nil {
		return nil, ErrNilBatch
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	records := opts.Scope.Filter(Normalize(orders))
	current, previous, err := Resolve(opts.Period, opts.Now, opts.periodOptions())
	if err != nil {
		return nil, err
	}
	inPeriod, err := InRange(records, current)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: opts.Now,
		Period:      opts.Period,
		Alignment:   opts.Alignment,
		Scope:       opts.Scope,
		Current:     current,
		Previous:    previous,
		Empty:       len(records) == 0,
		Selected:    periodMetrics(inPeriod),
		Statuses:    CountByStatus(inPeriod, models.OrderStatuses),
		Retention:   retention(records, inPeriod, current),
		Durations:   durations(inPeriod, opts.DurationFallback),
		Hourly:      hourly(inPeriod, opts.Location),
		Daily:       daily(inPeriod, current, opts.Location),
		Lifetime:    lifetime(records, opts.IncludeUndatedInLifetime),
		DataQuality: dataQuality(records),
	}

	if report.Summary, err = summary(records, opts); err != nil {
		return nil, err
	}
	if report.Rankings, err = rankings(inPeriod, opts.TopN); err != nil {
		return nil, err
	}

	logDataQuality(opts.Logger, opts.Scope, report.DataQuality)
	return report, nil
}

func summary(records []Record, opts Options) (Summary, error) {
	var s Summary
	for _, p := range SummaryPeriods {
		cur, prev, err := Resolve(p, opts.Now, opts.periodOptions())
		if err != nil {
			return s, err
		}
		curRecs, err := InRange(records, cur)
		if err != nil {
			return s, err
		}
		prevRecs, err := InRange(records, prev)
		if err != nil {
			return s, err
		}
		ps := PeriodSummary{
			Current:  cur,
			Previous: prev,
			Revenue:  PercentageChange(SumRevenue(curRecs), SumRevenue(prevRecs)),
			Orders:   CountChange(len(curRecs), len(prevRecs)),
		}
		switch p {
		case PeriodToday:
			s.Today = ps
		case PeriodWeek:
			s.Week = ps
		case PeriodMonth:
			s.Month = ps
		case PeriodYear:
			s.Year = ps
		}
	}
	return s, nil
}

func periodMetrics(records []Record) PeriodMetrics {
	m := PeriodMetrics{
		Orders:       len(records),
		Revenue:      SumRevenue(records),
		DeliveryFees: SumDeliveryFees(records),
	}
	for _, rec := range records {
		switch {
		case rec.Delivered():
			m.Completed++
		case rec.Cancelled():
			m.Cancelled++
		}
	}
	m.AverageOrderValue = averageValue(m.Revenue, m.Completed)
	m.AverageDeliveryFee = round2(Average(records, deliveryFee, Record.Delivered))
	m.CompletionRate = percentOf(m.Completed, m.Orders)
	m.CancellationRate = percentOf(m.Cancelled, m.Orders)
	return m
}

func deliveryFee(r Record) (float64, bool) {
	return r.DeliveryFee.InexactFloat64(), true
}

// averageValue is revenue per delivered order, rounded to cents.
func averageValue(revenue decimal.Decimal, completed int) decimal.Decimal {
	if completed == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(completed))).Round(2)
}

func rankings(records []Record, n int) (Rankings, error) {
	var r Rankings
	dims := []struct {
		dst *[]GroupTotal
		key KeyFunc
		by  Ranking
	}{
		{&r.Cuisines, ByCuisine, RankByRevenue},
		{&r.Restaurants, ByRestaurant, RankByRevenue},
		{&r.Drivers, ByDriver, RankByOrders},
		{&r.Regions, ByRegion, RankByRevenue},
		{&r.Customers, ByCustomer, RankByRevenue},
		{&r.Categories, ByCategory, RankByRevenue},
		{&r.PaymentMethods, ByPaymentMethod, RankByOrders},
	}
	for _, d := range dims {
		top, err := TopN(Totals(GroupBy(records, d.key)), n, d.by)
		if err != nil {
			return r, err
		}
		*d.dst = top
	}

	items, err := TopN(ItemTotals(ItemLines(records)), n, RankByQuantity)
	if err != nil {
		return r, err
	}
	r.Items = items
	return r, nil
}

// retention classifies every identified customer active in the period as new or returning, using the whole
// scoped batch as order history.
func retention(all, inPeriod []Record, current Range) Retention {
	firstOrder := make(map[string]time.Time)
	for _, rec := range all {
		if !rec.Dated() {
			continue
		}
		key := ByCustomer(rec)
		if key == models.UnknownKey {
			continue
		}
		if first, ok := firstOrder[key]; !ok || rec.CreatedAt.Before(first) {
			firstOrder[key] = rec.CreatedAt
		}
	}

	var ret Retention
	identified := 0
	active := 0
	for _, g := range GroupBy(inPeriod, ByCustomer) {
		if g.Key == models.UnknownKey {
			ret.AnonymousOrders += len(g.Records)
			continue
		}
		active++
		identified += len(g.Records)
		if len(g.Records) > 1 {
			ret.RepeatCustomers++
		}
		if !current.Start.IsZero() && firstOrder[g.Key].Before(current.Start) {
			ret.ReturningCustomers++
		} else {
			ret.NewCustomers++
		}
	}

	ret.Rate = percentOf(ret.ReturningCustomers, active)
	ret.RepeatPurchaseRate = percentOf(ret.RepeatCustomers, active)
	if active > 0 {
		ret.AvgOrdersPerCustomer = round2(float64(identified) / float64(active))
	}
	return ret
}

func durations(inPeriod []Record, fallback time.Duration) Durations {
	return Durations{
		Delivery:    spanStat(inPeriod, func(r Record) (time.Time, time.Time) { return r.ConfirmedAt, r.DeliveredAt }, fallback),
		Preparation: spanStat(inPeriod, func(r Record) (time.Time, time.Time) { return r.ConfirmedAt, r.ReadyAt }, fallback),
	}
}

// spanStat averages end-start in minutes over records carrying both instants. Negative spans are skipped.
func spanStat(records []Record, span func(Record) (time.Time, time.Time), fallback time.Duration) DurationStat {
	if len(records) == 0 {
		return DurationStat{Minutes: round2(fallback.Minutes()), Source: DurationFallback}
	}
	avg, n := mean(records, func(r Record) (float64, bool) {
		start, end := span(r)
		if start.IsZero() || end.IsZero() || end.Before(start) {
			return 0, false
		}
		return end.Sub(start).Minutes(), true
	}, nil)
	if n == 0 {
		return DurationStat{Source: DurationNoSamples}
	}
	return DurationStat{Minutes: round2(avg), Samples: n, Source: DurationMeasured}
}

func hourly(inPeriod []Record, loc *time.Location) []HourBucket {
	buckets := BucketByHourOfDay(inPeriod, loc)
	out := make([]HourBucket, len(buckets))
	for h, recs := range buckets {
		out[h] = HourBucket{Hour: h, Orders: len(recs), Revenue: SumRevenue(recs)}
	}
	return out
}

// daily returns one point per calendar day touched by the range, zero-filled.
func daily(inPeriod []Record, r Range, loc *time.Location) []DailyPoint {
	if r.Start.IsZero() || r.End.IsZero() {
		return []DailyPoint{}
	}
	var points []DailyPoint
	index := make(map[civilDate]int)
	y, m, d := r.Start.In(loc).Date()
	for i := 0; ; i++ {
		day := startOfDay(y, m, d+i, loc)
		if !day.Before(r.End) {
			break
		}
		index[dateOf(day)] = len(points)
		points = append(points, DailyPoint{Date: day, Revenue: decimal.Zero})
	}
	for _, rec := range inPeriod {
		i, ok := index[dateOf(rec.CreatedAt.In(loc))]
		if !ok {
			continue
		}
		points[i].Orders++
		if rec.Delivered() {
			points[i].Revenue = points[i].Revenue.Add(rec.Total)
		}
	}
	return points
}

func lifetime(records []Record, includeUndated bool) LifetimeTotals {
	all := AllTime(records, includeUndated)
	lt := LifetimeTotals{
		Orders:          len(all),
		Revenue:         SumRevenue(all),
		DeliveryFees:    SumDeliveryFees(all),
		IncludesUndated: includeUndated,
	}
	for _, rec := range all {
		if rec.Delivered() {
			lt.Completed++
		}
	}
	lt.AverageOrderValue = averageValue(lt.Revenue, lt.Completed)
	for _, g := range GroupBy(all, ByCustomer) {
		if g.Key != models.UnknownKey {
			lt.Customers++
		}
	}
	return lt
}

func dataQuality(records []Record) DataQuality {
	dq := DataQuality{Records: len(records)}
	for _, rec := range records {
		if !rec.Dated() {
			dq.Undated++
		}
		if rec.Status == models.OrderStatusUnknown {
			dq.UnknownStatus++
		}
		if ByRestaurant(rec) == models.UnknownKey {
			dq.MissingRestaurant++
		}
		if ByCustomer(rec) == models.UnknownKey {
			dq.MissingCustomer++
		}
		if ByCuisine(rec) == models.UnknownKey {
			dq.MissingCuisine++
		}
		if rec.clampedAmount {
			dq.ClampedAmounts++
		}
		dq.DefaultedFields += len(rec.Order.Defaulted)
	}
	return dq
}

func logDataQuality(logger *zap.Logger, scope Scope, dq DataQuality) {
	if dq.Clean() {
		return
	}
	logger.Warn("recovered data defects in order batch",
		zap.String("scope", scope.String()),
		zap.Int("records", dq.Records),
		zap.Int("undated", dq.Undated),
		zap.Int("unknown_status", dq.UnknownStatus),
		zap.Int("missing_restaurant", dq.MissingRestaurant),
		zap.Int("missing_customer", dq.MissingCustomer),
		zap.Int("missing_cuisine", dq.MissingCuisine),
		zap.Int("clamped_amounts", dq.ClampedAmounts),
		zap.Int("defaulted_fields", dq.DefaultedFields),
	)
}
