package rollup

import (
	"time"

	"github.com/shopspring/decimal"
)

// Duration sources.
const (
	DurationMeasured  = "measured"
	DurationFallback  = "fallback"
	DurationNoSamples = "no_samples"
)

type Report struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	Period      Period      `json:"period"`
	Alignment   Alignment   `json:"alignment"`
	Scope       Scope       `json:"scope"`
	Current     Range       `json:"currentRange"`
	Previous    Range       `json:"previousRange"`
	// Empty is set when the scoped batch held no records at all.
	Empty bool `json:"empty"`

	Summary     Summary        `json:"summary"`
	Selected    PeriodMetrics  `json:"selected"`
	Statuses    []StatusCount  `json:"statusDistribution"`
	Rankings    Rankings       `json:"rankings"`
	Retention   Retention      `json:"retention"`
	Durations   Durations      `json:"durations"`
	Hourly      []HourBucket   `json:"hourly"`
	Daily       []DailyPoint   `json:"daily"`
	Lifetime    LifetimeTotals `json:"lifetime"`
	DataQuality DataQuality    `json:"dataQuality"`
}

type Summary struct {
	Today PeriodSummary `json:"today"`
	Week  PeriodSummary `json:"week"`
	Month PeriodSummary `json:"month"`
	Year  PeriodSummary `json:"year"`
}

type PeriodSummary struct {
	Current  Range  `json:"currentRange"`
	Previous Range  `json:"previousRange"`
	Revenue  Change `json:"revenue"`
	Orders   Change `json:"orders"`
}

// PeriodMetrics are the scalar figures of the selected period.
type PeriodMetrics struct {
	Orders            int             `json:"orders"`
	Completed         int             `json:"completed"`
	Cancelled         int             `json:"cancelled"`
	Revenue           decimal.Decimal `json:"revenue"`
	DeliveryFees      decimal.Decimal `json:"deliveryFees"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	CompletionRate    float64         `json:"completionRate"`
	CancellationRate  float64         `json:"cancellationRate"`

	// AverageDeliveryFee is the mean fee charged on delivered orders.
	AverageDeliveryFee float64 `json:"averageDeliveryFee"`
}

type Rankings struct {
	Cuisines       []GroupTotal `json:"cuisines"`
	Restaurants    []GroupTotal `json:"restaurants"`
	Items          []GroupTotal `json:"items"`
	Drivers        []GroupTotal `json:"drivers"`
	Regions        []GroupTotal `json:"regions"`
	Customers      []GroupTotal `json:"customers"`
	Categories     []GroupTotal `json:"categories"`
	PaymentMethods []GroupTotal `json:"paymentMethods"`
}

type Retention struct {
	NewCustomers         int     `json:"newCustomers"`
	ReturningCustomers   int     `json:"returningCustomers"`
	Rate                 float64 `json:"rate"`
	RepeatCustomers      int     `json:"repeatCustomers"`
	RepeatPurchaseRate   float64 `json:"repeatPurchaseRate"`
	AvgOrdersPerCustomer float64 `json:"avgOrdersPerCustomer"`
	AnonymousOrders      int     `json:"anonymousOrders"`
}

// DurationStat is an average span in minutes. Source tells measured values apart from the configured fallback.
type DurationStat struct {
	Minutes float64 `json:"minutes"`
	Samples int     `json:"samples"`
	Source  string  `json:"source"`
}

type Durations struct {
	Delivery    DurationStat `json:"delivery"`
	Preparation DurationStat `json:"preparation"`
}

type HourBucket struct {
	Hour    int             `json:"hour"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DailyPoint struct {
	Date    time.Time       `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type LifetimeTotals struct {
	Orders            int             `json:"orders"`
	Completed         int             `json:"completed"`
	Revenue           decimal.Decimal `json:"revenue"`
	DeliveryFees      decimal.Decimal `json:"deliveryFees"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	Customers         int             `json:"customers"`
	IncludesUndated   bool            `json:"includesUndated"`
}

// DataQuality counts recovered data defects in the scoped batch.
type DataQuality struct {
	Records           int `json:"records"`
	Undated           int `json:"undated"`
	UnknownStatus     int `json:"unknownStatus"`
	MissingRestaurant int `json:"missingRestaurant"`
	MissingCustomer   int `json:"missingCustomer"`
	MissingCuisine    int `json:"missingCuisine"`
	ClampedAmounts    int `json:"clampedAmounts"`
	DefaultedFields   int `json:"defaultedFields"`
}

func (d DataQuality) Clean() bool {
	return d.Undated == 0 && d.UnknownStatus == 0 && d.MissingRestaurant == 0 &&
		d.MissingCustomer == 0 && d.MissingCuisine == 0 && d.ClampedAmounts == 0 && d.DefaultedFields == 0
}
