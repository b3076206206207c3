package models

// Order is one placed food order as supplied by the data store. Timestamps are kept in whatever shape the
// store produced (time.Time, RFC3339 string, unix seconds/millis, {seconds,nanoseconds} maps); the rollup
// engine normalises them in one place.
type Order struct {
	ID             string      `json:"id" mapstructure:"id"`
	CreatedAt      any         `json:"createdAt,omitempty" mapstructure:"createdAt"`
	ConfirmedAt    any         `json:"confirmedAt,omitempty" mapstructure:"confirmedAt"`
	ReadyAt        any         `json:"readyAt,omitempty" mapstructure:"readyAt"`
	DeliveredAt    any         `json:"deliveredAt,omitempty" mapstructure:"deliveredAt"`
	Status         OrderStatus `json:"status" mapstructure:"status"`
	Total          float64     `json:"total" mapstructure:"total"`
	DeliveryFee    float64     `json:"deliveryFee" mapstructure:"deliveryFee"`
	RestaurantID   string      `json:"restaurantId,omitempty" mapstructure:"restaurantId"`
	RestaurantName string      `json:"restaurantName,omitempty" mapstructure:"restaurantName"`
	CustomerID     string      `json:"customerId,omitempty" mapstructure:"customerId"`
	CustomerEmail  string      `json:"customerEmail,omitempty" mapstructure:"customerEmail"`
	Category       string      `json:"category,omitempty" mapstructure:"category"`
	Cuisine        string      `json:"cuisine,omitempty" mapstructure:"cuisine"`
	DriverID       string      `json:"driverId,omitempty" mapstructure:"driverId"`
	Region         string      `json:"region,omitempty" mapstructure:"region"`
	PaymentMethod  string      `json:"paymentMethod,omitempty" mapstructure:"paymentMethod"` // e.g., "card", "cash", "wallet"
	Address        Address     `json:"deliveryAddress" mapstructure:"deliveryAddress"`
	Items          []OrderItem `json:"items" mapstructure:"items"`

	// Defaulted names the fields a source could not read and left at their zero value.
	Defaulted []string `json:"-" mapstructure:"-"`
}

type OrderItem struct {
	Name         string  `json:"name" mapstructure:"name"`
	Quantity     int     `json:"quantity" mapstructure:"quantity"`
	UnitPrice    float64 `json:"unitPrice" mapstructure:"unitPrice"`
	LineSubtotal float64 `json:"lineSubtotal" mapstructure:"lineSubtotal"`
}
