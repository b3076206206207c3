package factories

import (
	"time"

	"github.com/lucsky/cuid"

	"github.com/chrisdamba/foodrollup/internal/models"
)

// mealHours weights order creation towards lunch and dinner.
var mealHours = []int{8, 11, 12, 12, 13, 13, 14, 17, 18, 18, 19, 19, 19, 20, 20, 21, 22}

var paymentMethods = []string{"card", "card", "card", "cash", "wallet"}

// OrderFactory produces orders with consistent lifecycle timestamps.
type OrderFactory struct {
	seeded
	cancelRate  float64
	undatedRate float64
}

func NewOrderFactory(seed int64, cancelRate, undatedRate float64) *OrderFactory {
	return &OrderFactory{seeded: newSeeded(seed), cancelRate: cancelRate, undatedRate: undatedRate}
}

// CreatedAt draws a meal-time instant on a random day of [start, end).
func (of *OrderFactory) CreatedAt(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	day := start.AddDate(0, 0, of.rng.Intn(days))
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	t := midnight.Add(time.Duration(mealHours[of.rng.Intn(len(mealHours))])*time.Hour +
		time.Duration(of.rng.Intn(3600))*time.Second)
	if t.Before(start) || !t.Before(end) {
		t = start.Add(time.Duration(of.rng.Int63n(int64(end.Sub(start)))))
	}
	return t
}

// CreateOrder builds an order placed at created and advances it through the lifecycle up to now.
// menu must not be empty.
func (of *OrderFactory) CreateOrder(user *models.User, restaurant *models.Restaurant, menu []*models.MenuItem,
	partner *models.DeliveryPartner, created, now time.Time) models.Order {
	order := models.Order{
		ID:             cuid.New(),
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		CustomerID:     user.ID,
		CustomerEmail:  user.Email,
		Cuisine:        restaurant.Cuisines[0],
		Region:         restaurant.Town,
		PaymentMethod:  of.pick(paymentMethods),
		DeliveryFee:    of.fake.Float64(2, 1, 5),
		Address: models.Address{
			Line1:    of.fake.Address().StreetAddress(),
			City:     user.Town,
			Postcode: of.fake.Address().PostCode(),
		},
	}

	var subtotal, prep float64
	lines := of.rng.Intn(3) + 1
	for i := 0; i < lines; i++ {
		item := menu[of.rng.Intn(len(menu))]
		qty := of.rng.Intn(3) + 1
		line := round2(float64(qty) * item.Price)
		order.Items = append(order.Items, models.OrderItem{
			Name:         item.Name,
			Quantity:     qty,
			UnitPrice:    item.Price,
			LineSubtotal: line,
		})
		if order.Category == "" {
			order.Category = item.Category
		}
		subtotal += line
		if item.PrepTime > prep {
			prep = item.PrepTime
		}
	}
	order.Total = round2(subtotal + order.DeliveryFee)

	if of.rng.Float64() < of.undatedRate {
		order.Status = models.OrderStatusDelivered
		return order
	}
	order.CreatedAt = created

	if of.rng.Float64() < of.cancelRate {
		order.Status = models.OrderStatusCancelled
		return order
	}

	confirmed := created.Add(time.Duration(of.rng.Intn(240)+30) * time.Second)
	ready := confirmed.Add(time.Duration(prep+float64(of.rng.Intn(10))) * time.Minute)
	delivered := ready.Add(time.Duration(of.rng.Intn(30)+10) * time.Minute)
	if partner != nil {
		order.DriverID = partner.ID
	}

	switch {
	case !confirmed.Before(now):
		order.Status = models.OrderStatusPending
	case !ready.Before(now):
		order.Status = models.OrderStatusPreparing
		order.ConfirmedAt = confirmed
	case !delivered.Before(now):
		order.Status = models.OrderStatusOutForDelivery
		order.ConfirmedAt = confirmed
		order.ReadyAt = ready
	default:
		order.Status = models.OrderStatusDelivered
		order.ConfirmedAt = confirmed
		order.ReadyAt = ready
		order.DeliveredAt = delivered
	}
	return order
}
