package factories

import (
	"fmt"
	"sort"
	"time"

	"github.com/chrisdamba/foodrollup/internal/models"
)

// Dataset is a generated catalogue plus its order history.
type Dataset struct {
	Users       []*models.User
	Restaurants []*models.Restaurant
	MenuItems   []*models.MenuItem
	Partners    []*models.DeliveryPartner
	Orders      []models.Order
}

// Generate builds a dataset for cfg. A zero EndDate means now and a zero StartDate means 90 days before the end.
// progress, when set, is called once per generated order.
func Generate(cfg models.GeneratorConfig, now time.Time, progress func()) (*Dataset, error) {
	if cfg.Orders < 0 || cfg.Users < 1 || cfg.Restaurants < 1 {
		return nil, fmt.Errorf("generator needs at least one user and restaurant and a non-negative order count")
	}
	if cfg.CancelRate < 0 || cfg.CancelRate > 1 || cfg.UndatedRate < 0 || cfg.UndatedRate > 1 {
		return nil, fmt.Errorf("generator rates must be within [0, 1]")
	}
	end := cfg.EndDate
	if end.IsZero() {
		end = now
	}
	start := cfg.StartDate
	if start.IsZero() {
		start = end.AddDate(0, 0, -90)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("generator start %s must be before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	ds := &Dataset{}
	users := NewUserFactory(cfg.Seed)
	for i := 0; i < cfg.Users; i++ {
		ds.Users = append(ds.Users, users.CreateUser(start))
	}

	towns := make([]string, 0, len(ds.Users))
	for _, u := range ds.Users {
		towns = append(towns, u.Town)
	}

	restaurants := NewRestaurantFactory(cfg.Seed + 1)
	menus := NewMenuItemFactory(cfg.Seed + 2)
	menuByRestaurant := make(map[string][]*models.MenuItem, cfg.Restaurants)
	for i := 0; i < cfg.Restaurants; i++ {
		r := restaurants.CreateRestaurant(towns)
		menu := menus.CreateMenu(r)
		menuByRestaurant[r.ID] = menu
		ds.Restaurants = append(ds.Restaurants, r)
		ds.MenuItems = append(ds.MenuItems, menu...)
	}

	partners := NewDeliveryPartnerFactory(cfg.Seed + 3)
	for i := 0; i < cfg.Partners; i++ {
		ds.Partners = append(ds.Partners, partners.CreateDeliveryPartner(start))
	}

	orders := NewOrderFactory(cfg.Seed+4, cfg.CancelRate, cfg.UndatedRate)
	for i := 0; i < cfg.Orders; i++ {
		user := ds.Users[orders.rng.Intn(len(ds.Users))]
		restaurant := ds.Restaurants[orders.rng.Intn(len(ds.Restaurants))]
		var partner *models.DeliveryPartner
		if len(ds.Partners) > 0 {
			partner = ds.Partners[orders.rng.Intn(len(ds.Partners))]
		}
		created := orders.CreatedAt(start, end)
		ds.Orders = append(ds.Orders, orders.CreateOrder(user, restaurant, menuByRestaurant[restaurant.ID], partner, created, end))
		if progress != nil {
			progress()
		}
	}

	// newest first, undated last, matching what the database source returns
	sort.SliceStable(ds.Orders, func(i, j int) bool {
		a, aok := ds.Orders[i].CreatedAt.(time.Time)
		b, bok := ds.Orders[j].CreatedAt.(time.Time)
		if aok != bok {
			return aok
		}
		return aok && a.After(b)
	})
	return ds, nil
}
