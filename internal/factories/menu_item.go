package factories

import (
	"github.com/chrisdamba/foodrollup/internal/models"
)

var menuByCuisine = map[string][]string{
	"Italian":       {"Margherita Pizza", "Spaghetti Carbonara", "Lasagna", "Tiramisu"},
	"Indian":        {"Chicken Tikka Masala", "Vegetable Curry", "Naan Bread", "Biryani"},
	"American":      {"Cheeseburger", "Hot Dog", "BBQ Ribs", "Apple Pie"},
	"Japanese":      {"Sushi Roll", "Ramen", "Tempura", "Miso Soup"},
	"Mexican":       {"Tacos", "Burrito", "Guacamole", "Quesadilla"},
	"Chinese":       {"Kung Pao Chicken", "Fried Rice", "Dumplings", "Mapo Tofu"},
	"Thai":          {"Pad Thai", "Green Curry", "Tom Yum Soup", "Mango Sticky Rice"},
	"Greek":         {"Gyros", "Greek Salad", "Moussaka", "Baklava"},
	"French":        {"Coq au Vin", "Beef Bourguignon", "Ratatouille", "Creme Brulee"},
	"Mediterranean": {"Falafel", "Hummus", "Tabbouleh", "Grilled Halloumi"},
}

var menuCategories = []string{"Mains", "Sides", "Desserts", "Drinks"}

type MenuItemFactory struct {
	seeded
}

func NewMenuItemFactory(seed int64) *MenuItemFactory {
	return &MenuItemFactory{seeded: newSeeded(seed)}
}

// CreateMenu builds one item per dish of the restaurant's cuisines and records the ids on the restaurant.
func (mf *MenuItemFactory) CreateMenu(restaurant *models.Restaurant) []*models.MenuItem {
	var items []*models.MenuItem
	for _, cuisine := range restaurant.Cuisines {
		for _, name := range menuByCuisine[cuisine] {
			item := &models.MenuItem{
				ID:           mf.fake.UUID().V4(),
				RestaurantID: restaurant.ID,
				Name:         name,
				Price:        mf.fake.Float64(2, 4, 24),
				PrepTime:     mf.fake.Float64(0, 5, 30),
				Category:     mf.pick(menuCategories),
			}
			restaurant.MenuItems = append(restaurant.MenuItems, item.ID)
			items = append(items, item)
		}
	}
	return items
}
