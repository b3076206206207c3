package factories

import (
	"github.com/lucsky/cuid"

	"github.com/chrisdamba/foodrollup/internal/models"
)

var allCuisines = []string{"Italian", "Indian", "American", "Japanese", "Mexican", "Chinese", "Thai", "Greek", "French", "Mediterranean"}

type RestaurantFactory struct {
	seeded
}

func NewRestaurantFactory(seed int64) *RestaurantFactory {
	return &RestaurantFactory{seeded: newSeeded(seed)}
}

// CreateRestaurant picks one to three cuisines. The first one is what orders are tagged with.
func (rf *RestaurantFactory) CreateRestaurant(towns []string) *models.Restaurant {
	town := rf.fake.Address().City()
	if len(towns) > 0 {
		town = rf.pick(towns)
	}
	count := rf.rng.Intn(3) + 1
	cuisines := make([]string, 0, count)
	for _, i := range rf.rng.Perm(len(allCuisines))[:count] {
		cuisines = append(cuisines, allCuisines[i])
	}
	return &models.Restaurant{
		ID:        cuid.New(),
		Name:      rf.fake.Company().Name(),
		Town:      town,
		Cuisines:  cuisines,
		MenuItems: make([]string, 0),
	}
}
