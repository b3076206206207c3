package factories

import (
	"time"

	"github.com/lucsky/cuid"

	"github.com/chrisdamba/foodrollup/internal/models"
)

var segmentFrequency = map[string]float64{
	"frequent":   0.5,
	"regular":    0.2,
	"occasional": 0.05,
}

type UserFactory struct {
	seeded
}

func NewUserFactory(seed int64) *UserFactory {
	return &UserFactory{seeded: newSeeded(seed)}
}

func (uf *UserFactory) assignUserSegment() string {
	r := uf.rng.Float64()
	if r < 0.2 {
		return "frequent"
	} else if r < 0.6 {
		return "regular"
	}
	return "occasional"
}

func (uf *UserFactory) CreateUser(start time.Time) *models.User {
	segment := uf.assignUserSegment()
	return &models.User{
		ID:             cuid.New(),
		Name:           uf.fake.Person().Name(),
		Email:          uf.fake.Internet().Email(),
		JoinDate:       uf.fake.Time().TimeBetween(start.AddDate(-1, 0, 0), start),
		Town:           uf.fake.Address().City(),
		Preferences:    uf.preferences(),
		OrderFrequency: segmentFrequency[segment],
	}
}

func (uf *UserFactory) preferences() []string {
	count := uf.rng.Intn(3) + 1
	prefs := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for len(prefs) < count {
		c := uf.pick(allCuisines)
		if !seen[c] {
			seen[c] = true
			prefs = append(prefs, c)
		}
	}
	return prefs
}
