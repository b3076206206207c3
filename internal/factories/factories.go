package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
)

// seeded pairs a faker and a math/rand source built from the same seed, so a given seed
// replays the same names, prices and timings. IDs come from cuid and are unique per run.
type seeded struct {
	fake faker.Faker
	rng  *rand.Rand
}

func newSeeded(seed int64) seeded {
	return seeded{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (s seeded) pick(options []string) string {
	return options[s.rng.Intn(len(options))]
}

// round2 keeps generated money at pence precision.
func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
