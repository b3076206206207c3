package factories

import (
	"time"

	"github.com/lucsky/cuid"

	"github.com/chrisdamba/foodrollup/internal/models"
)

type DeliveryPartnerFactory struct {
	seeded
}

func NewDeliveryPartnerFactory(seed int64) *DeliveryPartnerFactory {
	return &DeliveryPartnerFactory{seeded: newSeeded(seed)}
}

func (df *DeliveryPartnerFactory) CreateDeliveryPartner(start time.Time) *models.DeliveryPartner {
	return &models.DeliveryPartner{
		ID:       cuid.New(),
		Name:     df.fake.Person().Name(),
		JoinDate: df.fake.Time().TimeBetween(start.AddDate(-1, 0, 0), start),
		Rating:   df.fake.Float64(1, 1, 5),
		AvgSpeed: df.fake.Float64(1, 20, 60),
	}
}
