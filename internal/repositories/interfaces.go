package repositories

import (
	"context"

	"github.com/chrisdamba/foodrollup/internal/models"
)

// OrderSource hands the rollup engine a bounded batch of orders. limit <= 0 means no cap.
type OrderSource interface {
	LoadOrders(ctx context.Context, limit int) ([]models.Order, error)
}

// Table is the maintenance surface every seeded table shares.
type Table interface {
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type OrderRepository interface {
	OrderSource
	Table
	BulkCreate(ctx context.Context, orders []models.Order) error
}

type UserRepository interface {
	Table
	BulkCreate(ctx context.Context, users []*models.User) error
}

type RestaurantRepository interface {
	Table
	BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error
}

type MenuItemRepository interface {
	Table
	BulkCreate(ctx context.Context, items []*models.MenuItem) error
}

type DeliveryPartnerRepository interface {
	Table
	BulkCreate(ctx context.Context, partners []*models.DeliveryPartner) error
}
