package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/repositories"
)

// Store groups the repositories that share one connection pool.
type Store struct {
	Pool        *pgxpool.Pool
	Orders      *OrderRepository
	Users       *UserRepository
	Restaurants *RestaurantRepository
	MenuItems   *MenuItemRepository
	Partners    *DeliveryPartnerRepository
}

func Open(ctx context.Context, cfg models.DatabaseConfig) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return &Store{
		Pool:        pool,
		Orders:      NewOrderRepository(pool),
		Users:       NewUserRepository(pool),
		Restaurants: NewRestaurantRepository(pool),
		MenuItems:   NewMenuItemRepository(pool),
		Partners:    NewDeliveryPartnerRepository(pool),
	}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

// Tables lists the seeded tables in insert order: referenced rows before the rows that point at them.
func (s *Store) Tables() []repositories.NamedTable {
	return []repositories.NamedTable{
		{Name: "users", Table: s.Users},
		{Name: "restaurants", Table: s.Restaurants},
		{Name: "menu_items", Table: s.MenuItems},
		{Name: "delivery_partners", Table: s.Partners},
		{Name: "orders", Table: s.Orders},
	}
}
