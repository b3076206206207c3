package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodrollup/internal/models"
)

type RestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func (r *RestaurantRepository) BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, restaurant := range restaurants {
		query := `
            INSERT INTO restaurants (id, name, town, cuisines)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (id) DO NOTHING
        `
		_, err = tx.Exec(ctx, query,
			restaurant.ID,
			restaurant.Name,
			restaurant.Town,
			restaurant.Cuisines,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count)
	return count, err
}

// DeleteAll cascades to menu items.
func (r *RestaurantRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE restaurants CASCADE")
	return err
}
