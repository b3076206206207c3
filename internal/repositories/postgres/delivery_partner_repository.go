package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodrollup/internal/models"
)

type DeliveryPartnerRepository struct {
	pool *pgxpool.Pool
}

func NewDeliveryPartnerRepository(pool *pgxpool.Pool) *DeliveryPartnerRepository {
	return &DeliveryPartnerRepository{pool: pool}
}

func (r *DeliveryPartnerRepository) BulkCreate(ctx context.Context, partners []*models.DeliveryPartner) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO delivery_partners (id, name, join_date, rating, avg_speed)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING
    `
	for _, partner := range partners {
		_, err = tx.Exec(ctx, query,
			partner.ID,
			partner.Name,
			partner.JoinDate,
			partner.Rating,
			partner.AvgSpeed,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *DeliveryPartnerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM delivery_partners").Scan(&count)
	return count, err
}

func (r *DeliveryPartnerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE delivery_partners")
	return err
}
