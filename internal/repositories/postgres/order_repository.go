package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/rollup"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `
	id, created_at, confirmed_at, ready_at, delivered_at, status,
	total::float8, delivery_fee::float8,
	COALESCE(restaurant_id, ''), COALESCE(restaurant_name, ''),
	COALESCE(customer_id, ''), COALESCE(customer_email, ''),
	COALESCE(category, ''), COALESCE(cuisine, ''), COALESCE(driver_id, ''),
	COALESCE(region, ''), COALESCE(payment_method, ''),
	COALESCE(delivery_address, '{}'::jsonb), COALESCE(items, '[]'::jsonb)`

// LoadOrders returns the most recent orders first. Orders without a creation time come last.
func (r *OrderRepository) LoadOrders(ctx context.Context, limit int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC NULLS LAST, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var o models.Order
		var created, confirmed, ready, delivered *time.Time
		var status string
		err := rows.Scan(
			&o.ID,
			&created,
			&confirmed,
			&ready,
			&delivered,
			&status,
			&o.Total,
			&o.DeliveryFee,
			&o.RestaurantID,
			&o.RestaurantName,
			&o.CustomerID,
			&o.CustomerEmail,
			&o.Category,
			&o.Cuisine,
			&o.DriverID,
			&o.Region,
			&o.PaymentMethod,
			&o.Address,
			&o.Items,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning order row: %w", err)
		}

		o.Status = models.OrderStatus(status)
		o.CreatedAt = instantValue(created)
		o.ConfirmedAt = instantValue(confirmed)
		o.ReadyAt = instantValue(ready)
		o.DeliveredAt = instantValue(delivered)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []models.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO orders (
            id, created_at, confirmed_at, ready_at, delivered_at, status,
            total, delivery_fee, restaurant_id, restaurant_name, customer_id,
            customer_email, category, cuisine, driver_id, region,
            payment_method, delivery_address, items
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
            $11, $12, $13, $14, $15, $16, $17, $18, $19
        )
        ON CONFLICT (id) DO NOTHING`

	for _, o := range orders {
		_, err = tx.Exec(ctx, stmt,
			o.ID,
			instant(o.CreatedAt),
			instant(o.ConfirmedAt),
			instant(o.ReadyAt),
			instant(o.DeliveredAt),
			string(o.Status),
			o.Total,
			o.DeliveryFee,
			o.RestaurantID,
			o.RestaurantName,
			o.CustomerID,
			o.CustomerEmail,
			o.Category,
			o.Cuisine,
			o.DriverID,
			o.Region,
			o.PaymentMethod,
			o.Address,
			o.Items,
		)
		if err != nil {
			return fmt.Errorf("error inserting order %s: %w", o.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE orders")
	return err
}

// instant stores any supported timestamp shape as a nullable timestamptz.
func instant(v any) *time.Time {
	t, ok := rollup.NormalizeTime(v)
	if !ok {
		return nil
	}
	return &t
}

func instantValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
