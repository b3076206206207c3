package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		join_date TIMESTAMPTZ,
		town TEXT,
		preferences TEXT[],
		order_frequency DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS restaurants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		town TEXT,
		cuisines TEXT[]
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT REFERENCES restaurants(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		price NUMERIC(10,2),
		prep_time DOUBLE PRECISION,
		category TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS delivery_partners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		join_date TIMESTAMPTZ,
		rating DOUBLE PRECISION,
		avg_speed DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ,
		confirmed_at TIMESTAMPTZ,
		ready_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT '',
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		delivery_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
		restaurant_id TEXT,
		restaurant_name TEXT,
		customer_id TEXT,
		customer_email TEXT,
		category TEXT,
		cuisine TEXT,
		driver_id TEXT,
		region TEXT,
		payment_method TEXT,
		delivery_address JSONB,
		items JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at DESC NULLS LAST)`,
	ReportsTableDDL,
}

// ReportsTable holds one published report envelope per row.
const ReportsTable = "rollup_reports"

const ReportsTableDDL = `CREATE TABLE IF NOT EXISTS ` + ReportsTable + ` (
	id BIGSERIAL PRIMARY KEY,
	topic TEXT NOT NULL,
	scope TEXT NOT NULL,
	period TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	report JSONB NOT NULL
)`

// EnsureSchema creates the tables the generator seeds and the report loader reads.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}
