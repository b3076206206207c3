package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/repositories/postgres"
)

const maxInsertAttempts = 3

// PostgresOutput stores each envelope as a row of the reports table.
type PostgresOutput struct {
	db *sql.DB
}

func NewPostgresOutput(ctx context.Context, config *models.DatabaseConfig) (*PostgresOutput, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	p := &PostgresOutput{db: db}
	if _, err := db.ExecContext(ctx, postgres.ReportsTableDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s: %w", postgres.ReportsTable, err)
	}
	return p, nil
}

var insertReport = `INSERT INTO ` + pq.QuoteIdentifier(postgres.ReportsTable) +
	` (topic, scope, period, generated_at, report) VALUES ($1, $2, $3, $4, $5)`

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	env, err := decodeEnvelope(msg)
	if err != nil {
		return err
	}
	generatedAt := time.Unix(env.Timestamp, 0).UTC()

	return p.ExecTxWithRetry(func(tx *sql.Tx) error {
		_, err := tx.Exec(insertReport, topic, env.Scope, env.Period, generatedAt, string(msg))
		return err
	}, maxInsertAttempts)
}

func (p *PostgresOutput) ExecTx(fn func(*sql.Tx) error) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *PostgresOutput) ExecTxWithRetry(fn func(*sql.Tx) error, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = p.ExecTx(fn)
		if err == nil {
			return nil
		}
		if !isRetryableError(err) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

func (p *PostgresOutput) Close() error {
	return p.db.Close()
}

func isRetryableError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"55P03": // lock_not_available
		return true
	}
	return false
}
