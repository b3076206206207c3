package repositories

import (
	"context"
	"fmt"
)

// NamedTable pairs a table with the name used in logs and errors.
type NamedTable struct {
	Name  string
	Table Table
}

// TableCount is one row count reported after seeding.
type TableCount struct {
	Name string
	Rows int
}

// Reset empties tables given in insert order, walking them backwards so dependents go before the rows they
// reference. It stops at the first failure.
func Reset(ctx context.Context, tables []NamedTable) error {
	for i := len(tables) - 1; i >= 0; i-- {
		if err := tables[i].Table.DeleteAll(ctx); err != nil {
			return fmt.Errorf("error clearing %s: %w", tables[i].Name, err)
		}
	}
	return nil
}

func Counts(ctx context.Context, tables []NamedTable) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		n, err := t.Table.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("error counting %s: %w", t.Name, err)
		}
		counts = append(counts, TableCount{Name: t.Name, Rows: n})
	}
	return counts, nil
}
