package repositories

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeTable struct {
	name    string
	rows    int
	failOn  string
	cleared *[]string
}

func (f *fakeTable) Count(context.Context) (int, error) {
	if f.failOn == "count" {
		return 0, errors.New("count failed")
	}
	return f.rows, nil
}

func (f *fakeTable) DeleteAll(context.Context) error {
	if f.failOn == "delete" {
		return errors.New("delete failed")
	}
	*f.cleared = append(*f.cleared, f.name)
	f.rows = 0
	return nil
}

func fakeTables(cleared *[]string, names ...string) []NamedTable {
	tables := make([]NamedTable, 0, len(names))
	for i, name := range names {
		tables = append(tables, NamedTable{Name: name, Table: &fakeTable{name: name, rows: i + 1, cleared: cleared}})
	}
	return tables
}

func TestResetClearsDependentsFirst(t *testing.T) {
	var cleared []string
	tables := fakeTables(&cleared, "users", "restaurants", "menu_items", "delivery_partners", "orders")

	if err := Reset(context.Background(), tables); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"orders", "delivery_partners", "menu_items", "restaurants", "users"}
	if !reflect.DeepEqual(cleared, want) {
		t.Fatalf("expected %v, got %v", want, cleared)
	}

	counts, err := Counts(context.Background(), tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range counts {
		if c.Rows != 0 {
			t.Fatalf("expected %s to be empty after reset, got %d rows", c.Name, c.Rows)
		}
	}
}

func TestResetStopsAtFirstFailure(t *testing.T) {
	var cleared []string
	tables := fakeTables(&cleared, "users", "restaurants", "orders")
	tables[1].Table.(*fakeTable).failOn = "delete"

	err := Reset(context.Background(), tables)
	if err == nil || err.Error() != "error clearing restaurants: delete failed" {
		t.Fatalf("expected restaurants failure, got %v", err)
	}
	if !reflect.DeepEqual(cleared, []string{"orders"}) {
		t.Fatalf("expected only orders to be cleared, got %v", cleared)
	}
}

func TestCounts(t *testing.T) {
	var cleared []string
	tables := fakeTables(&cleared, "users", "orders")

	counts, err := Counts(context.Background(), tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TableCount{{Name: "users", Rows: 1}, {Name: "orders", Rows: 2}}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("expected %v, got %v", want, counts)
	}

	tables[1].Table.(*fakeTable).failOn = "count"
	if _, err := Counts(context.Background(), tables); err == nil {
		t.Fatalf("expected count failure to surface")
	}
}
