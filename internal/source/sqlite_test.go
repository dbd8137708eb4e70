package source_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/petasbytes/expense-agent/internal/expense"
	"github.com/petasbytes/expense-agent/internal/source"
)

func seedSQLite(t *testing.T, records []expense.Record, raw ...string) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.db")
	db, err := source.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()
	if err := source.InsertRecords(ctx, db, records); err != nil {
		t.Fatalf("InsertRecords: %v", err)
	}
	for _, q := range raw {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("exec %q: %v", q, err)
		}
	}
	return path
}

func TestSQLiteSource_RoundTrip(t *testing.T) {
	want := []expense.Record{
		{Date: expense.MustParseDate("2025-12-01"), Amount: 45.2, Category: "Groceries", Vendor: "Whole Foods"},
		{Date: expense.MustParseDate("2025-12-02"), Amount: 7, Category: "", Vendor: "Kiosk"},
	}
	path := seedSQLite(t, want)

	p, err := source.New(source.BackendSQLite, path, source.Options{Strict: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("records: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Date.Equal(want[i].Date) || got[i].Amount != want[i].Amount || got[i].Category != want[i].Category || got[i].Vendor != want[i].Vendor {
			t.Errorf("record %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestSQLiteSource_InvalidRows(t *testing.T) {
	good := []expense.Record{{Date: expense.MustParseDate("2025-12-01"), Amount: 1, Vendor: "A"}}
	path := seedSQLite(t, good,
		`INSERT INTO expenses (date, amount, category, vendor) VALUES ('not-a-date', 5, 'Dining', 'B')`,
		`INSERT INTO expenses (date, amount, category, vendor) VALUES ('2025-12-03', 'abc', 'Dining', 'C')`,
		`INSERT INTO expenses (date, amount, category, vendor) VALUES ('2025-12-04', -2, 'Dining', 'D')`,
	)

	strict := &source.SQLiteSource{Path: path, Options: source.Options{Strict: true, Logger: zerolog.Nop()}}
	if _, err := strict.Load(context.Background()); !errors.Is(err, source.ErrInvalidRecord) {
		t.Fatalf("strict: expected ErrInvalidRecord, got %v", err)
	}

	lenient := &source.SQLiteSource{Path: path, Options: source.Options{Logger: zerolog.Nop()}}
	recs, err := lenient.Load(context.Background())
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if len(recs) != 1 || recs[0].Vendor != "A" {
		t.Fatalf("lenient: unexpected %+v", recs)
	}
}

func TestSQLiteSource_EmptyDatabase(t *testing.T) {
	path := seedSQLite(t, nil)
	recs, err := (&source.SQLiteSource{Path: path, Options: source.Options{Strict: true, Logger: zerolog.Nop()}}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}
}
