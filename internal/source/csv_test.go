package source_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/petasbytes/expense-agent/internal/source"
)

const sampleCSV = `date,amount,category,vendor
2025-12-01,45.20,Groceries,Whole Foods
2025-12-03,12.50,Dining,Starbucks
2025-12-4,9.99,,Corner Shop
`

func TestReadCSV_Strict(t *testing.T) {
	recs, err := source.ReadCSV(context.Background(), strings.NewReader(sampleCSV), "test.csv", source.Options{Strict: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records: got %d want 3", len(recs))
	}
	if recs[2].Date.String() != "2025-12-04" || recs[2].Category != "" || recs[2].CategoryOrDefault() != "Uncategorized" {
		t.Fatalf("unexpected third record: %+v", recs[2])
	}
	if recs[0].Amount != 45.20 || recs[0].Vendor != "Whole Foods" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
}

func TestReadCSV_ColumnsInAnyOrder(t *testing.T) {
	in := "Vendor,Amount,Date\nDelta,1500,2025-11-20\n"
	recs, err := source.ReadCSV(context.Background(), strings.NewReader(in), "x", source.Options{Strict: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 1 || recs[0].Vendor != "Delta" || recs[0].Amount != 1500 || recs[0].Category != "" {
		t.Fatalf("unexpected: %+v", recs)
	}
}

func TestReadCSV_BadRows(t *testing.T) {
	in := sampleCSV + "2025-13-01,5,Dining,X\n2025-12-05,-3,Dining,Y\n2025-12-06,abc,Dining,Z\n"

	_, err := source.ReadCSV(context.Background(), strings.NewReader(in), "bad.csv", source.Options{Strict: true, Logger: zerolog.Nop()})
	if !errors.Is(err, source.ErrInvalidRecord) {
		t.Fatalf("strict: expected ErrInvalidRecord, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 5") {
		t.Fatalf("strict: expected row number in error, got %v", err)
	}

	var logs bytes.Buffer
	recs, err := source.ReadCSV(context.Background(), strings.NewReader(in), "bad.csv", source.Options{Logger: zerolog.New(&logs)})
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("lenient: got %d records want 3", len(recs))
	}
	if got := strings.Count(logs.String(), "skipping invalid row"); got != 3 {
		t.Fatalf("lenient: got %d skip logs want 3\n%s", got, logs.String())
	}
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := source.ReadCSV(context.Background(), strings.NewReader("date,category\n"), "x", source.Options{Logger: zerolog.Nop()})
	if err == nil || !strings.Contains(err.Error(), "amount, vendor") {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if _, err := source.ReadCSV(context.Background(), strings.NewReader(""), "x", source.Options{Logger: zerolog.Nop()}); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLoadStore_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("prep: %v", err)
	}
	p, err := source.New(source.BackendCSV, path, source.Options{Strict: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	store, err := source.LoadStore(context.Background(), p)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("store len: got %d want 3", store.Len())
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	if _, err := source.New("sheets", "x", source.Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseRecord(t *testing.T) {
	cases := []struct {
		date, amount string
		ok           bool
	}{
		{"2025-12-01", "10", true},
		{" 2025-12-01 ", " 0 ", true},
		{"2025-02-30", "10", false},
		{"", "10", false},
		{"2025-12-01", "NaN", false},
		{"2025-12-01", "-0.01", false},
		{"2025-12-01", "", false},
	}
	for _, c := range cases {
		_, err := source.ParseRecord(c.date, c.amount, "", "v")
		if (err == nil) != c.ok {
			t.Errorf("ParseRecord(%q, %q): err=%v want ok=%v", c.date, c.amount, err, c.ok)
		}
		if err != nil && !errors.Is(err, source.ErrInvalidRecord) {
			t.Errorf("ParseRecord(%q, %q): error does not wrap ErrInvalidRecord: %v", c.date, c.amount, err)
		}
	}
}
