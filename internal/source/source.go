// Package source loads expense records from CSV files or SQLite databases.
//
// Every provider enforces the same row contract before handing records to
// expense.NewStore: a valid calendar date and a finite, non-negative amount.
// In strict mode the first bad row fails the load; otherwise bad rows are
// logged and skipped.
package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/petasbytes/expense-agent/internal/expense"
)

// ErrInvalidRecord marks a row that breaks the record contract.
var ErrInvalidRecord = errors.New("invalid record")

// Provider returns validated records.
type Provider interface {
	Load(ctx context.Context) ([]expense.Record, error)
}

// Options control how providers treat bad rows.
type Options struct {
	Strict bool
	Logger zerolog.Logger
}

// Backends understood by New.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// New returns the provider for backend reading from path.
func New(backend, path string, opts Options) (Provider, error) {
	switch backend {
	case BackendCSV:
		return &CSVSource{Path: path, Options: opts}, nil
	case BackendSQLite:
		return &SQLiteSource{Path: path, Options: opts}, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", backend)
	}
}

// LoadStore loads records from p into a new store.
func LoadStore(ctx context.Context, p Provider) (*expense.Store, error) {
	records, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return expense.NewStore(records)
}

// ParseRecord builds a record from raw column values.
func ParseRecord(date, amount, category, vendor string) (expense.Record, error) {
	d, err := expense.ParseDate(date)
	if err != nil {
		return expense.Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return expense.Record{}, fmt.Errorf("%w: amount %q is not a number", ErrInvalidRecord, amount)
	}
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return expense.Record{}, fmt.Errorf("%w: amount %q is not finite", ErrInvalidRecord, amount)
	}
	if a < 0 {
		return expense.Record{}, fmt.Errorf("%w: amount %v is negative", ErrInvalidRecord, a)
	}
	return expense.Record{
		Date:     d,
		Amount:   a,
		Category: strings.TrimSpace(category),
		Vendor:   strings.TrimSpace(vendor),
	}, nil
}

// rowCollector applies the strict/lenient policy shared by providers.
type rowCollector struct {
	opts    Options
	origin  string
	records []expense.Record
	skipped int
}

func (c *rowCollector) add(row int, rec expense.Record, err error) error {
	if err == nil {
		c.records = append(c.records, rec)
		return nil
	}
	if c.opts.Strict {
		return fmt.Errorf("%s row %d: %w", c.origin, row, err)
	}
	c.skipped++
	c.opts.Logger.Warn().Str("origin", c.origin).Int("row", row).Err(err).Msg("skipping invalid row")
	return nil
}

func (c *rowCollector) done() []expense.Record {
	c.opts.Logger.Info().
		Str("origin", c.origin).
		Int("records", len(c.records)).
		Int("skipped", c.skipped).
		Msg("records loaded")
	return c.records
}
