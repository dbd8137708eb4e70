package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/petasbytes/expense-agent/internal/expense"
)

var csvColumns = []string{"date", "amount", "category", "vendor"}

// CSVSource reads a headered CSV file with date, amount, category and vendor
// columns in any order. Extra columns are ignored.
type CSVSource struct {
	Path string
	Options
}

func (s *CSVSource) Load(ctx context.Context) ([]expense.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(ctx, f, s.Path, s.Options)
}

// ReadCSV parses CSV records from r. origin names the input in errors and logs.
func ReadCSV(ctx context.Context, r io.Reader, origin string, opts Options) ([]expense.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty csv", origin)
		}
		return nil, fmt.Errorf("%s: read header: %w", origin, err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}

	c := &rowCollector{opts: opts, origin: origin}
	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if addErr := c.add(row, expense.Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)); addErr != nil {
				return nil, addErr
			}
			continue
		}
		if isBlank(fields) {
			continue
		}
		col := func(name string) string {
			if i := idx[name]; i < len(fields) {
				return fields[i]
			}
			return ""
		}
		rec, perr := ParseRecord(col("date"), col("amount"), col("category"), col("vendor"))
		if err := c.add(row, rec, perr); err != nil {
			return nil, err
		}
	}
	return c.done(), nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(csvColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	var missing []string
	for _, c := range csvColumns {
		if _, ok := idx[c]; !ok && c != "category" {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing csv columns: %s", strings.Join(missing, ", "))
	}
	if _, ok := idx["category"]; !ok {
		idx["category"] = len(header) // always out of range: blank category
	}
	return idx, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
