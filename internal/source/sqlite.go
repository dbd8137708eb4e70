package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/petasbytes/expense-agent/internal/expense"
)

// Schema is the table SQLiteSource reads.
const Schema = `
CREATE TABLE IF NOT EXISTS expenses (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	date     TEXT NOT NULL,
	amount   REAL NOT NULL,
	category TEXT,
	vendor   TEXT NOT NULL DEFAULT ''
)`

// SQLiteSource reads the expenses table of a SQLite database in id order.
type SQLiteSource struct {
	Path string
	Options
}

func (s *SQLiteSource) Load(ctx context.Context) ([]expense.Record, error) {
	db, err := OpenSQLite(ctx, s.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return ReadSQLite(ctx, db, s.Path, s.Options)
}

// OpenSQLite opens the database at path and ensures the expenses table exists.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// ReadSQLite loads every row of the expenses table. Columns are scanned as
// text so that mistyped values surface as invalid rows rather than scan errors.
func ReadSQLite(ctx context.Context, db *sql.DB, origin string, opts Options) ([]expense.Record, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, date, amount, COALESCE(category, ''), COALESCE(vendor, '')
		FROM expenses
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	c := &rowCollector{opts: opts, origin: origin}
	for rows.Next() {
		var (
			id                             int64
			date, amount, category, vendor sql.NullString
		)
		if err := rows.Scan(&id, &date, &amount, &category, &vendor); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		rec, perr := ParseRecord(date.String, amount.String, category.String, vendor.String)
		if err := c.add(int(id), rec, perr); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return c.done(), nil
}

// InsertRecords appends records to the expenses table in one transaction.
func InsertRecords(ctx context.Context, db *sql.DB, records []expense.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses (date, amount, category, vendor) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var category any
		if r.Category != "" {
			category = r.Category
		}
		if _, err := stmt.ExecContext(ctx, r.Date.String(), r.Amount, category, r.Vendor); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
	}
	return tx.Commit()
}
