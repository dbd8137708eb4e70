// Package expense is the read-only analytics engine over transaction records:
// the record store, the filter engine, outlier detection and the
// category aggregation engine.
package expense

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Uncategorized labels records whose category is missing or blank.
const Uncategorized = "Uncategorized"

// dateLayouts are tried in order. "2006-1-2" accepts both zero-padded and
// unpadded month/day values.
var dateLayouts = []string{"2006-1-2", time.RFC3339, "2006/1/2"}

// Date is a calendar date with no time component.
type Date struct {
	t time.Time
}

// NewDate returns the calendar date y-m-d. Out-of-range values normalise the
// way time.Date does.
func NewDate(y int, m time.Month, d int) Date {
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 style date. Surrounding whitespace and unpadded
// month/day components are tolerated; a timestamp is truncated to its date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return NewDate(y, m, d), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// AddDate mirrors time.Time.AddDate.
func (d Date) AddDate(years, months, days int) Date {
	return Date{t: d.t.AddDate(years, months, days)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(time.DateOnly)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time { return d.t }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Record is one transaction. Records are values; the store never hands out
// its backing slice.
type Record struct {
	Date     Date
	Amount   float64
	Category string
	Vendor   string
}

// CategoryOrDefault returns the record's category, or Uncategorized when blank.
func (r Record) CategoryOrDefault() string {
	if c := strings.TrimSpace(r.Category); c != "" {
		return c
	}
	return Uncategorized
}

// identity is the (date, amount, vendor) tuple used to match records across
// subsets. Distinct records sharing all three values are indistinguishable.
type identity struct {
	date   Date
	amount float64
	vendor string
}

func (r Record) identity() identity {
	return identity{date: r.Date, amount: r.Amount, vendor: r.Vendor}
}

// Validate enforces the record provider contract.
func (r Record) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if r.Amount < 0 {
		return fmt.Errorf("negative amount %v", r.Amount)
	}
	return nil
}
