package expense

import "time"

// DateRange is an inclusive calendar range.
type DateRange struct {
	Start Date
	End   Date
}

// MonthRange covers the whole of the given month.
func MonthRange(year int, month time.Month) DateRange {
	start := NewDate(year, month, 1)
	return DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

// ThisMonth runs from the first of ref's month through ref itself.
func ThisMonth(ref Date) DateRange {
	return DateRange{Start: NewDate(ref.Year(), ref.Month(), 1), End: ref}
}

// LastMonth is the full calendar month before ref's month.
func LastMonth(ref Date) DateRange {
	return monthsBack(ref, 1)
}

// MonthBeforeLast is the full calendar month two months before ref's month.
func MonthBeforeLast(ref Date) DateRange {
	return monthsBack(ref, 2)
}

// NamedMonth resolves a month name given without a year to its most recent
// occurrence on or before ref's month.
func NamedMonth(ref Date, month time.Month) DateRange {
	year := ref.Year()
	if month > ref.Month() {
		year--
	}
	return MonthRange(year, month)
}

func monthsBack(ref Date, n int) DateRange {
	first := NewDate(ref.Year(), ref.Month(), 1).AddDate(0, -n, 0)
	return MonthRange(first.Year(), first.Month())
}
