// Package datelist implements the date-list widget model: a comma-separated
// list of YYYY-MM-DD calendar dates that is kept valid, unique and sorted, plus
// localized display markup for the list.
package datelist

import (
	"slices"
	"strconv"
	"strings"
)

// Layout is the canonical storage layout for a single date.
const Layout = "2006-01-02"

// List is an ordered set of valid calendar dates in YYYY-MM-DD form.
type List struct {
	dates []string
}

// Parse splits a comma-separated value and keeps only valid dates, dropping
// duplicates and sorting ascending.
func Parse(raw string) List {
	var list List
	for _, part := range strings.Split(raw, ",") {
		list.Add(part)
	}
	return list
}

// Add inserts date when it is a valid calendar date. It reports whether the
// list changed.
func (l *List) Add(date string) bool {
	date = strings.TrimSpace(date)
	if !Valid(date) {
		return false
	}
	idx, found := slices.BinarySearch(l.dates, date)
	if found {
		return false
	}
	l.dates = slices.Insert(l.dates, idx, date)
	return true
}

// Remove deletes date from the list and reports whether it was present.
func (l *List) Remove(date string) bool {
	idx, found := slices.BinarySearch(l.dates, strings.TrimSpace(date))
	if !found {
		return false
	}
	l.dates = slices.Delete(l.dates, idx, idx+1)
	return true
}

// Contains reports whether date is in the list.
func (l List) Contains(date string) bool {
	_, found := slices.BinarySearch(l.dates, strings.TrimSpace(date))
	return found
}

// Dates returns a copy of the sorted dates.
func (l List) Dates() []string {
	return slices.Clone(l.dates)
}

// Len returns the number of dates.
func (l List) Len() int {
	return len(l.dates)
}

// First returns the earliest date, or "" when the list is empty.
func (l List) First() string {
	if len(l.dates) == 0 {
		return ""
	}
	return l.dates[0]
}

// String renders the stored form: comma-separated without spaces.
func (l List) String() string {
	return strings.Join(l.dates, ",")
}

// Valid reports whether value is a YYYY-MM-DD date that exists on the
// calendar (no February 30th). Years run from 1 to 32767.
func Valid(value string) bool {
	y, m, d, ok := split(value)
	if !ok {
		return false
	}
	return checkDate(y, m, d)
}

func split(value string) (year, month, day int, ok bool) {
	if len(value) != len(Layout) || value[4] != '-' || value[7] != '-' {
		return 0, 0, 0, false
	}
	for i, ch := range value {
		if i == 4 || i == 7 {
			continue
		}
		if ch < '0' || ch > '9' {
			return 0, 0, 0, false
		}
	}
	year, _ = strconv.Atoi(value[0:4])
	month, _ = strconv.Atoi(value[5:7])
	day, _ = strconv.Atoi(value[8:10])
	return year, month, day, true
}

func checkDate(year, month, day int) bool {
	if year < 1 || year > 32767 || month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysIn(year, month)
}

func daysIn(year, month int) int {
	switch month {
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
