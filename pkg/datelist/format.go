package datelist

import (
	"strconv"
	"strings"
	"time"
)

// FormatDate renders t using a site date format made of PHP-style tokens
// (d, D, j, l, N, w, S, z, F, M, m, n, t, L, Y, y). A backslash escapes the
// next character; any other character is copied as is.
func FormatDate(t time.Time, format string, loc Locale) string {
	var b strings.Builder
	b.Grow(len(format) * 2)

	escaped := false
	for _, ch := range format {
		if escaped {
			b.WriteRune(ch)
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case 'd':
			b.WriteString(pad2(t.Day()))
		case 'D':
			b.WriteString(loc.WeekdayAbbrev[t.Weekday()])
		case 'j':
			b.WriteString(strconv.Itoa(t.Day()))
		case 'l':
			b.WriteString(loc.Weekdays[t.Weekday()])
		case 'N':
			iso := int(t.Weekday())
			if iso == 0 {
				iso = 7
			}
			b.WriteString(strconv.Itoa(iso))
		case 'w':
			b.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'S':
			b.WriteString(ordinalSuffix(t.Day()))
		case 'z':
			b.WriteString(strconv.Itoa(t.YearDay() - 1))
		case 'F':
			b.WriteString(loc.Months[t.Month()-1])
		case 'M':
			b.WriteString(loc.MonthAbbrev[t.Month()-1])
		case 'm':
			b.WriteString(pad2(int(t.Month())))
		case 'n':
			b.WriteString(strconv.Itoa(int(t.Month())))
		case 't':
			b.WriteString(strconv.Itoa(daysIn(t.Year(), int(t.Month()))))
		case 'L':
			if isLeap(t.Year()) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		case 'Y':
			b.WriteString(strconv.Itoa(t.Year()))
		case 'y':
			b.WriteString(pad2(t.Year() % 100))
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// formatHasWeekday reports whether the format already prints the weekday.
func formatHasWeekday(format string) bool {
	escaped := false
	for _, ch := range format {
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case 'l', 'N', 'w':
			return true
		}
	}
	return false
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
