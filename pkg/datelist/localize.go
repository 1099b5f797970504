package datelist

import (
	"html"
	"strings"
	"time"
)

// Localizer turns stored date lists into display markup.
type Localizer struct {
	locale Locale
	format string
}

// LocalizerOption customises a Localizer.
type LocalizerOption func(*Localizer)

// WithLocale selects the calendar vocabulary by BCP 47 tag.
func WithLocale(tag string) LocalizerOption {
	return func(l *Localizer) {
		l.locale = LocaleFor(tag)
	}
}

// WithDateFormat overrides the locale's default site date format.
func WithDateFormat(format string) LocalizerOption {
	return func(l *Localizer) {
		if strings.TrimSpace(format) != "" {
			l.format = format
		}
	}
}

// NewLocalizer builds a Localizer, defaulting to English and "F j, Y".
func NewLocalizer(opts ...LocalizerOption) *Localizer {
	l := &Localizer{locale: LocaleFor("")}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.format == "" {
		l.format = l.locale.DateFormat
	}
	return l
}

// Locale returns the active locale.
func (l *Localizer) Locale() Locale {
	return l.locale
}

// Format returns the formatted text for a single valid date, or "" when the
// date is invalid.
func (l *Localizer) Format(date string) string {
	t, ok := parse(date)
	if !ok {
		return ""
	}
	return FormatDate(t, l.format, l.locale)
}

// Weekday returns the localized weekday name for a valid date.
func (l *Localizer) Weekday(date string) string {
	t, ok := parse(date)
	if !ok {
		return ""
	}
	return l.locale.Weekdays[t.Weekday()]
}

// Markup renders the display element contents for a stored date list. Invalid
// entries are skipped. When exactly one date is shown and the date format has
// no weekday, the weekday is appended. Each date carries a remove link keyed
// by its stored value.
func (l *Localizer) Markup(raw string) string {
	list := Parse(raw)
	if list.Len() == 0 {
		return ""
	}

	single := list.Len() == 1 && !formatHasWeekday(l.format)

	var b strings.Builder
	for _, date := range list.Dates() {
		b.WriteString(`<span class="ctmb-localized-date">`)
		b.WriteString(html.EscapeString(l.Format(date)))
		if single {
			b.WriteString(` &ndash; <span class="ctmb-date-day-of-week">`)
			b.WriteString(html.EscapeString(l.Weekday(date)))
			b.WriteString(`</span>`)
		}
		b.WriteString(`<a href="#" class="ctmb-remove-date dashicons dashicons-no-alt" data-ctmb-date="`)
		b.WriteString(html.EscapeString(date))
		b.WriteString(`"></a></span>`)
	}
	return b.String()
}

func parse(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	y, m, d, ok := split(date)
	if !ok || !checkDate(y, m, d) {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}
