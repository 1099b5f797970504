package datelist

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale carries the calendar names used to format dates for display.
// Weekday slices start on Sunday.
type Locale struct {
	Tag            language.Tag
	Weekdays       [7]string
	WeekdayAbbrev  [7]string
	WeekdayInitial [7]string
	Months         [12]string
	MonthAbbrev    [12]string
	StartOfWeek    int
	DateFormat     string
}

var locales = []Locale{
	{
		Tag:            language.English,
		Weekdays:       [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		WeekdayAbbrev:  [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		WeekdayInitial: [7]string{"S", "M", "T", "W", "T", "F", "S"},
		Months:         [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		MonthAbbrev:    [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		StartOfWeek:    0,
		DateFormat:     "F j, Y",
	},
	{
		Tag:            language.Spanish,
		Weekdays:       [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		WeekdayAbbrev:  [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
		WeekdayInitial: [7]string{"D", "L", "M", "X", "J", "V", "S"},
		Months:         [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		MonthAbbrev:    [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"},
		StartOfWeek:    1,
		DateFormat:     "j \\d\\e F \\d\\e Y",
	},
	{
		Tag:            language.French,
		Weekdays:       [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		WeekdayAbbrev:  [7]string{"dim", "lun", "mar", "mer", "jeu", "ven", "sam"},
		WeekdayInitial: [7]string{"D", "L", "M", "M", "J", "V", "S"},
		Months:         [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		MonthAbbrev:    [12]string{"janv", "févr", "mars", "avr", "mai", "juin", "juil", "août", "sept", "oct", "nov", "déc"},
		StartOfWeek:    1,
		DateFormat:     "j F Y",
	},
	{
		Tag:            language.German,
		Weekdays:       [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		WeekdayAbbrev:  [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		WeekdayInitial: [7]string{"S", "M", "D", "M", "D", "F", "S"},
		Months:         [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		MonthAbbrev:    [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
		StartOfWeek:    1,
		DateFormat:     "j. F Y",
	},
	{
		Tag:            language.Portuguese,
		Weekdays:       [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		WeekdayAbbrev:  [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"},
		WeekdayInitial: [7]string{"D", "S", "T", "Q", "Q", "S", "S"},
		Months:         [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		MonthAbbrev:    [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
		StartOfWeek:    0,
		DateFormat:     "j \\d\\e F \\d\\e Y",
	},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(locales))
	for _, loc := range locales {
		tags = append(tags, loc.Tag)
	}
	return language.NewMatcher(tags)
}()

// LocaleFor returns the closest built-in locale for a BCP 47 tag such as
// "es-MX" or "pt_BR". Unknown or empty tags fall back to English.
func LocaleFor(tag string) Locale {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return locales[0]
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return locales[0]
	}
	_, idx, confidence := matcher.Match(parsed)
	if confidence == language.No || idx < 0 || idx >= len(locales) {
		return locales[0]
	}
	return locales[idx]
}

// DatepickerLanguage is the calendar vocabulary handed to the client-side
// date picker.
type DatepickerLanguage struct {
	Days        []string `json:"days"`
	DaysShort   []string `json:"daysShort"`
	DaysMin     []string `json:"daysMin"`
	Months      []string `json:"months"`
	MonthsShort []string `json:"monthsShort"`
	FirstDay    int      `json:"firstDay"`
}

// Datepicker builds the date picker vocabulary for the locale.
func (l Locale) Datepicker() DatepickerLanguage {
	return DatepickerLanguage{
		Days:        append([]string(nil), l.Weekdays[:]...),
		DaysShort:   append([]string(nil), l.WeekdayAbbrev[:]...),
		DaysMin:     append([]string(nil), l.WeekdayInitial[:]...),
		Months:      append([]string(nil), l.Months[:]...),
		MonthsShort: append([]string(nil), l.MonthAbbrev[:]...),
		FirstDay:    l.StartOfWeek,
	}
}

// ClientSettings is the calendar payload the client script reads from the
// meta box: picker vocabulary, the time format it can round-trip and the
// weekday names appended to a single date.
type ClientSettings struct {
	Language   DatepickerLanguage `json:"datepicker_language"`
	TimeFormat string             `json:"time_format"`
	WeekDays   []string           `json:"week_days"`
}

// Client builds the client payload for the locale. siteTimeFormat is passed
// through ClientTimeFormat.
func (l Locale) Client(siteTimeFormat string) ClientSettings {
	return ClientSettings{
		Language:   l.Datepicker(),
		TimeFormat: ClientTimeFormat(siteTimeFormat),
		WeekDays:   append([]string(nil), l.Weekdays[:]...),
	}
}

var clientTimeFormats = []string{"g:i a", "g:ia", "g:i A", "g:iA", "H:i"}

// ClientTimeFormat returns the site time format when the time picker can
// round-trip it, otherwise the 12-hour default "g:i a".
func ClientTimeFormat(site string) string {
	for _, candidate := range clientTimeFormats {
		if candidate == site {
			return site
		}
	}
	return "g:i a"
}
