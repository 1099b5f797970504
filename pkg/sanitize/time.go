package sanitize

import (
	"strings"
	"time"
)

// TimeLayout is the canonical storage layout for time fields.
const TimeLayout = "15:04"

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04pm",
	"3:04:05pm",
	"3pm",
	"15.04",
}

var namedTimes = map[string]string{
	"noon":     "12:00",
	"midday":   "12:00",
	"midnight": "00:00",
}

// Time parses a 12 or 24 hour clock value ("9:30", "9:30 PM", "21:30:00",
// "9pm", "noon") and returns it as 24 hour HH:MM.
func Time(value string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", false
	}
	if named, ok := namedTimes[normalized]; ok {
		return named, true
	}
	normalized = strings.ReplaceAll(normalized, "a.m.", "am")
	normalized = strings.ReplaceAll(normalized, "p.m.", "pm")
	normalized = strings.Join(strings.Fields(normalized), "")

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.Format(TimeLayout), true
		}
	}
	return "", false
}
