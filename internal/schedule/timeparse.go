package schedule

import (
	"log"
	"strings"
	"time"
)

// ParseResult carries the parsed instant plus how it was obtained, so callers
// can tell a real parse from the best-effort fallback.
type ParseResult struct {
	Time     time.Time
	Layout   string // layout or "weekday-slot" / "fallback"
	Fallback bool
}

// Layouts tried in strict priority order. The .999999 fraction is optional
// when parsing, so the first layout accepts ISO stamps with or without
// microseconds. The two time-only layouts assume today's date.
var appointmentLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02 3:04 PM",
	"2006-01-02 15:04",
	"3:04 PM",
	"15:04",
}

var timeOnlyLayouts = map[string]bool{
	"3:04 PM": true,
	"15:04":   true,
}

// ParseAppointmentTime converts a heterogeneous textual date into a concrete
// instant. Upstream data (classifier output, stored bookings, slot labels)
// does not share a single format. On total failure the result degrades to
// now+1h with Fallback set; the caller must treat that as best-effort only.
func ParseAppointmentTime(value string, now time.Time) ParseResult {
	value = strings.TrimSpace(value)

	for _, layout := range appointmentLayouts {
		parsed, err := time.ParseInLocation(layout, value, now.Location())
		if err != nil {
			continue
		}
		if timeOnlyLayouts[layout] {
			parsed = time.Date(now.Year(), now.Month(), now.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		}
		return ParseResult{Time: parsed, Layout: layout}
	}

	// A weekday name means the value is a recurring-slot descriptor; take the
	// first instance the expander produces.
	if containsWeekday(value) {
		if slots := ExpandSlot(value, now); len(slots) > 0 {
			return ParseResult{Time: slots[0].DateTime, Layout: "weekday-slot"}
		}
	}

	log.Printf("Warning: could not parse appointment time %q, falling back to now+1h", value)
	return ParseResult{Time: now.Add(time.Hour), Layout: "fallback", Fallback: true}
}

// FormatAppointmentDate renders an instant in the display format used across
// slot labels and reminder messages.
func FormatAppointmentDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

func containsWeekday(value string) bool {
	lower := strings.ToLower(value)
	for name := range weekdayNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}
