package schedule

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ConcreteSlot is one materialized future instant derived from a recurring
// slot descriptor such as "Monday 9:00 AM".
type ConcreteSlot struct {
	DateTime      time.Time `json:"-"`
	DateTimeISO   string    `json:"datetime"`
	FormattedDate string    `json:"formatted_date"`
	Available     bool      `json:"available"`
	OriginalSlot  string    `json:"original_slot"`
	IsEmergency   bool      `json:"is_emergency,omitempty"`
}

// RecurringSlot is a parsed weekly-repeating availability window.
type RecurringSlot struct {
	Weekday time.Weekday
	Hour    int // 24-hour
	Minute  int
}

// DisplayLayout is the human label format used for slots and appointments.
const DisplayLayout = "2006-01-02 03:04 PM"

// slotHorizonWeeks is how many weekly instances a descriptor expands to.
const slotHorizonWeeks = 2

// minLeadTime guards against offering a slot right at the weekday rollover.
const minLeadTime = time.Hour

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseRecurringSlot parses a descriptor of the form "Monday 9:00 AM".
func ParseRecurringSlot(slot string) (RecurringSlot, error) {
	parts := strings.Fields(strings.TrimSpace(slot))
	if len(parts) < 3 {
		return RecurringSlot{}, fmt.Errorf("slot %q: expected \"<Weekday> <H>:<MM> <AM|PM>\"", slot)
	}

	weekday, ok := weekdayNames[strings.ToLower(parts[0])]
	if !ok {
		return RecurringSlot{}, fmt.Errorf("slot %q: unknown weekday %q", slot, parts[0])
	}

	clock := strings.SplitN(parts[1], ":", 2)
	if len(clock) != 2 {
		return RecurringSlot{}, fmt.Errorf("slot %q: bad time %q", slot, parts[1])
	}

	hour, err := strconv.Atoi(clock[0])
	if err != nil || hour < 1 || hour > 12 {
		return RecurringSlot{}, fmt.Errorf("slot %q: bad hour %q", slot, clock[0])
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil || minute < 0 || minute > 59 {
		return RecurringSlot{}, fmt.Errorf("slot %q: bad minute %q", slot, clock[1])
	}

	switch strings.ToUpper(parts[2]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	default:
		return RecurringSlot{}, fmt.Errorf("slot %q: expected AM or PM, got %q", slot, parts[2])
	}

	return RecurringSlot{Weekday: weekday, Hour: hour, Minute: minute}, nil
}

// ExpandSlot converts one recurring descriptor into concrete future instances
// over the next two weeks, relative to now. Malformed descriptors yield an
// empty list: one bad slot must not fail the whole roster scan.
func ExpandSlot(slot string, now time.Time) []ConcreteSlot {
	parsed, err := ParseRecurringSlot(slot)
	if err != nil {
		log.Printf("Skipping malformed slot: %v", err)
		return nil
	}

	// Next occurrence of the weekday, strictly in the future: if today is the
	// target weekday the first instance is next week, never a slot that may
	// already have passed today.
	daysAhead := int(parsed.Weekday) - int(now.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}

	slots := make([]ConcreteSlot, 0, slotHorizonWeeks)
	for week := 0; week < slotHorizonWeeks; week++ {
		day := now.AddDate(0, 0, daysAhead+week*7)
		instant := time.Date(day.Year(), day.Month(), day.Day(),
			parsed.Hour, parsed.Minute, 0, 0, now.Location())

		if instant.After(now.Add(minLeadTime)) {
			slots = append(slots, newSlot(instant, slot, false))
		}
	}

	return slots
}

// ExpandSchedule expands a comma-separated list of descriptors into at most
// maxSlots concrete instances, sorted ascending.
func ExpandSchedule(schedule string, now time.Time, maxSlots int) []ConcreteSlot {
	if strings.TrimSpace(schedule) == "" {
		return nil
	}

	var all []ConcreteSlot
	for _, slot := range strings.Split(schedule, ",") {
		slot = strings.TrimSpace(slot)
		if slot == "" {
			continue
		}
		all = append(all, ExpandSlot(slot, now)...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].DateTime.Before(all[j].DateTime) })

	if maxSlots > 0 && len(all) > maxSlots {
		all = all[:maxSlots]
	}
	return all
}

// businessDayEnd is the last hour (exclusive) for same-day emergency slots.
const businessDayEnd = 18

// maxEmergencySlots caps the synthesized urgent slot set.
const maxEmergencySlots = 5

// EmergencySlots synthesizes near-term slots for urgent cases: same-day slots
// at 1h/3h/5h/7h from now while still before 18:00 local, then next-day slots
// at fixed morning-to-afternoon hours.
func EmergencySlots(now time.Time) []ConcreteSlot {
	var slots []ConcreteSlot

	if now.Hour() < businessDayEnd {
		for _, hoursAhead := range []int{1, 3, 5, 7} {
			instant := now.Add(time.Duration(hoursAhead) * time.Hour)
			if instant.Hour() < businessDayEnd {
				origin := "URGENT - " + instant.Format("03:04 PM")
				s := newSlot(instant, origin, true)
				slots = append(slots, s)
			}
		}
	}

	tomorrow := now.AddDate(0, 0, 1)
	for _, hour := range []int{8, 10, 12, 14, 16} {
		instant := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
			hour, 0, 0, 0, now.Location())
		origin := "URGENT - " + instant.Format("Monday 03:04 PM")
		slots = append(slots, newSlot(instant, origin, true))
	}

	if len(slots) > maxEmergencySlots {
		slots = slots[:maxEmergencySlots]
	}
	return slots
}

func newSlot(instant time.Time, origin string, emergency bool) ConcreteSlot {
	return ConcreteSlot{
		DateTime:      instant,
		DateTimeISO:   instant.Format(time.RFC3339),
		FormattedDate: instant.Format(DisplayLayout),
		Available:     true,
		OriginalSlot:  origin,
		IsEmergency:   emergency,
	}
}
