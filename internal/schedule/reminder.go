package schedule

import "time"

// DefaultReminderOffset is the generic lead time for reminders. The booking
// flow overrides this with its own configured offset (30 minutes by default),
// so the offset is always an explicit parameter here.
const DefaultReminderOffset = 2 * time.Hour

// ReminderTime derives the instant a reminder should fire for an appointment.
// No future check is done; callers decide what to do with a reminder time that
// has already passed.
func ReminderTime(appointment time.Time, offset time.Duration) time.Time {
	return appointment.Add(-offset)
}
