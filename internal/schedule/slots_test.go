package schedule

import (
	"testing"
	"time"
)

// Monday, 9:00 local
var testNow = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func TestParseRecurringSlot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RecurringSlot
		wantErr bool
	}{
		{
			name:  "morning slot",
			input: "Monday 9:00 AM",
			want:  RecurringSlot{Weekday: time.Monday, Hour: 9, Minute: 0},
		},
		{
			name:  "afternoon slot",
			input: "Wednesday 2:30 PM",
			want:  RecurringSlot{Weekday: time.Wednesday, Hour: 14, Minute: 30},
		},
		{
			name:  "noon",
			input: "Friday 12:00 PM",
			want:  RecurringSlot{Weekday: time.Friday, Hour: 12, Minute: 0},
		},
		{
			name:  "midnight",
			input: "Sunday 12:30 AM",
			want:  RecurringSlot{Weekday: time.Sunday, Hour: 0, Minute: 30},
		},
		{
			name:  "lowercase and padding",
			input: "  tuesday 11:15 am ",
			want:  RecurringSlot{Weekday: time.Tuesday, Hour: 11, Minute: 15},
		},
		{
			name:    "missing meridiem",
			input:   "Monday 9:00",
			wantErr: true,
		},
		{
			name:    "unknown weekday",
			input:   "Funday 9:00 AM",
			wantErr: true,
		},
		{
			name:    "hour out of range",
			input:   "Monday 13:00 PM",
			wantErr: true,
		},
		{
			name:    "minute out of range",
			input:   "Monday 9:60 AM",
			wantErr: true,
		},
		{
			name:    "bad meridiem",
			input:   "Monday 9:00 XX",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecurringSlot(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExpandSlotTwoWeeklyInstances(t *testing.T) {
	slots := ExpandSlot("Wednesday 2:00 PM", testNow)

	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}

	first := time.Date(2024, time.January, 17, 14, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 7)

	if !slots[0].DateTime.Equal(first) {
		t.Errorf("first instance: got %v, want %v", slots[0].DateTime, first)
	}
	if !slots[1].DateTime.Equal(second) {
		t.Errorf("second instance: got %v, want %v", slots[1].DateTime, second)
	}
	if slots[0].OriginalSlot != "Wednesday 2:00 PM" {
		t.Errorf("original slot: got %q", slots[0].OriginalSlot)
	}
	if !slots[0].Available {
		t.Error("expanded slot should be available")
	}
}

func TestExpandSlotSameWeekdayRollsToNextWeek(t *testing.T) {
	// It is Monday morning; a Monday slot must never land today, even at a
	// later hour.
	slots := ExpandSlot("Monday 4:00 PM", testNow)

	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	want := time.Date(2024, time.January, 22, 16, 0, 0, 0, time.UTC)
	if !slots[0].DateTime.Equal(want) {
		t.Errorf("got %v, want %v", slots[0].DateTime, want)
	}
	if slots[0].DateTime.Sub(testNow) < 7*24*time.Hour {
		t.Errorf("same-weekday slot landed within 7 days: %v", slots[0].DateTime)
	}
}

func TestExpandSlotMalformed(t *testing.T) {
	if slots := ExpandSlot("not a slot", testNow); slots != nil {
		t.Errorf("got %v, want nil", slots)
	}
}

func TestExpandSchedule(t *testing.T) {
	slots := ExpandSchedule("Monday 9:00 AM, Wednesday 2:00 PM", testNow, 0)

	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].DateTime.Before(slots[i-1].DateTime) {
			t.Fatalf("slots not sorted ascending at index %d", i)
		}
	}
	// Wednesday this week comes first even though the descriptor is listed
	// second.
	want := time.Date(2024, time.January, 17, 14, 0, 0, 0, time.UTC)
	if !slots[0].DateTime.Equal(want) {
		t.Errorf("earliest slot: got %v, want %v", slots[0].DateTime, want)
	}
}

func TestExpandScheduleCap(t *testing.T) {
	slots := ExpandSchedule("Monday 9:00 AM, Tuesday 9:00 AM, Wednesday 9:00 AM", testNow, 5)
	if len(slots) != 5 {
		t.Errorf("got %d slots, want 5", len(slots))
	}
}

func TestExpandScheduleEmpty(t *testing.T) {
	if slots := ExpandSchedule("  ", testNow, 5); slots != nil {
		t.Errorf("got %v, want nil", slots)
	}
}

func TestEmergencySlotsMorning(t *testing.T) {
	slots := EmergencySlots(testNow) // 9:00

	if len(slots) != maxEmergencySlots {
		t.Fatalf("got %d slots, want %d", len(slots), maxEmergencySlots)
	}
	for _, s := range slots {
		if !s.IsEmergency {
			t.Errorf("slot %q not flagged as emergency", s.OriginalSlot)
		}
	}

	// Same-day slots at +1h/+3h/+5h/+7h all land before 18:00
	wantFirst := testNow.Add(time.Hour)
	if !slots[0].DateTime.Equal(wantFirst) {
		t.Errorf("first slot: got %v, want %v", slots[0].DateTime, wantFirst)
	}
	if slots[0].OriginalSlot != "URGENT - 10:00 AM" {
		t.Errorf("first slot label: got %q", slots[0].OriginalSlot)
	}

	// Fifth is the first next-day slot
	wantFifth := time.Date(2024, time.January, 16, 8, 0, 0, 0, time.UTC)
	if !slots[4].DateTime.Equal(wantFifth) {
		t.Errorf("fifth slot: got %v, want %v", slots[4].DateTime, wantFifth)
	}
	if slots[4].OriginalSlot != "URGENT - Tuesday 08:00 AM" {
		t.Errorf("fifth slot label: got %q", slots[4].OriginalSlot)
	}
}

func TestEmergencySlotsEvening(t *testing.T) {
	evening := time.Date(2024, time.January, 15, 20, 0, 0, 0, time.UTC)
	slots := EmergencySlots(evening)

	if len(slots) != maxEmergencySlots {
		t.Fatalf("got %d slots, want %d", len(slots), maxEmergencySlots)
	}
	// No same-day slots after business hours; all five are next-day
	for _, s := range slots {
		if s.DateTime.Day() != 16 {
			t.Errorf("slot %v is not next-day", s.DateTime)
		}
	}
	if slots[0].OriginalSlot != "URGENT - Tuesday 08:00 AM" {
		t.Errorf("first slot label: got %q", slots[0].OriginalSlot)
	}
}

func TestEmergencySlotsLateAfternoon(t *testing.T) {
	// 16:30: only the +1h slot stays under 18:00
	late := time.Date(2024, time.January, 15, 16, 30, 0, 0, time.UTC)
	slots := EmergencySlots(late)

	if len(slots) != maxEmergencySlots {
		t.Fatalf("got %d slots, want %d", len(slots), maxEmergencySlots)
	}
	if slots[0].DateTime.Day() != 15 {
		t.Errorf("expected one same-day slot, got %v", slots[0].DateTime)
	}
	if slots[1].DateTime.Day() != 16 {
		t.Errorf("expected next-day slot second, got %v", slots[1].DateTime)
	}
}
