package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge-be/internal/db"
	"github.com/carebridge/carebridge-be/internal/notify"
	"github.com/carebridge/carebridge-be/internal/privacy"
	"github.com/carebridge/carebridge-be/internal/schedule"
)

// DefaultReminderOffset is how long before the appointment the booking
// reminder goes out
const DefaultReminderOffset = 30 * time.Minute

// Request is a booking submission
type Request struct {
	PatientID       string `json:"patient_id"`
	PatientName     string `json:"patient_name"`
	Contact         string `json:"contact"`
	DoctorName      string `json:"doctor_name"`
	Specialty       string `json:"specialty"`
	Hospital        string `json:"hospital"`
	AppointmentTime string `json:"appointment_time"`
}

// Confirmation is returned to the caller after a successful booking
type Confirmation struct {
	AppointmentID   string `json:"appointment_id"`
	DoctorName      string `json:"doctor_name"`
	Hospital        string `json:"hospital"`
	AppointmentTime string `json:"appointment_time"`
	ReminderAt      string `json:"reminder_at"`
	TimeAssumed     bool   `json:"time_assumed,omitempty"`
}

// Store is the persistence surface the booking service needs
type Store interface {
	CreateAppointment(ctx context.Context, appt *db.Appointment) error
	GetAppointmentByID(ctx context.Context, id string) (*db.Appointment, error)
	ListAppointments(ctx context.Context, patientID string) ([]db.Appointment, error)
	CancelAppointment(ctx context.Context, id string) error
}

// ReminderScheduler schedules and cancels appointment reminders
type ReminderScheduler interface {
	Schedule(ctx context.Context, reminder *db.Reminder) error
	Cancel(ctx context.Context, appointmentID string) error
}

// Service books appointments, sends confirmations, and schedules
// reminders
type Service struct {
	store          Store
	reminders      ReminderScheduler
	sender         notify.Notifier
	reminderOffset time.Duration
	nowFn          func() time.Time
}

// NewService creates a booking service. A zero reminderOffset selects
// the default.
func NewService(store Store, reminders ReminderScheduler, sender notify.Notifier, reminderOffset time.Duration) *Service {
	if reminderOffset <= 0 {
		reminderOffset = DefaultReminderOffset
	}
	return &Service{
		store:          store,
		reminders:      reminders,
		sender:         sender,
		reminderOffset: reminderOffset,
		nowFn:          time.Now,
	}
}

// Book creates the appointment, fans out a confirmation, and schedules
// the reminder. Confirmation and reminder failures are logged, not
// fatal: the appointment itself is the durable record.
func (s *Service) Book(ctx context.Context, req Request) (*Confirmation, error) {
	if req.DoctorName == "" {
		return nil, fmt.Errorf("doctor name is required")
	}

	parsed := schedule.ParseAppointmentTime(req.AppointmentTime, s.nowFn())
	if parsed.Fallback {
		log.Printf("Could not parse appointment time %q, assuming %s",
			req.AppointmentTime, parsed.Time.Format(time.RFC3339))
	}

	appt := &db.Appointment{
		ID:              newAppointmentID(),
		PatientID:       req.PatientID,
		DoctorName:      req.DoctorName,
		Specialty:       req.Specialty,
		Hospital:        req.Hospital,
		AppointmentTime: parsed.Time,
		Status:          db.AppointmentStatusBooked,
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to save appointment: %w", err)
	}

	formatted := schedule.FormatAppointmentDate(parsed.Time)
	remindAt := schedule.ReminderTime(parsed.Time, s.reminderOffset)

	if s.sender != nil {
		msg := notify.Message{
			Recipient: req.Contact,
			Title:     "Appointment confirmed",
			Body: fmt.Sprintf("Hi %s, your appointment with %s (%s) at %s is confirmed for %s. Your appointment ID is %s.",
				req.PatientName, req.DoctorName, req.Specialty, req.Hospital, formatted, appt.ID),
		}
		if err := s.sender.Notify(ctx, msg); err != nil {
			log.Printf("Booking confirmation delivery failed for %s to %s: %v",
				appt.ID, privacy.PseudonymizeContact(req.Contact), err)
		}
	}

	if s.reminders != nil {
		reminder := &db.Reminder{
			AppointmentID: appt.ID,
			Recipient:     req.Contact,
			Title:         "Appointment reminder",
			Body: fmt.Sprintf("Hi %s, this is a reminder for your appointment with %s at %s on %s.",
				req.PatientName, req.DoctorName, req.Hospital, formatted),
			RemindAt: remindAt,
		}
		if err := s.reminders.Schedule(ctx, reminder); err != nil {
			log.Printf("Reminder scheduling failed for %s: %v", appt.ID, err)
		}
	}

	return &Confirmation{
		AppointmentID:   appt.ID,
		DoctorName:      req.DoctorName,
		Hospital:        req.Hospital,
		AppointmentTime: formatted,
		ReminderAt:      schedule.FormatAppointmentDate(remindAt),
		TimeAssumed:     parsed.Fallback,
	}, nil
}

// Get retrieves a booked appointment
func (s *Service) Get(ctx context.Context, id string) (*db.Appointment, error) {
	return s.store.GetAppointmentByID(ctx, id)
}

// List retrieves a patient's appointments
func (s *Service) List(ctx context.Context, patientID string) ([]db.Appointment, error) {
	return s.store.ListAppointments(ctx, patientID)
}

// Cancel cancels an appointment and drops its pending reminders
func (s *Service) Cancel(ctx context.Context, id string) error {
	if err := s.store.CancelAppointment(ctx, id); err != nil {
		return err
	}
	if s.reminders != nil {
		if err := s.reminders.Cancel(ctx, id); err != nil {
			log.Printf("Failed to cancel reminders for %s: %v", id, err)
		}
	}
	return nil
}

// newAppointmentID generates an ID like APT-3F2A9C1B
func newAppointmentID() string {
	id := uuid.New().String()
	return "APT-" + strings.ToUpper(id[:8])
}
