package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// CreateUser creates a new user
func (db *DB) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, display_name, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &User{}
	err := db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, password_hash, display_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &User{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// SavePatient persists a completed intake interview
func (db *DB) SavePatient(ctx context.Context, patient *Patient) error {
	query := `
		INSERT INTO patients (user_id, name, age, symptoms, location, insurance, contact, severity, urgency, specialty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		patient.UserID, patient.Name, patient.Age, patient.Symptoms,
		patient.Location, patient.Insurance, patient.Contact,
		patient.Severity, patient.Urgency, patient.Specialty,
	).Scan(&patient.ID, &patient.CreatedAt)
}

// GetPatientByID retrieves a patient record
func (db *DB) GetPatientByID(ctx context.Context, id string) (*Patient, error) {
	query := `
		SELECT id, user_id, name, age, symptoms, location, insurance, contact, severity, urgency, specialty, created_at
		FROM patients
		WHERE id = $1
	`

	patient := &Patient{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&patient.ID, &patient.UserID, &patient.Name, &patient.Age,
		&patient.Symptoms, &patient.Location, &patient.Insurance, &patient.Contact,
		&patient.Severity, &patient.Urgency, &patient.Specialty, &patient.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return patient, nil
}

// CreateAppointment persists a booked appointment
func (db *DB) CreateAppointment(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_id, doctor_name, specialty, hospital, appointment_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(ctx, query,
		appt.ID, appt.PatientID, appt.DoctorName, appt.Specialty,
		appt.Hospital, appt.AppointmentTime, appt.Status,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
}

// GetAppointmentByID retrieves an appointment
func (db *DB) GetAppointmentByID(ctx context.Context, id string) (*Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_name, specialty, hospital, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`

	appt := &Appointment{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&appt.ID, &appt.PatientID, &appt.DoctorName, &appt.Specialty,
		&appt.Hospital, &appt.AppointmentTime, &appt.Status,
		&appt.CreatedAt, &appt.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return appt, nil
}

// ListAppointments retrieves appointments for a patient, newest first
func (db *DB) ListAppointments(ctx context.Context, patientID string) ([]Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_name, specialty, hospital, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_time DESC
	`

	rows, err := db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(
			&appt.ID, &appt.PatientID, &appt.DoctorName, &appt.Specialty,
			&appt.Hospital, &appt.AppointmentTime, &appt.Status,
			&appt.CreatedAt, &appt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, appt)
	}

	return appointments, rows.Err()
}

// CancelAppointment marks an appointment cancelled
func (db *DB) CancelAppointment(ctx context.Context, id string) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := db.ExecContext(ctx, query, AppointmentStatusCancelled, id)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateReminder schedules a reminder
func (db *DB) CreateReminder(ctx context.Context, reminder *Reminder) error {
	query := `
		INSERT INTO reminders (appointment_id, recipient, title, body, remind_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		reminder.AppointmentID, reminder.Recipient, reminder.Title,
		reminder.Body, reminder.RemindAt,
	).Scan(&reminder.ID, &reminder.CreatedAt)
}

// DueReminders retrieves unsent reminders due at or before the given time
func (db *DB) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	query := `
		SELECT id, appointment_id, recipient, title, body, remind_at, sent_at, created_at
		FROM reminders
		WHERE sent_at IS NULL AND remind_at <= $1
		ORDER BY remind_at
	`

	rows, err := db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(
			&r.ID, &r.AppointmentID, &r.Recipient, &r.Title,
			&r.Body, &r.RemindAt, &r.SentAt, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}

	return reminders, rows.Err()
}

// MarkReminderSent records that a reminder was delivered
func (db *DB) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `
		UPDATE reminders
		SET sent_at = $1
		WHERE id = $2 AND sent_at IS NULL
	`

	result, err := db.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

// CancelRemindersForAppointment removes pending reminders for a
// cancelled appointment
func (db *DB) CancelRemindersForAppointment(ctx context.Context, appointmentID string) error {
	query := `
		DELETE FROM reminders
		WHERE appointment_id = $1 AND sent_at IS NULL
	`

	if _, err := db.ExecContext(ctx, query, appointmentID); err != nil {
		return fmt.Errorf("failed to cancel reminders: %w", err)
	}

	return nil
}
