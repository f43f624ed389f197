package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// User represents an account holder
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Patient represents a completed intake interview
type Patient struct {
	ID        string
	UserID    *string
	Name      string
	Age       string
	Symptoms  string
	Location  string
	Insurance string
	Contact   string
	Severity  string
	Urgency   string
	Specialty string
	CreatedAt time.Time
}

// Appointment represents a booked appointment
type Appointment struct {
	ID              string
	PatientID       string
	DoctorName      string
	Specialty       string
	Hospital        string
	AppointmentTime time.Time
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Appointment status values
const (
	AppointmentStatusBooked    = "booked"
	AppointmentStatusCancelled = "cancelled"
)

// Reminder represents a scheduled appointment reminder
type Reminder struct {
	ID            string
	AppointmentID string
	Recipient     string
	Title         string
	Body          string
	RemindAt      time.Time
	SentAt        *time.Time
	CreatedAt     time.Time
}
