package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carebridge/carebridge-be/internal/booking"
	"github.com/carebridge/carebridge-be/internal/db"
)

// fakeStore records appointments in memory
type fakeStore struct {
	appointments map[string]db.Appointment
	cancelled    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{appointments: make(map[string]db.Appointment)}
}

func (s *fakeStore) CreateAppointment(ctx context.Context, appt *db.Appointment) error {
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	s.appointments[appt.ID] = *appt
	return nil
}

func (s *fakeStore) GetAppointmentByID(ctx context.Context, id string) (*db.Appointment, error) {
	appt, ok := s.appointments[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &appt, nil
}

func (s *fakeStore) ListAppointments(ctx context.Context, patientID string) ([]db.Appointment, error) {
	var out []db.Appointment
	for _, appt := range s.appointments {
		if appt.PatientID == patientID {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (s *fakeStore) CancelAppointment(ctx context.Context, id string) error {
	if _, ok := s.appointments[id]; !ok {
		return db.ErrNotFound
	}
	s.cancelled = append(s.cancelled, id)
	return nil
}

func newBookingRouter(t *testing.T) (*gin.Engine, *fakeStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	handler := NewBookingHandler(booking.NewService(store, nil, nil, 0))

	r := gin.New()
	r.POST("/api/appointments", handler.Create)
	r.GET("/api/appointments", handler.List)
	r.GET("/api/appointments/:id", handler.Get)
	r.DELETE("/api/appointments/:id", handler.Cancel)
	return r, store
}

func TestCreateAppointment(t *testing.T) {
	r, store := newBookingRouter(t)

	body := `{
		"patient_id": "p-1",
		"patient_name": "Priya",
		"contact": "priya@example.com",
		"doctor_name": "Dr. Mehta",
		"specialty": "Cardiology",
		"hospital": "City Heart Institute",
		"appointment_time": "2026-09-02T10:30:00"
	}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/appointments", strings.NewReader(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var conf booking.Confirmation
	if err := json.Unmarshal(w.Body.Bytes(), &conf); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(conf.AppointmentID, "APT-") {
		t.Errorf("appointment ID: got %q, want APT- prefix", conf.AppointmentID)
	}
	if conf.TimeAssumed {
		t.Error("time was parseable, should not be assumed")
	}
	if _, ok := store.appointments[conf.AppointmentID]; !ok {
		t.Errorf("appointment %s not persisted", conf.AppointmentID)
	}
}

func TestCreateAppointmentRequiresDoctor(t *testing.T) {
	r, _ := newBookingRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/appointments",
		strings.NewReader(`{"patient_name":"Priya"}`)))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestGetAppointmentNotFound(t *testing.T) {
	r, _ := newBookingRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/appointments/APT-MISSING", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListAppointmentsRequiresPatientID(t *testing.T) {
	r, _ := newBookingRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/appointments", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCancelAppointment(t *testing.T) {
	r, store := newBookingRouter(t)

	store.appointments["APT-AAAA1111"] = db.Appointment{
		ID:        "APT-AAAA1111",
		PatientID: "p-1",
		Status:    db.AppointmentStatusBooked,
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/appointments/APT-AAAA1111", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}
	if len(store.cancelled) != 1 || store.cancelled[0] != "APT-AAAA1111" {
		t.Errorf("cancelled: got %v, want [APT-AAAA1111]", store.cancelled)
	}
}
