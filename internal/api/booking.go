package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carebridge/carebridge-be/internal/booking"
	"github.com/carebridge/carebridge-be/internal/db"
)

// BookingHandler handles appointment endpoints
type BookingHandler struct {
	service *booking.Service
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service *booking.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /api/appointments
func (h *BookingHandler) Create(c *gin.Context) {
	var req booking.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmation, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book appointment"})
		return
	}

	c.JSON(http.StatusCreated, confirmation)
}

// Get handles GET /api/appointments/:id
func (h *BookingHandler) Get(c *gin.Context) {
	appt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get appointment"})
		return
	}

	c.JSON(http.StatusOK, appt)
}

// List handles GET /api/appointments?patient_id=...
func (h *BookingHandler) List(c *gin.Context) {
	patientID := c.Query("patient_id")
	if patientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patient_id is required"})
		return
	}

	appointments, err := h.service.List(c.Request.Context(), patientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list appointments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// Cancel handles DELETE /api/appointments/:id
func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel appointment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
