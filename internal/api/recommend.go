package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carebridge/carebridge-be/internal/recommend"
)

// RecommendHandler exposes doctor recommendations over REST for
// clients that bypass the chat flow
type RecommendHandler struct {
	service *recommend.Service
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(service *recommend.Service) *RecommendHandler {
	return &RecommendHandler{service: service}
}

// RecommendRequest is a direct recommendation query
type RecommendRequest struct {
	Location  string `json:"location" binding:"required"`
	Specialty string `json:"specialty" binding:"required"`
	Insurance string `json:"insurance"`
	Urgency   string `json:"urgency"`
}

// Recommend handles POST /api/recommendations
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.service.Recommend(recommend.Query{
		Location:  req.Location,
		Specialty: req.Specialty,
		Insurance: req.Insurance,
		Urgency:   req.Urgency,
	})

	c.JSON(http.StatusOK, result)
}
