package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleV1ListUnits returns all generation units
// GET /api/v1/core/units
func (s *Server) handleV1ListUnits(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	units, err := s.store.ListUnits(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": units,
		"meta": gin.H{
			"count": len(units),
		},
	})
}

// handleV1GetUnit returns details for a specific unit
// GET /api/v1/core/units/:id
func (s *Server) handleV1GetUnit(c *gin.Context) {
	unitID := c.Param("id")
	if unitID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	unit, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if unit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": unit,
	})
}
