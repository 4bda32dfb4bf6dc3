package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gridworks-mx/insumo-console/services/api/insumo"
	"github.com/gridworks-mx/insumo-console/services/api/session"
)

// handleV1GetSession restores the operator's last selection. Unknown or
// missing tokens get the default state so a fresh browser can render.
// GET /api/v1/session
func (s *Server) handleV1GetSession(c *gin.Context) {
	token := sessionToken(c)
	if token == uuid.Nil {
		c.JSON(http.StatusOK, gin.H{"data": session.Default(), "known": false})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, known, err := s.store.LoadSession(ctx, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state, "known": known})
}

// handleV1PutSession persists the selection on every change. Issues a new
// token when the caller does not have one yet.
// PUT /api/v1/session
func (s *Server) handleV1PutSession(c *gin.Context) {
	var state session.State
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if state.Market != "" && !insumo.ValidMarket(state.Market) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be one of MDA, MTR"})
		return
	}

	token := sessionToken(c)
	if token == uuid.Nil {
		token = uuid.New()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.SaveSession(ctx, token, state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state, "token": token.String()})
}
