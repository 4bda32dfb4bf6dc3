package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridworks-mx/insumo-console/services/api/db"
	"github.com/gridworks-mx/insumo-console/services/api/events"
	"github.com/gridworks-mx/insumo-console/services/api/insumo"
)

// formMetaKeys are the selector fields a grid form carries alongside the
// "<hour>-<property>" controls; they never reach the field codec.
var formMetaKeys = map[string]struct{}{
	"unit_id": {},
	"date":    {},
	"market":  {},
}

// parseLookupQuery reads the unit_id/date/market triple every grid fetch is
// keyed by. Writes the error response itself and returns ok=false on failure.
func parseLookupQuery(c *gin.Context) (db.LookupQuery, bool) {
	var q db.LookupQuery

	q.UnitID = c.Query("unit_id")
	if q.UnitID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit_id is required"})
		return q, false
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return q, false
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return q, false
	}
	q.Day = day

	q.Market = c.Query("market")
	if !insumo.ValidMarket(q.Market) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be one of MDA, MTR"})
		return q, false
	}

	return q, true
}

// handleV1ListAvailabilities returns the upstream capacity figures
// GET /api/v1/availabilities?unit_id=U1&date=2026-09-01&market=MDA
func (s *Server) handleV1ListAvailabilities(c *gin.Context) {
	q, ok := parseLookupQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	availabilities, err := s.store.FetchAvailabilities(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": availabilities,
		"meta": gin.H{
			"count": len(availabilities),
		},
	})
}

// handleV1ListInsumos returns prior submissions used to pre-populate the grid
// GET /api/v1/insumos?unit_id=U1&date=2026-09-01&market=MDA
func (s *Server) handleV1ListInsumos(c *gin.Context) {
	q, ok := parseLookupQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	insumos, err := s.store.FetchInsumos(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": insumos,
		"meta": gin.H{
			"count": len(insumos),
		},
	})
}

// SubmissionRequest is the JSON submission body.
type SubmissionRequest struct {
	Date    string       `json:"date" binding:"required"`
	UnitID  string       `json:"unit_id" binding:"required"`
	Market  string       `json:"market" binding:"required"`
	Insumos []insumo.Row `json:"insumos" binding:"required"`
}

// handleV1SubmitInsumos accepts one pre-typed upsert batch
// POST /api/v1/insumos
func (s *Server) handleV1SubmitInsumos(c *gin.Context) {
	var req SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !insumo.ValidMarket(req.Market) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be one of MDA, MTR"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	unit, err := s.store.GetUnit(ctx, req.UnitID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if unit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		return
	}

	info := unitInfo(unit)
	day, err := insumo.CheckDate(req.Date, info.Timezone)
	if err != nil {
		if errors.Is(err, insumo.ErrPastDate) {
			s.metrics.Submissions.WithLabelValues("past_date").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := insumo.ValidateTyped(req.Insumos, info.Variant()); len(errs) > 0 {
		s.metrics.Submissions.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	sub := insumo.Submission{Date: req.Date, UnitID: req.UnitID, Market: req.Market, Insumos: req.Insumos}
	result, ok := s.runUpsert(c, sub, day)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// handleV1SubmitInsumoForm runs the full grid-form pipeline: decode the
// "<hour>-<property>" fields, validate every row, and either surface the
// error map (no write happens) or upsert the whole batch at once.
// POST /api/v1/insumos/form
func (s *Server) handleV1SubmitInsumoForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form body"})
		return
	}
	form := c.Request.PostForm

	unitID := form.Get("unit_id")
	date := form.Get("date")
	market := form.Get("market")
	if unitID == "" || date == "" || market == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit_id, date and market are required"})
		return
	}
	if !insumo.ValidMarket(market) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be one of MDA, MTR"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
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

	var fields []insumo.Field
	for name, values := range form {
		if _, meta := formMetaKeys[name]; meta {
			continue
		}
		for _, v := range values {
			fields = append(fields, insumo.Field{Name: name, Value: v})
		}
	}

	flash := s.flashFor(sessionToken(c))

	sub, batchErrs, err := insumo.Build(unitInfo(unit), date, market, fields)
	if err != nil {
		if errors.Is(err, insumo.ErrPastDate) {
			s.metrics.Submissions.WithLabelValues("past_date").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(batchErrs) > 0 {
		s.metrics.Submissions.WithLabelValues("rejected").Inc()
		for _, names := range batchErrs {
			s.metrics.ValidationErrors.Add(float64(len(names)))
		}
		flash.TriggerErrors(insumo.ErrorHourKeys(batchErrs))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": batchErrs})
		return
	}

	day, _ := time.Parse("2006-01-02", date) // already validated by Build

	result, ok := s.runUpsert(c, *sub, day)
	if !ok {
		return
	}

	flash.TriggerSuccess(insumo.TouchedHours(result))

	c.JSON(http.StatusOK, gin.H{
		"data":   result,
		"notice": insumo.Notice(result),
	})
}

// runUpsert guards the tuple against double submits, writes the batch, and
// records metrics and the downstream event. Writes the error response itself
// and returns ok=false on failure.
func (s *Server) runUpsert(c *gin.Context, sub insumo.Submission, day time.Time) (insumo.UpsertResult, bool) {
	key := sub.UnitID + "|" + sub.Market + "|" + sub.Date
	if !s.tryAcquire(key) {
		c.JSON(http.StatusConflict, gin.H{"error": "a submission for this unit, date and market is already in progress"})
		return insumo.UpsertResult{}, false
	}
	defer s.release(key)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	start := time.Now()
	result, err := s.store.UpsertInsumos(ctx, sub.UnitID, sub.Market, day, sub.Insumos)
	if err != nil {
		s.metrics.Submissions.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return insumo.UpsertResult{}, false
	}
	s.metrics.UpsertDuration.Observe(time.Since(start).Seconds())
	s.metrics.BatchSize.Observe(float64(len(sub.Insumos)))

	if result.NoChanges() {
		s.metrics.Submissions.WithLabelValues("no_change").Inc()
	} else {
		s.metrics.Submissions.WithLabelValues("accepted").Inc()
		s.metrics.RowsUpserted.Add(float64(len(result.Inserted) + len(result.Updated)))
		s.publisher.PublishSubmission(ctx, events.FromResult(sub, result, time.Now().UTC()))
	}

	return result, true
}

// handleV1InsumoFlash reports the transient highlight state for the caller's
// session: hours flashing success and hours flashing validation errors.
// GET /api/v1/insumos/flash
func (s *Server) handleV1InsumoFlash(c *gin.Context) {
	flash := s.flashFor(sessionToken(c))
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"success": flash.SuccessHours(),
			"errors":  flash.ErrorHours(),
		},
	})
}

func unitInfo(u *db.Unit) insumo.UnitInfo {
	return insumo.UnitInfo{
		ID:       u.ID,
		DualFuel: u.FuelType2 != nil,
		Timezone: u.Timezone,
	}
}
