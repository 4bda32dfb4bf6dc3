package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridworks-mx/insumo-console/services/api/db"
	"github.com/gridworks-mx/insumo-console/services/api/export"
	"github.com/gridworks-mx/insumo-console/services/api/insumo"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleV1ExportInsumos renders the grid for a unit/date/market selection to
// an xlsx workbook using the fixed template.
// GET /api/v1/insumos/export?unit_id=U1&date=2026-09-01&market=MDA
func (s *Server) handleV1ExportInsumos(c *gin.Context) {
	q, ok := parseLookupQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	unit, err := s.store.GetUnit(ctx, q.UnitID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if unit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		return
	}

	availabilities, err := s.store.FetchAvailabilities(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	insumos, err := s.store.FetchInsumos(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	grid := buildExportGrid(unit, q, availabilities, insumos)

	workbook, err := export.BuildWorkbook(s.exportTpl, grid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	buf, err := workbook.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.metrics.Exports.Inc()

	filename := fmt.Sprintf("insumos_%s_%s_%s.xlsx", q.UnitID, q.Day.Format("2006-01-02"), q.Market)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// buildExportGrid joins the two upstream capacity series and the prior
// submissions by hour index, one row per hour of the selected day.
func buildExportGrid(unit *db.Unit, q db.LookupQuery, availabilities []db.Availability, insumos []db.Insumo) export.Grid {
	hours := insumo.HoursInDay(q.Day, unit.Timezone)

	rows := make([]export.HourRow, hours)
	for i := range rows {
		rows[i].Hour = i + 1
	}

	for _, a := range availabilities {
		if a.Hour < 1 || a.Hour > hours {
			continue
		}
		row := &rows[a.Hour-1]
		switch a.Source {
		case "siv":
			row.CapacitySIV = a.CapacityMW
		case "cenace":
			row.CapacityCENACE = a.CapacityMW
		}
	}

	for _, ins := range insumos {
		if ins.Hour < 1 || ins.Hour > hours {
			continue
		}
		row := &rows[ins.Hour-1]
		agc := ins.AGC
		price1 := ins.PriceFT1
		row.Min = ins.MinMW
		row.Max = ins.MaxMW
		row.ShareFT1 = ins.ShareFT1
		row.ShareFT2 = ins.ShareFT2
		row.Note = ins.Note
		row.AGC = &agc
		row.PriceFT1 = &price1
		row.PriceFT2 = ins.PriceFT2
	}

	return export.Grid{
		UnitName: unit.Name,
		Date:     q.Day.Format("2006-01-02"),
		Market:   q.Market,
		Rows:     rows,
	}
}
