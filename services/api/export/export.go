// Package export renders the availability grid to an xlsx workbook using a
// fixed template layout.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// HourRow is one grid row joined client-side by hour index: the two upstream
// capacity figures plus the operator's submitted offer, if any. Nil pointers
// render as empty cells.
type HourRow struct {
	Hour           int
	CapacitySIV    *float64
	CapacityCENACE *float64
	Min            *float64
	Max            *float64
	ShareFT1       *float64
	ShareFT2       *float64
	Note           string
	AGC            *bool
	PriceFT1       *float64
	PriceFT2       *float64
}

// Grid is everything the workbook needs about one unit/date/market selection.
type Grid struct {
	UnitName string
	Date     string
	Market   string
	Rows     []HourRow
}

const headerRowIdx = 3 // title on row 1, data starts below the header

// BuildWorkbook renders the grid into a new workbook per the template.
func BuildWorkbook(tpl Template, grid Grid) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", tpl.Sheet); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s - %s / %s / %s", tpl.Title, grid.UnitName, grid.Date, grid.Market)
	if err := f.SetCellValue(tpl.Sheet, "A1", title); err != nil {
		return nil, err
	}

	for i, col := range tpl.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if col.Width > 0 {
			if err := f.SetColWidth(tpl.Sheet, name, name, col.Width); err != nil {
				return nil, err
			}
		}
		cell, err := excelize.CoordinatesToCellName(i+1, headerRowIdx)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(tpl.Sheet, cell, col.Header); err != nil {
			return nil, err
		}
	}

	for rowIdx, row := range grid.Rows {
		for colIdx, col := range tpl.Columns {
			value, ok := cellValue(col.Key, row)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, headerRowIdx+1+rowIdx)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(tpl.Sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// cellValue resolves a template column key against one grid row. Shares are
// rendered back as 0-100 percentages, matching the entry grid.
func cellValue(key string, row HourRow) (any, bool) {
	switch key {
	case "hour":
		return row.Hour, true
	case "capacity_siv":
		return floatCell(row.CapacitySIV)
	case "capacity_cenace":
		return floatCell(row.CapacityCENACE)
	case "min":
		return floatCell(row.Min)
	case "max":
		return floatCell(row.Max)
	case "share_ft1":
		return shareCell(row.ShareFT1)
	case "share_ft2":
		return shareCell(row.ShareFT2)
	case "price_ft1":
		return floatCell(row.PriceFT1)
	case "price_ft2":
		return floatCell(row.PriceFT2)
	case "agc":
		if row.AGC == nil {
			return nil, false
		}
		if *row.AGC {
			return "SI", true
		}
		return "NO", true
	case "note":
		if row.Note == "" {
			return nil, false
		}
		return row.Note, true
	default:
		return nil, false
	}
}

func floatCell(v *float64) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

func shareCell(v *float64) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v * 100, true
}
