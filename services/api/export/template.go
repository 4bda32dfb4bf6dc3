package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Column is one spreadsheet column of the export template. Key selects which
// grid value the column renders; Header and Width control presentation.
type Column struct {
	Key    string  `yaml:"key"`
	Header string  `yaml:"header"`
	Width  float64 `yaml:"width"`
}

// Template is the fixed layout of the exported workbook. Deployments can
// override it with a YAML file; the built-in default matches the grid.
type Template struct {
	Sheet   string   `yaml:"sheet"`
	Title   string   `yaml:"title"`
	Columns []Column `yaml:"columns"`
}

// DefaultTemplate returns the built-in export layout.
func DefaultTemplate() Template {
	return Template{
		Sheet: "Disponibilidades",
		Title: "Disponibilidades y ofertas por hora",
		Columns: []Column{
			{Key: "hour", Header: "Hora", Width: 8},
			{Key: "capacity_siv", Header: "Disponibilidad SIV (MW)", Width: 22},
			{Key: "capacity_cenace", Header: "Disponibilidad CENACE (MW)", Width: 26},
			{Key: "min", Header: "Oferta min (MW)", Width: 16},
			{Key: "max", Header: "Oferta max (MW)", Width: 16},
			{Key: "share_ft1", Header: "Comb. 1 (%)", Width: 12},
			{Key: "share_ft2", Header: "Comb. 2 (%)", Width: 12},
			{Key: "price_ft1", Header: "Precio comb. 1", Width: 15},
			{Key: "price_ft2", Header: "Precio comb. 2", Width: 15},
			{Key: "agc", Header: "AGC", Width: 7},
			{Key: "note", Header: "Nota", Width: 18},
		},
	}
}

// LoadTemplate reads a template from a YAML file. An empty path returns the
// default layout; a partially specified file inherits the defaults for the
// fields it leaves out.
func LoadTemplate(path string) (Template, error) {
	tpl := DefaultTemplate()
	if path == "" {
		return tpl, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tpl, fmt.Errorf("read export template: %w", err)
	}

	var loaded Template
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return tpl, fmt.Errorf("parse export template: %w", err)
	}

	if loaded.Sheet != "" {
		tpl.Sheet = loaded.Sheet
	}
	if loaded.Title != "" {
		tpl.Title = loaded.Title
	}
	if len(loaded.Columns) > 0 {
		tpl.Columns = loaded.Columns
	}
	return tpl, nil
}
