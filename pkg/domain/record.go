// Package domain defines the inspection records, reports, checkpoints and
// configuration values held by the inspector store, together with the
// structural clone helpers used whenever a value crosses the store boundary.
package domain

import "time"

// Status is the symbol recorded for one sub-element of a category.
// The store never validates it; unknown symbols pass through unchanged.
type Status string

// Status symbols offered by the capture screens.
const (
	StatusUnset         Status = ""
	StatusPass          Status = "✅"
	StatusFail          Status = "❌"
	StatusPartial       Status = "⚠️"
	StatusNotApplicable Status = "N/A"
)

// Known reports whether s is one of the symbols offered by the capture screens.
func (s Status) Known() bool {
	switch s {
	case StatusUnset, StatusPass, StatusFail, StatusPartial, StatusNotApplicable:
		return true
	default:
		return false
	}
}

// Layout is the per-location display arrangement.
type Layout string

// Display arrangements. LayoutGrid is the default for new records.
const (
	LayoutGrid    Layout = "grilla"
	LayoutList    Layout = "lista"
	LayoutCompact Layout = "compacto"
)

// DateFormat is the ISO calendar date layout used by records and reports.
const DateFormat = "2006-01-02"

// FormatDate renders t as an ISO calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// StatusGrid maps category name -> sub-element name -> status.
type StatusGrid map[string]map[string]Status

// Image is a captured photo. Src is normally a data URI; the store does not
// inspect it. The descriptive fields are optional and carried as-is.
type Image struct {
	Src        string   `json:"src"`
	Label      string   `json:"etiqueta,omitempty"`
	Category   string   `json:"categoria,omitempty"`
	SubElement string   `json:"subelemento,omitempty"`
	Comment    string   `json:"comentario,omitempty"`
	CreatedAt  string   `json:"fechaCreacion,omitempty"`
	Tags       []string `json:"etiquetas,omitempty"`
}

// InspectionRecord is the inspection data owned by one location.
// Records held by the store always have every field populated.
type InspectionRecord struct {
	State             StatusGrid      `json:"estado"`
	Comments          string          `json:"comentarios"`
	Images            []Image         `json:"imagenes"`
	Layout            Layout          `json:"layout"`
	Visible           bool            `json:"visible"`
	Name              string          `json:"nombre,omitempty"`
	VisibleCategories map[string]bool `json:"categoriasVisibles"`
	Date              string          `json:"fecha"`
}

// DisplayName returns the name override, or id when none is set.
func (r InspectionRecord) DisplayName(id string) string {
	if r.Name != "" {
		return r.Name
	}
	return id
}

// CategoryVisible reports whether category should surface in exports.
// Categories absent from VisibleCategories are visible.
func (r InspectionRecord) CategoryVisible(category string) bool {
	v, ok := r.VisibleCategories[category]
	return !ok || v
}

// DefaultState returns the base status grid given to brand-new records.
func DefaultState() StatusGrid {
	return StatusGrid{
		"PAREDES": {"Bloqueo": StatusUnset, "Repello": StatusUnset, "Pintura": StatusUnset},
		"PUERTA":  {"Marco": StatusUnset, "Hoja": StatusUnset, "Cerradura": StatusUnset},
	}
}

// NewRecord returns a fully defaulted record dated at now.
func NewRecord(now time.Time) InspectionRecord {
	return InspectionRecord{
		State:             DefaultState(),
		Comments:          "",
		Images:            []Image{},
		Layout:            LayoutGrid,
		Visible:           true,
		VisibleCategories: map[string]bool{},
		Date:              FormatDate(now),
	}
}
