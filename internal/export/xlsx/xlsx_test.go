package xlsx

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"inspectorcore/internal/core"
	"inspectorcore/pkg/domain"
)

func exportSnapshot() core.Snapshot {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	first := domain.NewRecord(now)
	first.State["PAREDES"]["Bloqueo"] = domain.StatusPass
	first.State["PUERTA"]["Hoja"] = domain.StatusFail
	first.State["VENTANA"] = map[string]domain.Status{"Marco": domain.StatusPass}
	first.VisibleCategories = map[string]bool{"CIELORRASO": false, "VENTANA": false}
	first.Comments = "fisura en muro norte"
	first.Images = []domain.Image{{Src: "data:,x"}}

	hidden := domain.NewRecord(now)
	hidden.Visible = false

	third := domain.NewRecord(now)
	third.Name = "Cocina"
	third.State["VENTANA"] = map[string]domain.Status{"Marco": domain.StatusPartial}
	third.VisibleCategories = map[string]bool{"CIELORRASO": false}

	return core.Snapshot{
		TakenAt:         now,
		Records:         map[string]domain.InspectionRecord{"A-101": first, "A-102": hidden, "A-103": third},
		ActiveLocations: []string{"A-101", "A-102", "A-103"},
		QuickReports: []domain.QuickReport{{
			ID: "q1", Title: "Recorrido", Date: "2024-03-15",
			Items: []domain.QuickItem{
				{Location: "A-101", Category: "PAREDES", SubElement: "Pintura", Status: domain.StatusFail, Comment: "manchas", Image: domain.Image{Label: "muro"}},
				{Location: "A-103", Comment: "ok"},
			},
		}},
		ElementReports: []domain.ElementReport{{
			ID: "e1", Title: "Ventanas", Module: "A", Level: "1", Type: "INTERIOR",
			Items: []domain.ElementItem{{Location: "A-103", Category: "VENTANA", SubElement: "Sello", Observation: "sin sello"}},
		}},
		Configuration: domain.DefaultConfiguration(),
	}
}

func roundTrip(t *testing.T, snap core.Snapshot) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func value(t *testing.T, f *excelize.File, sheet, at string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, at)
	require.NoError(t, err)
	return v
}

func TestWorkbookSheets(t *testing.T) {
	f := roundTrip(t, exportSnapshot())
	assert.Equal(t, []string{SheetSummary, SheetComments, SheetQuick, SheetElements}, f.GetSheetList())
	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Inspector Asignado", props.Creator)
}

func TestSummaryMatrix(t *testing.T) {
	f := roundTrip(t, exportSnapshot())
	cases := map[string]string{
		"A1": "Ambiente",
		"D1": "PAREDES",
		"G1": "VENTANA",
		"J1": "PUERTA",
		"D2": "Bloqueo",
		"F2": "Pintura",
		"G2": "Marco",
		"J2": "Cerradura",
		"K2": "Hoja",
		"L2": "Marco",
		"A3": "A-101",
		"C3": "2024-03-15",
		"D3": "✅",
		"G3": "", // VENTANA hidden for A-101
		"K3": "❌",
		"A4": "A-103",
		"B4": "Cocina",
		"G4": "⚠️",
		"A5": "", // A-102 is not visible
		"M2": "", // CIELORRASO hidden everywhere
	}
	for at, want := range cases {
		assert.Equal(t, want, value(t, f, SheetSummary, at), at)
	}

	merges, err := f.GetMergeCells(SheetSummary)
	require.NoError(t, err)
	var ranges []string
	for _, m := range merges {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.Contains(t, ranges, "D1:F1")
	assert.Contains(t, ranges, "J1:L1")

	styled, err := f.GetCellStyle(SheetSummary, "D3")
	require.NoError(t, err)
	plain, err := f.GetCellStyle(SheetSummary, "E3")
	require.NoError(t, err)
	assert.NotEqual(t, plain, styled)
}

func TestCommentsAndReports(t *testing.T) {
	f := roundTrip(t, exportSnapshot())

	assert.Equal(t, "A-101", value(t, f, SheetComments, "A2"))
	assert.Equal(t, "fisura en muro norte", value(t, f, SheetComments, "C2"))
	assert.Equal(t, "1", value(t, f, SheetComments, "D2"))
	assert.Equal(t, "grilla", value(t, f, SheetComments, "E2"))
	assert.Equal(t, "A-103", value(t, f, SheetComments, "A3"))

	assert.Equal(t, "Recorrido", value(t, f, SheetQuick, "A2"))
	assert.Equal(t, "❌", value(t, f, SheetQuick, "G2"))
	assert.Equal(t, "muro", value(t, f, SheetQuick, "I2"))
	assert.Equal(t, "2", value(t, f, SheetQuick, "C3"))

	assert.Equal(t, "INTERIOR", value(t, f, SheetElements, "E2"))
	assert.Equal(t, "sin sello", value(t, f, SheetElements, "J2"))
}

func TestEmptySnapshot(t *testing.T) {
	f := roundTrip(t, core.Snapshot{Configuration: domain.DefaultConfiguration()})
	assert.Equal(t, "Ambiente", value(t, f, SheetSummary, "A1"))
	assert.Equal(t, "", value(t, f, SheetSummary, "D1"))
	rows, err := f.GetRows(SheetQuick)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "informe.xlsx")
	require.NoError(t, WriteFile(path, exportSnapshot()))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, "A-101", value(t, f, SheetSummary, "A3"))
}

func TestPaletteColor(t *testing.T) {
	assert.Equal(t, "0056B3", paletteColor("#0056b3", "000000"))
	assert.Equal(t, "ABCDEF", paletteColor("abcdef", "000000"))
	assert.Equal(t, "000000", paletteColor("blue", "000000"))
}
