// Package xlsx renders a store snapshot as a spreadsheet: a status matrix of
// every visible location against the inspected categories, the location
// comments, and the contents of the quick-capture and element reports.
package xlsx

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"inspectorcore/internal/core"
	"inspectorcore/pkg/domain"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Resumen"
	SheetComments = "Comentarios"
	SheetQuick    = "Captura"
	SheetElements = "Elementos"
)

const (
	fallbackHeaderColor = "0056B3"
	fixedColumns        = 3
)

var (
	statusFills = map[domain.Status]string{
		domain.StatusPass:    "C6EFCE",
		domain.StatusFail:    "FFC7CE",
		domain.StatusPartial: "FFEB9C",
	}
	hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)
)

// column is one category/sub-element pair of the status matrix.
type column struct {
	category string
	sub      string
}

// Write renders snap and writes the workbook to w.
func Write(w io.Writer, snap core.Snapshot) error {
	f, err := Build(snap)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

// WriteFile renders snap into the file at path.
func WriteFile(path string, snap core.Snapshot) error {
	f, err := Build(snap)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return nil
}

// Build renders snap into a new workbook. The caller closes it.
func Build(snap core.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	b := &builder{f: f, snap: snap}
	if err := b.build(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

type builder struct {
	f      *excelize.File
	snap   core.Snapshot
	header int
	status map[domain.Status]int
}

func (b *builder) build() error {
	if err := b.f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	for _, name := range []string{SheetComments, SheetQuick, SheetElements} {
		if _, err := b.f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: add sheet %s: %w", name, err)
		}
	}
	if err := b.styles(); err != nil {
		return err
	}
	steps := []func() error{b.summary, b.comments, b.quickReports, b.elementReports}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	style := b.snap.Configuration.Style
	if err := b.f.SetDocProps(&excelize.DocProperties{
		Title:   "Informe de inspección",
		Creator: style.SignatureName,
		Created: b.snap.TakenAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("xlsx: doc properties: %w", err)
	}
	b.f.SetActiveSheet(0)
	return nil
}

func paletteColor(value, fallback string) string {
	if m := hexColor.FindStringSubmatch(strings.TrimSpace(value)); m != nil {
		return strings.ToUpper(m[1])
	}
	return fallback
}

func (b *builder) styles() error {
	style := b.snap.Configuration.Style
	id, err := b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{paletteColor(style.PrimaryColor, fallbackHeaderColor)}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	b.header = id
	b.status = make(map[domain.Status]int, len(statusFills))
	for status, fill := range statusFills {
		id, err := b.f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return fmt.Errorf("xlsx: status style: %w", err)
		}
		b.status[status] = id
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (b *builder) row(sheet string, row int, values ...any) error {
	if err := b.f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
		return fmt.Errorf("xlsx: %s row %d: %w", sheet, row, err)
	}
	return nil
}

func (b *builder) headerRow(sheet string, values ...any) error {
	if err := b.row(sheet, 1, values...); err != nil {
		return err
	}
	if err := b.f.SetCellStyle(sheet, cell(1, 1), cell(len(values), 1), b.header); err != nil {
		return fmt.Errorf("xlsx: %s header style: %w", sheet, err)
	}
	return b.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// matrixColumns lists the category/sub-element pairs shown in the summary:
// active taxonomy entries first, in configuration order, then any other pairs
// found in the visible records, sorted. Categories hidden in every visible
// location are left out.
func matrixColumns(snap core.Snapshot, locations []string) []column {
	visible := func(category string) bool {
		for _, id := range locations {
			if snap.Records[id].CategoryVisible(category) {
				return true
			}
		}
		return false
	}
	seen := map[column]bool{}
	var cols []column
	add := func(c column) {
		if !seen[c] && visible(c.category) {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, cat := range snap.Configuration.Taxonomy.Categories {
		if !cat.Active {
			continue
		}
		for _, sub := range cat.SubElements {
			if sub.Active {
				add(column{category: cat.Name, sub: sub.Name})
			}
		}
	}
	var extra []column
	for _, id := range locations {
		for category, subs := range snap.Records[id].State {
			for sub := range subs {
				c := column{category: category, sub: sub}
				if !seen[c] {
					extra = append(extra, c)
				}
			}
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		if extra[i].category != extra[j].category {
			return extra[i].category < extra[j].category
		}
		return extra[i].sub < extra[j].sub
	})
	for _, c := range extra {
		add(c)
	}
	return cols
}

func (b *builder) summary() error {
	const sheet = SheetSummary
	locations := b.snap.VisibleLocations()
	cols := matrixColumns(b.snap, locations)

	if err := b.row(sheet, 1, "Ambiente", "Nombre", "Fecha"); err != nil {
		return err
	}
	for i := 1; i <= fixedColumns; i++ {
		if err := b.f.MergeCell(sheet, cell(i, 1), cell(i, 2)); err != nil {
			return fmt.Errorf("xlsx: merge: %w", err)
		}
	}
	start := 0
	for i, c := range cols {
		col := fixedColumns + 1 + i
		if err := b.f.SetCellValue(sheet, cell(col, 2), c.sub); err != nil {
			return fmt.Errorf("xlsx: summary header: %w", err)
		}
		if i == len(cols)-1 || cols[i+1].category != c.category {
			first := fixedColumns + 1 + start
			if err := b.f.SetCellValue(sheet, cell(first, 1), c.category); err != nil {
				return fmt.Errorf("xlsx: summary header: %w", err)
			}
			if col > first {
				if err := b.f.MergeCell(sheet, cell(first, 1), cell(col, 1)); err != nil {
					return fmt.Errorf("xlsx: merge: %w", err)
				}
			}
			start = i + 1
		}
	}
	last := fixedColumns + len(cols)
	if err := b.f.SetCellStyle(sheet, cell(1, 1), cell(last, 2), b.header); err != nil {
		return fmt.Errorf("xlsx: summary header style: %w", err)
	}

	for r, id := range locations {
		rec := b.snap.Records[id]
		row := r + 3
		values := []any{id, rec.DisplayName(id), rec.Date}
		for _, c := range cols {
			status := domain.StatusUnset
			if rec.CategoryVisible(c.category) {
				status = rec.State[c.category][c.sub]
			}
			values = append(values, string(status))
		}
		if err := b.row(sheet, row, values...); err != nil {
			return err
		}
		for i, c := range cols {
			if !rec.CategoryVisible(c.category) {
				continue
			}
			if style, ok := b.status[rec.State[c.category][c.sub]]; ok {
				at := cell(fixedColumns+1+i, row)
				if err := b.f.SetCellStyle(sheet, at, at, style); err != nil {
					return fmt.Errorf("xlsx: status style: %w", err)
				}
			}
		}
	}
	if err := b.f.SetColWidth(sheet, "A", "B", 22); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	return b.f.SetPanes(sheet, &excelize.Panes{Freeze: true, XSplit: 1, YSplit: 2, TopLeftCell: "B3", ActivePane: "bottomRight"})
}

func (b *builder) comments() error {
	const sheet = SheetComments
	if err := b.headerRow(sheet, "Ambiente", "Nombre", "Comentarios", "Imágenes", "Disposición"); err != nil {
		return err
	}
	for i, id := range b.snap.VisibleLocations() {
		rec := b.snap.Records[id]
		if err := b.row(sheet, i+2, id, rec.DisplayName(id), rec.Comments, len(rec.Images), string(rec.Layout)); err != nil {
			return err
		}
	}
	if err := b.f.SetColWidth(sheet, "C", "C", 60); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	return nil
}

func (b *builder) quickReports() error {
	const sheet = SheetQuick
	if err := b.headerRow(sheet, "Informe", "Fecha", "#", "Ambiente", "Categoría", "Subelemento", "Estado", "Comentario", "Etiqueta"); err != nil {
		return err
	}
	row := 2
	for _, report := range b.snap.QuickReports {
		for i, it := range report.Items {
			if err := b.row(sheet, row, report.Title, report.Date, i+1, it.Location, it.Category, it.SubElement, string(it.Status), it.Comment, it.Image.Label); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (b *builder) elementReports() error {
	const sheet = SheetElements
	if err := b.headerRow(sheet, "Informe", "Fecha", "Módulo", "Nivel", "Tipo", "Ambiente", "Categoría", "Subelemento", "Estado", "Observación"); err != nil {
		return err
	}
	row := 2
	for _, report := range b.snap.ElementReports {
		for _, it := range report.Items {
			if err := b.row(sheet, row, report.Title, report.Date, report.Module, report.Level, report.Type, it.Location, it.Category, it.SubElement, string(it.Status), it.Observation); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
