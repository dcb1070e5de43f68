package domain

import (
	"regexp"
	"strings"
)

// LabelKind selects which label set a discipline belongs to.
type LabelKind string

// Label sets kept per discipline.
const (
	LabelsImages   LabelKind = "imagenes"
	LabelsComments LabelKind = "comentarios"
)

// Labels holds per-discipline label presets and the frequent-words list.
type Labels struct {
	Images   map[string][]string `json:"imagenes"`
	Comments map[string][]string `json:"comentarios"`
	Frequent []string            `json:"frecuentes"`
}

// Set returns the label map for kind, or nil for an unknown kind.
func (l *Labels) Set(kind LabelKind) map[string][]string {
	switch kind {
	case LabelsImages:
		if l.Images == nil {
			l.Images = map[string][]string{}
		}
		return l.Images
	case LabelsComments:
		if l.Comments == nil {
			l.Comments = map[string][]string{}
		}
		return l.Comments
	default:
		return nil
	}
}

// ReportStyle is the style block consumed by export collaborators.
type ReportStyle struct {
	FontFamily      string  `json:"fontFamily"`
	FontSize        string  `json:"fontSize"`
	LineHeight      float64 `json:"lineHeight"`
	SignatureName   string  `json:"firmaNombre"`
	SignatureLine   string  `json:"firmaLinea"`
	Logo            string  `json:"logo"`
	LogoWidth       string  `json:"logoWidth"`
	LogoAlign       string  `json:"logoAlign"`
	SignatureMode   string  `json:"firmaModo"`
	SignatureImage  string  `json:"firmaImagen"`
	PrimaryColor    string  `json:"colorPrimario"`
	SecondaryColor  string  `json:"colorSecundario"`
	TextColor       string  `json:"colorTexto"`
	BackgroundColor string  `json:"colorFondo"`
	Spacing         string  `json:"espaciado"`
	BorderRadius    string  `json:"bordeRadius"`
}

// QuickCapturePreset tunes the quick-capture screen.
type QuickCapturePreset struct {
	ShowPreview     bool   `json:"mostrarPreview"`
	CompactMode     bool   `json:"compactMode"`
	ImageSize       string `json:"imageSize"`
	ShowComments    bool   `json:"showComments"`
	DefaultExpanded bool   `json:"defaultExpanded"`
}

// LayoutPresets groups per-screen presets.
type LayoutPresets struct {
	QuickCapture QuickCapturePreset `json:"capturaRapida"`
}

// SubElement is one inspectable part of a category.
type SubElement struct {
	ID     string `json:"id"`
	Name   string `json:"nombre"`
	Active bool   `json:"activo"`
}

// Category is a top-level inspection category.
type Category struct {
	ID          string       `json:"id"`
	Name        string       `json:"nombre"`
	Active      bool         `json:"activo"`
	SubElements []SubElement `json:"subelementos"`
}

// FindSubElement returns the index of the sub-element with id, or -1.
func (c Category) FindSubElement(id string) int {
	for i, sub := range c.SubElements {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

// Taxonomy lists the configured inspection categories.
type Taxonomy struct {
	Categories []Category `json:"categorias"`
}

// FindCategory returns the index of the category with id, or -1.
func (t Taxonomy) FindCategory(id string) int {
	for i, cat := range t.Categories {
		if cat.ID == id {
			return i
		}
	}
	return -1
}

// Configuration is the single global settings object edited from the
// configuration screens. It is always replaced as a whole.
type Configuration struct {
	Labels        Labels        `json:"etiquetas"`
	Style         ReportStyle   `json:"estiloInforme"`
	LayoutPresets LayoutPresets `json:"layoutPresets"`
	Taxonomy      Taxonomy      `json:"elementosInspeccion"`
}

// DefaultConfiguration returns the configuration used when nothing is persisted.
func DefaultConfiguration() Configuration {
	return Configuration{
		Labels: Labels{
			Images:   map[string][]string{},
			Comments: map[string][]string{},
			Frequent: []string{"reparar", "revisar", "no terminado", "terminado", "se solicita", "se detecta", "se debe"},
		},
		Style: ReportStyle{
			FontFamily:      "Arial, sans-serif",
			FontSize:        "11pt",
			LineHeight:      1.4,
			SignatureName:   "Inspector Asignado",
			SignatureLine:   "_________________________",
			LogoWidth:       "150px",
			LogoAlign:       "centro",
			SignatureMode:   "texto",
			PrimaryColor:    "#0056b3",
			SecondaryColor:  "#5a6268",
			TextColor:       "#212529",
			BackgroundColor: "#ffffff",
			Spacing:         "1rem",
			BorderRadius:    "4px",
		},
		LayoutPresets: LayoutPresets{
			QuickCapture: QuickCapturePreset{
				ShowPreview:     true,
				ImageSize:       "medium",
				ShowComments:    true,
				DefaultExpanded: true,
			},
		},
		Taxonomy: Taxonomy{Categories: []Category{
			newCategory("PAREDES", "Bloqueo", "Repello", "Pintura"),
			newCategory("VENTANA", "Marco", "Vidrio", "Sello"),
			newCategory("CIELORRASO", "Estructura ángulo", "Estructura Retícula", "Láminas"),
		}},
	}
}

func newCategory(name string, subs ...string) Category {
	cat := Category{ID: Slug(name), Name: name, Active: true, SubElements: make([]SubElement, 0, len(subs))}
	for _, sub := range subs {
		cat.SubElements = append(cat.SubElements, SubElement{ID: Slug(sub), Name: sub, Active: true})
	}
	return cat
}

var (
	slugSpace   = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slug derives an identifier from a display name: lower-cased, whitespace
// runs replaced by "-", and anything outside [a-z0-9-] dropped.
func Slug(name string) string {
	s := slugSpace.ReplaceAllString(strings.ToLower(name), "-")
	return slugInvalid.ReplaceAllString(s, "")
}
