package domain

// QuickItem is one entry of a quick-capture report.
type QuickItem struct {
	Image      Image   `json:"imagen"`
	Images     []Image `json:"imagenes,omitempty"`
	Comment    string  `json:"comentario"`
	Category   string  `json:"categoria"`
	SubElement string  `json:"subelemento"`
	Status     Status  `json:"estado"`
	Module     string  `json:"modulo"`
	Level      string  `json:"nivel"`
	Type       string  `json:"tipo"`
	Location   string  `json:"ambiente"`
}

// ElementItem is one entry of an element-based report.
type ElementItem struct {
	Category    string `json:"categoria"`
	SubElement  string `json:"subelemento"`
	Status      Status `json:"estado"`
	Observation string `json:"observacion"`
	Image       *Image `json:"imagen"`
	Location    string `json:"ambiente"`
}

// Report is an ordered, user-created collection of items. Module, Level and
// Type are only filled for element-based reports.
type Report[I any] struct {
	ID     string `json:"id"`
	Title  string `json:"titulo"`
	Date   string `json:"fecha"`
	Module string `json:"modulo,omitempty"`
	Level  string `json:"nivel,omitempty"`
	Type   string `json:"tipo,omitempty"`
	Items  []I    `json:"items"`
}

type (
	// QuickReport is a quick-capture report.
	QuickReport = Report[QuickItem]
	// ElementReport is an element-based report.
	ElementReport = Report[ElementItem]
)
