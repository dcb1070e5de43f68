// Package locations lists the inspectable locations of the project: interior
// rooms from a YAML catalog, plus the fixed exterior areas and the stairwells
// of each module.
package locations

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Location types offered by the capture screens.
const (
	TypeInterior = "INTERIOR"
	TypeExterior = "EXTERIOR"
	TypeStairs   = "ESCALERA"
)

// Location is one selectable location.
type Location struct {
	Code string `yaml:"codigo" json:"codigo"`
	Name string `yaml:"nombre" json:"nombre"`
}

// Module holds the interior rooms of one building module keyed by level.
type Module struct {
	Levels map[string][]Location `yaml:"niveles"`
}

// Catalog is the project's room inventory.
type Catalog struct {
	Modules map[string]Module `yaml:"modulos"`
}

//go:embed default_catalog.yaml
var defaultCatalog []byte

var exteriorAreas = []string{
	"Aceras", "Jardinería", "Calle / Pavimentos", "Cordones", "Plaza Central",
	"Estacionamientos", "Señalización Vial", "Pintura Exterior", "Rampas",
}

var stairsByModule = map[string][]string{
	"A": {"Escalera A4", "Escalera A3", "Escalera A2", "Escalera A1"},
	"B": {"Escalera B1", "Escalera B2", "Escalera B3"},
	"C": {"Escalera C5", "Escalera C4", "Escalera C3", "Escalera C2", "Escalera C1"},
}

// Default returns the catalog bundled with the binary.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("locations: bundled catalog: %v", err))
	}
	return c
}

// Load reads a catalog file; an empty path yields Default.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	// #nosec G304 -- the catalog path is chosen by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, err
	}
	if c.Modules == nil {
		c.Modules = map[string]Module{}
	}
	return c, nil
}

// NormalizeLevel maps a level selector to the prefix used in room codes.
func NormalizeLevel(level string) string {
	switch level {
	case "-100":
		return "-1"
	case "000":
		return "0"
	case "100":
		return "1"
	case "200":
		return "2"
	case "300":
		return "3"
	case "TECHO":
		return "T"
	default:
		return level
	}
}

// denormalizeLevel is the inverse of NormalizeLevel.
func denormalizeLevel(prefix string) string {
	switch prefix {
	case "-1":
		return "-100"
	case "0":
		return "000"
	case "1":
		return "100"
	case "2":
		return "200"
	case "3":
		return "300"
	case "T":
		return "TECHO"
	default:
		return prefix
	}
}

// Scope recovers the module, level selector and type a location code was
// generated for. Exterior and stairwell codes carry the level selector
// verbatim; interior codes carry its normalized prefix. ok is false for codes
// that follow neither shape.
func Scope(code string) (module, level, typ string, ok bool) {
	for kind, t := range map[string]string{"EXT-": TypeExterior, "ESC-": TypeStairs} {
		rest, found := strings.CutPrefix(code, kind)
		if !found {
			continue
		}
		module, rest, found = strings.Cut(rest, "-")
		last := strings.LastIndex(rest, "-")
		if !found || module == "" || last <= 0 {
			return "", "", "", false
		}
		return module, rest[:last], t, true
	}
	sign := ""
	if rest, neg := strings.CutPrefix(code, "-"); neg {
		sign, code = "-", rest
	}
	parts := strings.SplitN(code, "-", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[1], denormalizeLevel(sign + parts[0]), TypeInterior, true
}

// InteriorPrefix is the code prefix every interior room of module/level
// carries, e.g. "1-A" for module A level 100.
func InteriorPrefix(module, level string) string {
	return NormalizeLevel(level) + "-" + module
}

// Available lists the locations for the given selectors. Interior rooms whose
// code does not carry the expected prefix are skipped. Unknown types yield
// nothing.
func (c Catalog) Available(module, level, typ string) []Location {
	switch typ {
	case TypeInterior:
		prefix := InteriorPrefix(module, level)
		var out []Location
		for _, loc := range c.Modules[module].Levels[level] {
			if strings.HasPrefix(loc.Code, prefix) {
				out = append(out, loc)
			}
		}
		return out
	case TypeExterior:
		return numbered("EXT", module, level, exteriorAreas)
	case TypeStairs:
		return numbered("ESC", module, level, stairsByModule[module])
	default:
		return nil
	}
}

func numbered(kind, module, level string, names []string) []Location {
	out := make([]Location, 0, len(names))
	for i, name := range names {
		out = append(out, Location{Code: fmt.Sprintf("%s-%s-%s-%d", kind, module, level, i+1), Name: name})
	}
	return out
}

// ModuleNames returns the catalog's modules in order.
func (c Catalog) ModuleNames() []string {
	out := make([]string, 0, len(c.Modules))
	for name := range c.Modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LevelNames returns the levels of module in order.
func (c Catalog) LevelNames(module string) []string {
	levels := c.Modules[module].Levels
	out := make([]string, 0, len(levels))
	for name := range levels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
