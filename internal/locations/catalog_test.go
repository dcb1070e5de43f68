package locations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(locs []Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.Code)
	}
	return out
}

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]string{
		"-100": "-1", "000": "0", "100": "1", "200": "2", "300": "3", "TECHO": "T", "400": "400", "": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLevel(in), "level %q", in)
	}
	assert.Equal(t, "1-A", InteriorPrefix("A", "100"))
}

func TestScope(t *testing.T) {
	cases := []struct {
		code                string
		module, level, kind string
	}{
		{"1-A-101", "A", "100", TypeInterior},
		{"2-B-201", "B", "200", TypeInterior},
		{"-1-B-001", "B", "-100", TypeInterior},
		{"T-C-001", "C", "TECHO", TypeInterior},
		{"0-A-1-ANEXO", "A", "000", TypeInterior},
		{"EXT-B-000-9", "B", "000", TypeExterior},
		{"EXT-A--100-2", "A", "-100", TypeExterior},
		{"ESC-C-200-5", "C", "200", TypeStairs},
	}
	for _, tc := range cases {
		module, level, kind, ok := Scope(tc.code)
		require.True(t, ok, tc.code)
		assert.Equal(t, []string{tc.module, tc.level, tc.kind}, []string{module, level, kind}, tc.code)
	}
	for _, code := range []string{"", "A", "1-A", "EXT-B", "ESC--1", "1_CLON_1"} {
		_, _, _, ok := Scope(code)
		assert.False(t, ok, code)
	}

	// every generated code maps back to the selectors that produced it
	c := Default()
	for _, module := range c.ModuleNames() {
		for _, level := range c.LevelNames(module) {
			for _, typ := range []string{TypeInterior, TypeExterior, TypeStairs} {
				for _, loc := range c.Available(module, level, typ) {
					m, l, k, ok := Scope(loc.Code)
					require.True(t, ok, loc.Code)
					assert.Equal(t, []string{module, level, typ}, []string{m, l, k}, loc.Code)
				}
			}
		}
	}
}

func TestInteriorFiltersByPrefix(t *testing.T) {
	c, err := Parse([]byte(`
modulos:
  A:
    niveles:
      "100":
        - {codigo: 1-A-101, nombre: Oficina}
        - {codigo: 2-A-201, nombre: Mal ubicado}
        - {codigo: 1-A-102, nombre: Sala}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"1-A-101", "1-A-102"}, codes(c.Available("A", "100", TypeInterior)))
	assert.Empty(t, c.Available("A", "200", TypeInterior))
	assert.Empty(t, c.Available("Z", "100", TypeInterior))
}

func TestExteriorAndStairs(t *testing.T) {
	c := Catalog{}
	ext := c.Available("B", "000", TypeExterior)
	require.Len(t, ext, 9)
	assert.Equal(t, Location{Code: "EXT-B-000-1", Name: "Aceras"}, ext[0])
	assert.Equal(t, Location{Code: "EXT-B-000-9", Name: "Rampas"}, ext[8])

	stairs := c.Available("C", "200", TypeStairs)
	assert.Equal(t, []string{"ESC-C-200-1", "ESC-C-200-2", "ESC-C-200-3", "ESC-C-200-4", "ESC-C-200-5"}, codes(stairs))
	assert.Equal(t, "Escalera C5", stairs[0].Name)
	assert.Empty(t, c.Available("Z", "200", TypeStairs))
	assert.Nil(t, c.Available("A", "100", "PATIO"))
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"A", "B", "C"}, c.ModuleNames())
	assert.Equal(t, []string{"000", "100", "200"}, c.LevelNames("A"))
	assert.Contains(t, codes(c.Available("A", "100", TypeInterior)), "1-A-101")
	assert.Equal(t, []string{"T-C-001"}, codes(c.Available("C", "TECHO", TypeInterior)))
	assert.Equal(t, []string{"-1-B-001", "-1-B-002"}, codes(c.Available("B", "-100", TypeInterior)))
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Modules)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modulos: {}\n"), 0o600))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Empty(t, c.ModuleNames())

	require.NoError(t, os.WriteFile(path, []byte("modulos: ["), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse catalog")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read catalog")
}
