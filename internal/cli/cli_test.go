package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"inspectorcore/internal/core"
	"inspectorcore/internal/kv"
	"inspectorcore/pkg/domain"
)

type env struct {
	t      *testing.T
	dir    string
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "inspector.yaml")
	settings := fmt.Sprintf(`storage:
  driver: sqlite
  sqlite_path: %s
blob:
  driver: fs
  fs_root: %s
log:
  level: warn
`, filepath.Join(dir, "state.db"), filepath.Join(dir, "blobs"))
	require.NoError(t, os.WriteFile(cfg, []byte(settings), 0o600))
	return &env{t: t, dir: dir, config: cfg}
}

// run executes one inspectorctl invocation and returns stdout and stderr.
func (e *env) run(args ...string) (string, string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.config, "--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(args...)
	require.NoError(e.t, err, "stderr: %s", errOut)
	return out
}

func TestLocationLifecycle(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun("locations", "list"), "(no locations)")

	assert.Contains(t, e.mustRun("locations", "select", "1-A-101"), "selected 1-A-101")
	e.mustRun("locations", "status", "1-A-101", "PAREDES", "Bloqueo", "✅")
	e.mustRun("locations", "comment", "1-A-101", "fisura")
	e.mustRun("locations", "rename", "1-A-101", "Oficina 101")

	list := e.mustRun("locations", "list")
	assert.Contains(t, list, "1-A-101")
	assert.Contains(t, list, "Oficina 101")
	assert.Contains(t, list, "1/6")

	show := e.mustRun("locations", "show", "1-A-101", "--json")
	assert.Contains(t, show, `"comentarios": "fisura"`)
	assert.Contains(t, show, `"Bloqueo": "✅"`)

	assert.Contains(t, e.mustRun("locations", "clone", "1-A-101"), "1-A-101_CLON_1")
	e.mustRun("locations", "delete", "1-A-101")
	list = e.mustRun("locations", "list")
	assert.NotContains(t, list, "1-A-101 ")
	assert.Contains(t, list, "1-A-101_CLON_1")
	assert.Contains(t, list, "Oficina 101 (Copia 1)")

	_, _, err := e.run("locations", "clone", "missing")
	assert.Error(t, err)
	_, _, err = e.run("locations", "rename", "missing", "x")
	assert.Error(t, err)
}

func TestToggleVisibility(t *testing.T) {
	e := newEnv(t)
	e.mustRun("locations", "select", "1-A-101")
	assert.Contains(t, e.mustRun("locations", "toggle", "1-A-101"), "visible: no")
	assert.Contains(t, e.mustRun("locations", "toggle", "1-A-101"), "visible: yes")
	assert.Contains(t, e.mustRun("locations", "toggle", "1-A-101", "--category", "PUERTA"), "PUERTA visible: no")
	assert.Contains(t, e.mustRun("locations", "show", "1-A-101"), "PUERTA (hidden)")
}

func TestExceptionApply(t *testing.T) {
	e := newEnv(t)
	photo := filepath.Join(e.dir, "muro.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\nnot really"), 0o600))

	out := e.mustRun("exception", "apply", "--category", "PAREDES", "--sub", "Pintura", "--observation", "manchas", "--image", photo, "A", "B")
	assert.Contains(t, out, "2 location(s)")

	show := e.mustRun("locations", "show", "B", "--json")
	assert.Contains(t, show, `"Pintura": "❌"`)
	assert.Contains(t, show, "manchas")
	assert.Contains(t, show, "data:image/png;base64,")
	assert.Contains(t, show, `"etiqueta": "muro.png"`)

	_, _, err := e.run("exception", "apply", "--sub", "x", "A")
	assert.Error(t, err)
}

func TestCheckpoints(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun("checkpoint", "list"), "(no checkpoints)")
	e.mustRun("locations", "select", "A")
	out := e.mustRun("checkpoint", "create")
	ts := strings.Fields(out)[2]

	e.mustRun("locations", "select", "B")
	list := e.mustRun("checkpoint", "list")
	assert.Contains(t, list, ts)

	assert.Contains(t, e.mustRun("checkpoint", "rollback", ts), "rolled back")
	locs := e.mustRun("locations", "list")
	assert.Contains(t, locs, "A ")
	assert.NotContains(t, locs, "B ")

	e.mustRun("checkpoint", "delete", ts)
	_, _, err := e.run("checkpoint", "rollback", ts)
	assert.Error(t, err)
	_, _, err = e.run("checkpoint", "delete", "abc")
	assert.Error(t, err)
}

func TestReports(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run("report", "quick", "add-item", "--comment", "x")
	assert.Error(t, err)

	e.mustRun("report", "quick", "create", "--id", "r1", "--title", "Recorrido", "--date", "2024-03-15")
	e.mustRun("report", "quick", "add-item", "--location", "A", "--category", "PAREDES", "--status", "❌", "--comment", "mancha")
	e.mustRun("report", "quick", "create", "--id", "r2", "--title", "Segundo")
	_, _, err = e.run("report", "quick", "create", "--id", "r1")
	assert.Error(t, err)

	list := e.mustRun("report", "quick", "list")
	assert.Contains(t, list, "Recorrido")
	assert.Regexp(t, `\*\s+r2`, list)

	e.mustRun("report", "quick", "activate", "r1")
	assert.Regexp(t, `\*\s+r1\s+Recorrido\s+2024-03-15\s+1`, e.mustRun("report", "quick", "list"))
	_, _, err = e.run("report", "quick", "activate", "nope")
	assert.Error(t, err)

	e.mustRun("report", "quick", "delete", "r2")
	assert.NotContains(t, e.mustRun("report", "quick", "list"), "Segundo")

	e.mustRun("report", "elements", "create", "--id", "e1", "--title", "Ventanas", "--module", "B")
	e.mustRun("report", "elements", "add-item", "--category", "VENTANA", "--observation", "sin sello")
	assert.Regexp(t, `e1\s+Ventanas\s+\S+\s+1`, e.mustRun("report", "elements", "list"))
}

// persistedStore reopens the state written by earlier invocations.
func (e *env) persistedStore() *core.Store {
	e.t.Helper()
	ctx := context.Background()
	backing, err := kv.Open(ctx, kv.Config{Driver: kv.DriverSQLite, SQLitePath: filepath.Join(e.dir, "state.db")})
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = backing.Close() })
	return core.NewStore(ctx, backing)
}

func TestQuickItemScope(t *testing.T) {
	e := newEnv(t)
	e.mustRun("report", "quick", "create", "--id", "r1", "--title", "Recorrido")
	e.mustRun("report", "quick", "add-item", "--location", "2-B-201", "--comment", "derived")
	e.mustRun("report", "quick", "add-item", "--location", "ESC-C-TECHO-2", "--comment", "stairs")
	e.mustRun("report", "quick", "add-item", "--location", "2-B-201", "--module", "C", "--level", "300", "--type", "exterior", "--comment", "explicit")
	e.mustRun("report", "quick", "add-item", "--location", "Bodega", "--comment", "fallback")
	e.mustRun("report", "elements", "create", "--id", "e1", "--title", "Ventanas", "--module", "B", "--type", "escalera")

	store := e.persistedStore()
	rep, ok := store.QuickReports().Get("r1")
	require.True(t, ok)
	require.Len(t, rep.Items, 4)
	scope := func(it domain.QuickItem) []string { return []string{it.Location, it.Module, it.Level, it.Type} }
	assert.Equal(t, []string{"2-B-201", "B", "200", "INTERIOR"}, scope(rep.Items[0]))
	assert.Equal(t, []string{"ESC-C-TECHO-2", "C", "TECHO", "ESCALERA"}, scope(rep.Items[1]))
	assert.Equal(t, []string{"2-B-201", "C", "300", "EXTERIOR"}, scope(rep.Items[2]))
	assert.Equal(t, []string{"Bodega", "A", "000", "INTERIOR"}, scope(rep.Items[3]))

	elements, ok := store.ElementReports().Get("e1")
	require.True(t, ok)
	assert.Equal(t, []string{"B", "000", "ESCALERA"}, []string{elements.Module, elements.Level, elements.Type})
}

func TestConfigCommands(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun("config", "add-category", "Piso", "Baldosa", "Zócalo"), "piso with 2 sub-element(s)")
	show := e.mustRun("config", "show")
	assert.Contains(t, show, `"nombre": "PISO"`)
	assert.Contains(t, show, `"nombre": "Zócalo"`)
	_, _, err := e.run("config", "add-category", "piso")
	assert.Error(t, err)
}

func TestExportXLSX(t *testing.T) {
	e := newEnv(t)
	e.mustRun("locations", "status", "1-A-101", "PAREDES", "Bloqueo", "✅")
	path := filepath.Join(e.dir, "informe.xlsx")
	assert.Contains(t, e.mustRun("export", "xlsx", path), "1 visible locations")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, err := f.GetCellValue("Resumen", "A3")
	require.NoError(t, err)
	assert.Equal(t, "1-A-101", v)
}

func TestArchive(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun("archive", "list"), "(no backups)")
	e.mustRun("locations", "select", "A")
	out := e.mustRun("archive", "backup")
	assert.Contains(t, out, "1 locations, 0 images")

	list := e.mustRun("archive", "list")
	assert.Contains(t, list, "LOCATIONS")
	id := strings.Fields(out)[2]
	assert.Contains(t, list, strings.TrimSuffix(id, ":"))

	_, err := os.Stat(filepath.Join(e.dir, "blobs", "backups"))
	assert.NoError(t, err)
}

func TestCatalogList(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun("catalog", "list"), "modules: A, B, C")
	interior := e.mustRun("catalog", "list", "--module", "A", "--level", "100")
	assert.Contains(t, interior, "1-A-101")
	assert.Contains(t, interior, "Oficina 101")
	assert.Contains(t, e.mustRun("catalog", "list", "--module", "B", "--level", "100", "--type", "escalera"), "ESC-B-100-1")
	assert.Contains(t, e.mustRun("catalog", "list", "--module", "A", "--level", "900"), "(no locations")
}

func TestMetricsAndTrace(t *testing.T) {
	e := newEnv(t)
	_, errOut, err := e.run("--metrics", "prometheus", "locations", "select", "A")
	require.NoError(t, err)
	assert.Contains(t, errOut, "inspector_store_operations_total")

	_, errOut, err = e.run("--metrics", "expvar", "locations", "list")
	require.NoError(t, err)
	assert.Contains(t, errOut, "persist_failures_total")

	_, _, err = e.run("--metrics", "statsd", "locations", "list")
	assert.Error(t, err)

	trace := filepath.Join(e.dir, "trace.jsonl")
	e.mustRun("--trace", trace, "locations", "select", "B")
	data, err := os.ReadFile(trace)
	require.NoError(t, err)
	assert.Contains(t, string(data), "select_location")
}

func TestInvalidSettings(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.config, []byte("storage:\n  driver: mongo\n"), 0o600))
	_, _, err := e.run("locations", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}
