package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/pkg/domain"
)

func TestCreateCheckpointCapturesRecordsAndQuickReports(t *testing.T) {
	h := newHarness(t)
	h.store.SelectLocation(h.ctx, "1-A-101")
	h.store.QuickReports().Create(h.ctx, domain.QuickReport{ID: "q1"})
	h.store.ElementReports().Create(h.ctx, domain.ElementReport{ID: "e1"})

	ts := h.store.CreateCheckpoint(h.ctx)
	assert.Equal(t, testNow.UnixMilli(), ts)
	assert.Equal(t, []domain.CheckpointSummary{{Timestamp: ts, Locations: 1, QuickReports: 1}}, h.store.Checkpoints())

	cp, ok := h.store.Checkpoint(ts)
	require.True(t, ok)
	assert.Contains(t, cp.Records, "1-A-101")
	require.Len(t, cp.QuickReports, 1)

	raw, ok := h.persisted(domain.KeyCheckpoints)
	require.True(t, ok)
	var stored []domain.Checkpoint
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, ts, stored[0].Timestamp)

	_, ok = h.store.Checkpoint(ts + 1)
	assert.False(t, ok)
}

func TestCheckpointTimestampsAreUnique(t *testing.T) {
	h := newHarness(t)
	a := h.store.CreateCheckpoint(h.ctx)
	b := h.store.CreateCheckpoint(h.ctx)
	c := h.store.CreateCheckpoint(h.ctx)
	assert.Equal(t, []int64{a, a + 1, a + 2}, []int64{a, b, c})
}

func TestCheckpointIsImmuneToLaterEdits(t *testing.T) {
	h := newHarness(t)
	h.store.SetComments(h.ctx, "a", "antes")
	ts := h.store.CreateCheckpoint(h.ctx)
	h.store.SetComments(h.ctx, "a", "despues")

	cp, _ := h.store.Checkpoint(ts)
	assert.Equal(t, "antes", cp.Records["a"].Comments)
	cp.Records["a"] = domain.InspectionRecord{}

	again, _ := h.store.Checkpoint(ts)
	assert.Equal(t, "antes", again.Records["a"].Comments)
}

func TestRollbackRestoresExactState(t *testing.T) {
	h := newHarness(t)
	h.store.SelectLocation(h.ctx, "b")
	h.store.SelectLocation(h.ctx, "a")
	h.store.SetStatus(h.ctx, "a", "PAREDES", "Bloqueo", domain.StatusPass)
	h.store.QuickReports().Create(h.ctx, domain.QuickReport{ID: "q1"})
	h.store.QuickReports().AddItemToActive(h.ctx, quickItem("x"))
	wantRecords := h.store.Records()
	wantQuick := h.store.QuickReports().List()
	ts := h.store.CreateCheckpoint(h.ctx)

	h.store.SetStatus(h.ctx, "a", "PAREDES", "Bloqueo", domain.StatusFail)
	h.store.SelectLocation(h.ctx, "c")
	h.store.CloneLocation(h.ctx, "a")
	h.store.DeleteLocation(h.ctx, "b")
	h.store.QuickReports().AddItemToActive(h.ctx, quickItem("y"))
	h.store.QuickReports().Create(h.ctx, domain.QuickReport{ID: "q2"})

	require.True(t, h.store.Rollback(h.ctx, ts))
	assert.Equal(t, wantRecords, h.store.Records())
	assert.Equal(t, wantQuick, h.store.QuickReports().List())
	assert.Equal(t, []string{"a", "b"}, h.store.ActiveLocations())
	// "c" no longer exists, so the selection falls back to the first key
	assert.Equal(t, "a", h.store.Selected())

	keys, err := h.backing.Keys(h.ctx, domain.DraftKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.DraftKey("a"), domain.DraftKey("b")}, keys)

	again := h.reopen()
	assert.Equal(t, wantQuick, again.QuickReports().List())
	again.LoadPersistedLocations(h.ctx)
	assert.Equal(t, wantRecords, again.Records())
}

func TestRollbackPatchesPartialCheckpointRecords(t *testing.T) {
	h := newHarness(t)
	stored := `[{"timestamp":42,"informesPorAmbiente":{` +
		`"partial":{"estado":{"PAREDES":{"Bloqueo":"✅"}},"nombre":"Oficina"},` +
		`"hidden":{"visible":false,"layout":"lista","fecha":"2024-01-02"},` +
		`"broken":42},"informesCapturaRapida":null}]`
	require.NoError(t, h.backing.Save(h.ctx, domain.KeyCheckpoints, stored))
	store := h.reopen()
	assert.Equal(t, []domain.CheckpointSummary{{Timestamp: 42, Locations: 3}}, store.Checkpoints())

	require.True(t, store.Rollback(h.ctx, 42))
	defaults := domain.NewRecord(testNow)

	partial, ok := store.Record("partial")
	require.True(t, ok)
	assert.Equal(t, "Oficina", partial.Name)
	assert.Equal(t, domain.StatusPass, partial.State["PAREDES"]["Bloqueo"])
	assert.True(t, partial.Visible)
	assert.Equal(t, domain.LayoutGrid, partial.Layout)
	assert.Equal(t, defaults.Date, partial.Date)
	assert.NotNil(t, partial.Images)
	assert.NotNil(t, partial.VisibleCategories)

	hidden, _ := store.Record("hidden")
	assert.False(t, hidden.Visible)
	assert.Equal(t, domain.LayoutList, hidden.Layout)
	assert.Equal(t, "2024-01-02", hidden.Date)
	assert.Equal(t, defaults.State, hidden.State)

	broken, _ := store.Record("broken")
	assert.Equal(t, defaults, broken)
	assert.True(t, h.log.has("w:resetting corrupt checkpoint record"))
	assert.NotNil(t, store.QuickReports().List())
}

func TestRollbackKeepsSurvivingSelection(t *testing.T) {
	h := newHarness(t)
	h.store.SelectLocation(h.ctx, "a")
	h.store.SelectLocation(h.ctx, "b")
	ts := h.store.CreateCheckpoint(h.ctx)
	h.store.SelectLocation(h.ctx, "c")
	h.store.SelectLocation(h.ctx, "b")

	require.True(t, h.store.Rollback(h.ctx, ts))
	assert.Equal(t, "b", h.store.Selected())
}

func TestRollbackToEmptyCheckpoint(t *testing.T) {
	h := newHarness(t)
	ts := h.store.CreateCheckpoint(h.ctx)
	h.store.SelectLocation(h.ctx, "a")

	require.True(t, h.store.Rollback(h.ctx, ts))
	assert.Empty(t, h.store.Records())
	assert.Empty(t, h.store.ActiveLocations())
	assert.Empty(t, h.store.Selected())
	assert.Equal(t, 0, len(mustKeys(t, h, domain.DraftKeyPrefix)))
}

func TestRollbackAndDeleteUnknownCheckpoint(t *testing.T) {
	h := newHarness(t)
	h.store.SelectLocation(h.ctx, "a")
	assert.False(t, h.store.Rollback(h.ctx, 42))
	assert.False(t, h.store.DeleteCheckpoint(h.ctx, 42))
	assert.Equal(t, []string{"a"}, h.store.ActiveLocations())
	assert.True(t, h.log.has("w:rollback ignored: checkpoint not found"))
}

func TestDeleteCheckpoint(t *testing.T) {
	h := newHarness(t)
	a := h.store.CreateCheckpoint(h.ctx)
	b := h.store.CreateCheckpoint(h.ctx)
	require.True(t, h.store.DeleteCheckpoint(h.ctx, a))

	summaries := h.store.Checkpoints()
	require.Len(t, summaries, 1)
	assert.Equal(t, b, summaries[0].Timestamp)
	assert.Len(t, h.reopen().Checkpoints(), 1)
}

func mustKeys(t *testing.T, h *harness, prefix string) []string {
	t.Helper()
	keys, err := h.backing.Keys(h.ctx, prefix)
	require.NoError(t, err)
	return keys
}
