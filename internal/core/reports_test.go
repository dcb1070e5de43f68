package core

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/pkg/domain"
)

func quickItem(comment string) domain.QuickItem {
	return domain.QuickItem{Image: domain.Image{Src: "data:" + comment}, Comment: comment, Location: "1-A-101"}
}

func itemComments(r domain.QuickReport) []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Comment)
	}
	return out
}

func TestCreateReportBecomesActive(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()

	id := qr.Create(h.ctx, domain.QuickReport{Title: "Ronda 1"})
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, qr.ActiveID())

	active, ok := qr.Active()
	require.True(t, ok)
	assert.Equal(t, "Ronda 1", active.Title)
	assert.Equal(t, "2024-03-15", active.Date)
	assert.NotNil(t, active.Items)

	raw, ok := h.persisted(domain.KeyActiveQuickReport)
	require.True(t, ok)
	assert.Equal(t, id, raw)

	raw, ok = h.persisted(domain.KeyQuickReports)
	require.True(t, ok)
	var stored []domain.QuickReport
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, id, stored[0].ID)
}

func TestCreateReportRejectsDuplicateID(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	require.Equal(t, "r1", qr.Create(h.ctx, domain.QuickReport{ID: "r1", Date: "2024-01-01"}))
	require.Equal(t, "r2", qr.Create(h.ctx, domain.QuickReport{ID: "r2"}))
	assert.Empty(t, qr.Create(h.ctx, domain.QuickReport{ID: "r1", Title: "again"}))
	assert.Len(t, qr.List(), 2)
	assert.Equal(t, "r2", qr.ActiveID())

	r1, ok := qr.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", r1.Date)
	assert.Empty(t, r1.Title)
}

func TestAddItemWithoutActiveReportIsNoop(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	qr.AddItemToActive(h.ctx, quickItem("x"))
	assert.Empty(t, qr.List())

	qr.Create(h.ctx, domain.QuickReport{ID: "r1"})
	qr.SetActive(h.ctx, "missing")
	qr.AddItemToActive(h.ctx, quickItem("x"))
	r1, _ := qr.Get("r1")
	assert.Empty(t, r1.Items)
	assert.Equal(t, "missing", qr.ActiveID())
	_, ok := qr.Active()
	assert.False(t, ok)
}

func TestAppendThenReorderRestoresOrder(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	id := qr.Create(h.ctx, domain.QuickReport{ID: "r1"})
	for _, c := range []string{"a", "b", "c"} {
		qr.AddItemToActive(h.ctx, quickItem(c))
	}
	r, _ := qr.Get(id)
	require.Equal(t, []string{"a", "b", "c"}, itemComments(r))

	qr.MoveItemUp(h.ctx, id, 2)
	r, _ = qr.Get(id)
	assert.Equal(t, []string{"a", "c", "b"}, itemComments(r))

	qr.MoveItemDown(h.ctx, id, 1)
	r, _ = qr.Get(id)
	assert.Equal(t, []string{"a", "b", "c"}, itemComments(r))
}

func TestItemEditsOutOfRangeAreNoops(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	id := qr.Create(h.ctx, domain.QuickReport{ID: "r1"})
	qr.AddItemToActive(h.ctx, quickItem("a"))
	qr.AddItemToActive(h.ctx, quickItem("b"))
	before, _ := qr.Get(id)

	qr.MoveItemUp(h.ctx, id, 0)
	qr.MoveItemUp(h.ctx, id, 2)
	qr.MoveItemDown(h.ctx, id, 1)
	qr.MoveItemDown(h.ctx, id, -1)
	qr.CloneItem(h.ctx, id, 5)
	qr.DeleteItem(h.ctx, id, -1)
	qr.DeleteItem(h.ctx, "missing", 0)

	after, _ := qr.Get(id)
	assert.Equal(t, before, after)
	assert.True(t, h.log.has("w:item edit ignored: index out of range"))
	assert.True(t, h.log.has("w:item edit ignored: unknown report"))
}

func TestCloneAndDeleteItem(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	id := qr.Create(h.ctx, domain.QuickReport{ID: "r1"})
	qr.AddItemToActive(h.ctx, quickItem("a"))
	qr.AddItemToActive(h.ctx, quickItem("b"))

	qr.CloneItem(h.ctx, id, 0)
	r, _ := qr.Get(id)
	assert.Equal(t, []string{"a", "a", "b"}, itemComments(r))

	r.Items[1].Comment = "edited"
	qr.Replace(h.ctx, r)
	qr.DeleteItem(h.ctx, id, 0)
	r, _ = qr.Get(id)
	assert.Equal(t, []string{"edited", "b"}, itemComments(r))
}

func TestReplaceUnknownReportIsIgnored(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	qr.Replace(h.ctx, domain.QuickReport{ID: "ghost"})
	qr.Replace(h.ctx, domain.QuickReport{})
	assert.Empty(t, qr.List())
}

func TestDeleteActiveReportClearsPointer(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	qr.Create(h.ctx, domain.QuickReport{ID: "r1"})
	qr.Create(h.ctx, domain.QuickReport{ID: "r2"})

	qr.Delete(h.ctx, "r1")
	assert.Equal(t, "r2", qr.ActiveID())

	qr.Delete(h.ctx, "r2")
	assert.Empty(t, qr.ActiveID())
	_, ok := h.persisted(domain.KeyActiveQuickReport)
	assert.False(t, ok)
	raw, _ := h.persisted(domain.KeyQuickReports)
	assert.JSONEq(t, `[]`, raw)

	qr.Delete(h.ctx, "missing")
	assert.Empty(t, qr.List())
}

func TestSetActiveEmptyClearsPersistedPointer(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	qr.Create(h.ctx, domain.QuickReport{ID: "r1"})
	qr.SetActive(h.ctx, "")
	assert.Empty(t, qr.ActiveID())
	_, ok := h.persisted(domain.KeyActiveQuickReport)
	assert.False(t, ok)

	qr.SetActive(h.ctx, "r1")
	assert.Equal(t, "r1", h.reopen().QuickReports().ActiveID())
}

func TestReportsAreIndependentCopies(t *testing.T) {
	h := newHarness(t)
	qr := h.store.QuickReports()
	item := quickItem("a")
	item.Image.Tags = []string{"t"}
	qr.Create(h.ctx, domain.QuickReport{ID: "r1", Items: []domain.QuickItem{item}})
	item.Image.Tags[0] = "mutated"

	list := qr.List()
	list[0].Items[0].Comment = "mutated"
	list[0].Items[0].Image.Tags[0] = "mutated"

	r, _ := qr.Get("r1")
	assert.Equal(t, "a", r.Items[0].Comment)
	assert.Equal(t, []string{"t"}, r.Items[0].Image.Tags)
}

func TestElementReportsAreSeparate(t *testing.T) {
	h := newHarness(t)
	er := h.store.ElementReports()
	img := &domain.Image{Src: "data:x"}
	id := er.Create(h.ctx, domain.ElementReport{ID: "e1", Title: "Puertas", Module: "A", Level: "100", Type: "INTERIOR"})
	er.AddItemToActive(h.ctx, domain.ElementItem{Category: "PUERTA", SubElement: "Marco", Status: domain.StatusFail, Image: img, Location: "1-A-101"})
	er.AddItemToActive(h.ctx, domain.ElementItem{Category: "PUERTA", SubElement: "Hoja", Status: domain.StatusPass})
	img.Src = "mutated"

	er.MoveItemDown(h.ctx, id, 0)
	r, ok := er.Get(id)
	require.True(t, ok)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "Hoja", r.Items[0].SubElement)
	require.NotNil(t, r.Items[1].Image)
	assert.Equal(t, "data:x", r.Items[1].Image.Src)

	assert.Empty(t, h.store.QuickReports().List())
	assert.Empty(t, h.store.QuickReports().ActiveID())
	assert.True(t, h.metrics.has("element_reports_move_item_down", true))

	again := h.reopen().ElementReports()
	assert.Equal(t, "e1", again.ActiveID())
	got, _ := again.Get(id)
	assert.Equal(t, r, got)
}
