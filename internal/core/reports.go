package core

import (
	"context"

	"github.com/google/uuid"

	"inspectorcore/pkg/domain"
)

// Reports is one ordered report collection (quick-capture or element-based)
// with its single active-report pointer. All methods share the owning
// store's lock.
type Reports[I any] struct {
	s         *Store
	kind      string
	listKey   string
	activeKey string
	cloneItem func(I) I

	reports  []domain.Report[I]
	activeID string
}

func newReports[I any](s *Store, kind, listKey, activeKey string, cloneItem func(I) I) *Reports[I] {
	return &Reports[I]{s: s, kind: kind, listKey: listKey, activeKey: activeKey, cloneItem: cloneItem}
}

// QuickReports returns the quick-capture report collection.
func (s *Store) QuickReports() *Reports[domain.QuickItem] { return s.quick }

// ElementReports returns the element-based report collection.
func (s *Store) ElementReports() *Reports[domain.ElementItem] { return s.elements }

func (r *Reports[I]) hydrate(op *operation) {
	var reports []domain.Report[I]
	if op.loadJSON(r.listKey, &reports) {
		r.reports = reports
	}
	if id, ok := op.load(r.activeKey); ok {
		r.activeID = id
	}
}

func (r *Reports[I]) begin(ctx context.Context, verb string) *operation {
	return r.s.begin(ctx, r.kind+"_"+verb)
}

func (r *Reports[I]) persist(op *operation) {
	op.saveJSON(r.listKey, r.listOrEmpty())
}

func (r *Reports[I]) listOrEmpty() []domain.Report[I] {
	if r.reports == nil {
		return []domain.Report[I]{}
	}
	return r.reports
}

func (r *Reports[I]) index(id string) int {
	for i, rep := range r.reports {
		if rep.ID == id {
			return i
		}
	}
	return -1
}

// List returns a copy of every report in insertion order.
func (r *Reports[I]) List() []domain.Report[I] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return domain.CloneReports(r.reports, r.cloneItem)
}

// Get returns a copy of the report with id.
func (r *Reports[I]) Get(id string) (domain.Report[I], bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return domain.Report[I]{}, false
	}
	return domain.CloneReport(r.reports[i], r.cloneItem), true
}

// ActiveID returns the active-report pointer, which may name a report that
// no longer exists.
func (r *Reports[I]) ActiveID() string {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.activeID
}

// Active returns a copy of the active report when it exists.
func (r *Reports[I]) Active() (domain.Report[I], bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := r.index(r.activeID)
	if r.activeID == "" || i < 0 {
		return domain.Report[I]{}, false
	}
	return domain.CloneReport(r.reports[i], r.cloneItem), true
}

// Create appends report and makes it active. An empty id is replaced by a
// fresh UUID and an empty date by today. A report whose id is already taken
// is rejected. It returns the id of the created report, or "".
func (r *Reports[I]) Create(ctx context.Context, report domain.Report[I]) string {
	op := r.begin(ctx, "create")
	defer op.end()
	rep := domain.CloneReport(report, r.cloneItem)
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.Date == "" {
		rep.Date = r.s.today()
	}
	if r.index(rep.ID) >= 0 {
		r.s.logger.Warn("create ignored: duplicate report id", "collection", r.kind, "report", rep.ID)
		return ""
	}
	r.reports = append(r.reports, rep)
	r.persist(op)
	r.activeID = rep.ID
	op.save(r.activeKey, rep.ID)
	return rep.ID
}

// AddItemToActive appends item to the active report. Without an active
// report this is a no-op.
func (r *Reports[I]) AddItemToActive(ctx context.Context, item I) {
	op := r.begin(ctx, "add_item")
	defer op.end()
	i := r.index(r.activeID)
	if r.activeID == "" || i < 0 {
		r.s.logger.Warn("add item ignored: no active report", "collection", r.kind, "active", r.activeID)
		return
	}
	rep := domain.CloneReport(r.reports[i], r.cloneItem)
	rep.Items = append(rep.Items, r.cloneItem(item))
	r.reports[i] = rep
	r.persist(op)
}

// Replace swaps the stored report with the same id for report.
func (r *Reports[I]) Replace(ctx context.Context, report domain.Report[I]) {
	op := r.begin(ctx, "replace")
	defer op.end()
	i := r.index(report.ID)
	if report.ID == "" || i < 0 {
		r.s.logger.Warn("replace ignored: unknown report", "collection", r.kind, "report", report.ID)
		return
	}
	r.reports[i] = domain.CloneReport(report, r.cloneItem)
	r.persist(op)
}

// SetActive points the active-report pointer at id without checking that
// the report exists. An empty id clears the pointer.
func (r *Reports[I]) SetActive(ctx context.Context, id string) {
	op := r.begin(ctx, "set_active")
	defer op.end()
	r.activeID = id
	if id == "" {
		op.remove(r.activeKey)
		return
	}
	op.save(r.activeKey, id)
}

// Delete removes the report with id. Deleting the active report also clears
// the active pointer.
func (r *Reports[I]) Delete(ctx context.Context, id string) {
	op := r.begin(ctx, "delete")
	defer op.end()
	i := r.index(id)
	if i >= 0 {
		r.reports = append(r.reports[:i:i], r.reports[i+1:]...)
	}
	r.persist(op)
	if id != "" && r.activeID == id {
		r.activeID = ""
		op.remove(r.activeKey)
	}
}

// editItems runs edit over a private copy of the items of report id and
// commits the result when edit reports a change.
func (r *Reports[I]) editItems(ctx context.Context, verb, id string, edit func([]I) ([]I, bool)) {
	op := r.begin(ctx, verb)
	defer op.end()
	i := r.index(id)
	if i < 0 {
		r.s.logger.Warn("item edit ignored: unknown report", "collection", r.kind, "report", id, "operation", op.name)
		return
	}
	rep := domain.CloneReport(r.reports[i], r.cloneItem)
	items, changed := edit(rep.Items)
	if !changed {
		r.s.logger.Warn("item edit ignored: index out of range", "collection", r.kind, "report", id, "operation", op.name)
		return
	}
	rep.Items = items
	r.reports[i] = rep
	r.persist(op)
}

// MoveItemUp swaps item idx with its predecessor.
func (r *Reports[I]) MoveItemUp(ctx context.Context, id string, idx int) {
	r.editItems(ctx, "move_item_up", id, func(items []I) ([]I, bool) {
		if idx <= 0 || idx >= len(items) {
			return items, false
		}
		items[idx-1], items[idx] = items[idx], items[idx-1]
		return items, true
	})
}

// MoveItemDown swaps item idx with its successor.
func (r *Reports[I]) MoveItemDown(ctx context.Context, id string, idx int) {
	r.editItems(ctx, "move_item_down", id, func(items []I) ([]I, bool) {
		if idx < 0 || idx >= len(items)-1 {
			return items, false
		}
		items[idx], items[idx+1] = items[idx+1], items[idx]
		return items, true
	})
}

// CloneItem inserts a deep copy of item idx right after it.
func (r *Reports[I]) CloneItem(ctx context.Context, id string, idx int) {
	r.editItems(ctx, "clone_item", id, func(items []I) ([]I, bool) {
		if idx < 0 || idx >= len(items) {
			return items, false
		}
		return insertAt(items, idx+1, r.cloneItem(items[idx])), true
	})
}

// DeleteItem removes item idx.
func (r *Reports[I]) DeleteItem(ctx context.Context, id string, idx int) {
	r.editItems(ctx, "delete_item", id, func(items []I) ([]I, bool) {
		if idx < 0 || idx >= len(items) {
			return items, false
		}
		return append(items[:idx:idx], items[idx+1:]...), true
	})
}

func insertAt[I any](items []I, at int, item I) []I {
	out := make([]I, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, item)
	return append(out, items[at:]...)
}
