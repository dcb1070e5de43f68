package core

import (
	"context"
	"fmt"
	"slices"

	"inspectorcore/pkg/domain"
)

// ExceptionMarker prefixes every comment line appended by ApplyException.
const ExceptionMarker = "[EXCEPCIÓN]"

// Exception is one status/observation pair applied to many locations.
type Exception struct {
	Category    string
	SubElement  string
	Status      domain.Status
	Observation string
	Images      []domain.Image
	Locations   []string
}

// Record returns a copy of the in-memory record for id.
func (s *Store) Record(id string) (domain.InspectionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.InspectionRecord{}, false
	}
	return domain.CloneRecord(rec), true
}

// Records returns a copy of every in-memory record.
func (s *Store) Records() map[string]domain.InspectionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneRecords(s.records)
}

// ActiveLocations returns the ordered active-location list.
func (s *Store) ActiveLocations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.active)
}

// Selected returns the currently selected location, or "".
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Store) activate(id string) {
	if !slices.Contains(s.active, id) {
		s.active = append(s.active, id)
	}
}

// SelectLocation makes id the current selection, loading or creating its
// record and adding it to the active list. A record created from defaults is
// persisted so the location survives a reload.
func (s *Store) SelectLocation(ctx context.Context, id string) {
	op := s.begin(ctx, "select_location")
	defer op.end()
	if id == "" {
		s.logger.Warn("select ignored: empty location id")
		return
	}
	if _, ok := s.records[id]; !ok {
		raw, persisted := op.load(domain.DraftKey(id))
		rec, corrupt := op.decodeDraft(id, raw, persisted)
		if persisted && !corrupt {
			s.records[id] = rec
		} else {
			op.commitRecord(id, rec)
		}
	}
	s.activate(id)
	s.selected = id
}

// LoadPersistedLocations brings every persisted draft not yet in memory into
// memory and onto the active list, in key order. It returns how many were
// loaded.
func (s *Store) LoadPersistedLocations(ctx context.Context) int {
	op := s.begin(ctx, "load_persisted_locations")
	defer op.end()
	keys, err := s.backing.Keys(op.ctx, domain.DraftKeyPrefix)
	if err != nil {
		op.fail(err, "list drafts failed")
		return 0
	}
	loaded := 0
	for _, key := range keys {
		id := key[len(domain.DraftKeyPrefix):]
		if _, ok := s.records[id]; ok {
			s.activate(id)
			continue
		}
		raw, ok := op.load(key)
		if !ok {
			continue
		}
		rec, corrupt := op.decodeDraft(id, raw, true)
		if corrupt {
			continue
		}
		s.records[id] = rec
		s.activate(id)
		loaded++
	}
	return loaded
}

// updateRecord applies mutate to a private copy of the record for id
// (created from the draft or defaults when absent) and commits it.
func (s *Store) updateRecord(ctx context.Context, name, id string, mutate func(*domain.InspectionRecord)) {
	op := s.begin(ctx, name)
	defer op.end()
	if id == "" {
		s.logger.Warn("update ignored: empty location id", "operation", name)
		return
	}
	rec := op.ensureRecord(id)
	mutate(&rec)
	op.commitRecord(id, rec)
}

// updateExisting is updateRecord for operations that must not create records.
func (s *Store) updateExisting(ctx context.Context, name, id string, mutate func(*domain.InspectionRecord)) {
	op := s.begin(ctx, name)
	defer op.end()
	cur, ok := s.records[id]
	if !ok {
		s.logger.Warn("update ignored: unknown location", "operation", name, "location", id)
		return
	}
	rec := domain.CloneRecord(cur)
	mutate(&rec)
	op.commitRecord(id, rec)
}

// SetStatus sets one leaf of the status grid. Status symbols are not validated.
func (s *Store) SetStatus(ctx context.Context, id, category, subElement string, status domain.Status) {
	s.updateRecord(ctx, "set_status", id, func(rec *domain.InspectionRecord) {
		setLeaf(rec, category, subElement, status)
	})
}

func setLeaf(rec *domain.InspectionRecord, category, subElement string, status domain.Status) {
	if rec.State == nil {
		rec.State = domain.StatusGrid{}
	}
	subs := rec.State[category]
	if subs == nil {
		subs = map[string]domain.Status{}
		rec.State[category] = subs
	}
	subs[subElement] = status
}

// SetComments replaces the comment text.
func (s *Store) SetComments(ctx context.Context, id, text string) {
	s.updateRecord(ctx, "set_comments", id, func(rec *domain.InspectionRecord) {
		rec.Comments = text
	})
}

// SetImages replaces the image list, keeping the given order.
func (s *Store) SetImages(ctx context.Context, id string, images []domain.Image) {
	imgs := domain.CloneImages(images)
	s.updateRecord(ctx, "set_images", id, func(rec *domain.InspectionRecord) {
		rec.Images = imgs
	})
}

// SetLayout replaces the per-location layout.
func (s *Store) SetLayout(ctx context.Context, id string, layout domain.Layout) {
	s.updateRecord(ctx, "set_layout", id, func(rec *domain.InspectionRecord) {
		rec.Layout = layout
	})
}

// SetDate replaces the record date. Unknown locations are left alone.
func (s *Store) SetDate(ctx context.Context, id, date string) {
	s.updateExisting(ctx, "set_date", id, func(rec *domain.InspectionRecord) {
		rec.Date = date
	})
}

// RenameLocation sets the display name. Unknown locations are left alone.
func (s *Store) RenameLocation(ctx context.Context, id, name string) {
	s.updateExisting(ctx, "rename_location", id, func(rec *domain.InspectionRecord) {
		rec.Name = name
	})
}

// SetCategoryVisible flips the export visibility of one category. A category
// with no entry counts as visible before flipping.
func (s *Store) SetCategoryVisible(ctx context.Context, id, category string) {
	s.updateRecord(ctx, "toggle_category_visible", id, func(rec *domain.InspectionRecord) {
		next := domain.CloneBoolMap(rec.VisibleCategories)
		next[category] = !rec.CategoryVisible(category)
		rec.VisibleCategories = next
	})
}

// InitializeCategoryVisibility sets many category visibilities at once. With
// replace the map becomes exactly visibility; otherwise it is merged in.
func (s *Store) InitializeCategoryVisibility(ctx context.Context, id string, visibility map[string]bool, replace bool) {
	s.updateRecord(ctx, "initialize_category_visibility", id, func(rec *domain.InspectionRecord) {
		next := map[string]bool{}
		if !replace {
			next = domain.CloneBoolMap(rec.VisibleCategories)
		}
		for cat, v := range visibility {
			next[cat] = v
		}
		rec.VisibleCategories = next
	})
}

// ToggleVisibility flips whether the location appears in aggregate views.
func (s *Store) ToggleVisibility(ctx context.Context, id string) {
	s.updateRecord(ctx, "toggle_visibility", id, func(rec *domain.InspectionRecord) {
		rec.Visible = !rec.Visible
	})
}

// CloneLocation copies the record for id under the lowest free key
// "{id}_CLON_{n}" and appends it to the active list. It returns the new id,
// or "" when id has no record.
func (s *Store) CloneLocation(ctx context.Context, id string) string {
	op := s.begin(ctx, "clone_location")
	defer op.end()
	src, ok := s.records[id]
	if !ok {
		s.logger.Warn("clone ignored: unknown location", "location", id)
		return ""
	}
	n := 1
	newID := cloneID(id, n)
	for s.keyTaken(op, newID) {
		n++
		newID = cloneID(id, n)
	}
	clone := domain.CloneRecord(src)
	clone.Name = fmt.Sprintf("%s (Copia %d)", src.DisplayName(id), n)
	clone.Date = s.today()
	clone.Visible = true
	op.commitRecord(newID, clone)
	s.active = append(s.active, newID)
	return newID
}

func cloneID(id string, n int) string {
	return fmt.Sprintf("%s_CLON_%d", id, n)
}

func (s *Store) keyTaken(op *operation, id string) bool {
	if _, ok := s.records[id]; ok {
		return true
	}
	if slices.Contains(s.active, id) {
		return true
	}
	_, persisted := op.load(domain.DraftKey(id))
	return persisted
}

// DeleteLocation removes the record, its persisted draft and its active-list
// entry. When it was selected, the selection moves to the first remaining
// active location.
func (s *Store) DeleteLocation(ctx context.Context, id string) {
	op := s.begin(ctx, "delete_location")
	defer op.end()
	if id == "" {
		s.logger.Warn("delete ignored: empty location id")
		return
	}
	delete(s.records, id)
	op.remove(domain.DraftKey(id))
	s.active = slices.DeleteFunc(s.active, func(a string) bool { return a == id })
	if s.selected == id {
		s.selected = ""
		if len(s.active) > 0 {
			s.selected = s.active[0]
		}
	}
}

// ApplyException sets one status leaf on every target location, appends a
// tagged observation line to its comments and appends the images. Targets
// without a record are created from their draft or defaults first. Each
// location is committed on its own, so a failed write for one does not stop
// the others.
func (s *Store) ApplyException(ctx context.Context, exc Exception) {
	op := s.begin(ctx, "apply_exception")
	defer op.end()
	line := ExceptionMarker + " " + exc.Observation
	for _, id := range exc.Locations {
		if id == "" {
			continue
		}
		rec := op.ensureRecord(id)
		setLeaf(&rec, exc.Category, exc.SubElement, exc.Status)
		if rec.Comments != "" {
			rec.Comments += "\n" + line
		} else {
			rec.Comments = line
		}
		rec.Images = append(rec.Images, domain.CloneImages(exc.Images)...)
		if rec.Date == "" {
			rec.Date = s.today()
		}
		op.commitRecord(id, rec)
	}
}
