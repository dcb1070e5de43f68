package core

import (
	"context"
	"slices"
	"strings"

	"inspectorcore/pkg/domain"
)

// Configuration returns a copy of the live configuration.
func (s *Store) Configuration() domain.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneConfiguration(s.config)
}

// SetConfiguration replaces the whole configuration.
func (s *Store) SetConfiguration(ctx context.Context, cfg domain.Configuration) {
	op := s.begin(ctx, "set_configuration")
	defer op.end()
	s.commitConfiguration(op, domain.CloneConfiguration(cfg))
}

func (s *Store) commitConfiguration(op *operation, cfg domain.Configuration) {
	op.saveJSON(domain.KeyConfiguration, cfg)
	s.config = cfg
}

// editConfiguration runs edit over a deep copy of the configuration and
// replaces the live one when edit reports a change. edit returns a reason
// when it declines.
func (s *Store) editConfiguration(ctx context.Context, name string, edit func(cfg *domain.Configuration) (rejected string)) {
	op := s.begin(ctx, name)
	defer op.end()
	cfg := domain.CloneConfiguration(s.config)
	if reason := edit(&cfg); reason != "" {
		s.logger.Warn("configuration edit ignored", "operation", name, "reason", reason)
		return
	}
	s.commitConfiguration(op, cfg)
}

const (
	reasonEmptyName = "empty name"
	reasonDuplicate = "duplicate name"
	reasonNotFound  = "not found"
	reasonUnknown   = "unknown label kind"
)

// AddCategory adds an active, empty category named name (upper-cased) with a
// slug id.
func (s *Store) AddCategory(ctx context.Context, name string) {
	s.editConfiguration(ctx, "add_category", func(cfg *domain.Configuration) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return reasonEmptyName
		}
		id, upper := domain.Slug(name), strings.ToUpper(name)
		for _, c := range cfg.Taxonomy.Categories {
			if c.ID == id || c.Name == upper {
				return reasonDuplicate
			}
		}
		cfg.Taxonomy.Categories = append(cfg.Taxonomy.Categories, domain.Category{
			ID: id, Name: upper, Active: true, SubElements: []domain.SubElement{},
		})
		return ""
	})
}

// RenameCategory renames category id; the name is upper-cased.
func (s *Store) RenameCategory(ctx context.Context, id, name string) {
	s.editConfiguration(ctx, "rename_category", func(cfg *domain.Configuration) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return reasonEmptyName
		}
		i := cfg.Taxonomy.FindCategory(id)
		if i < 0 {
			return reasonNotFound
		}
		upper := strings.ToUpper(name)
		for _, c := range cfg.Taxonomy.Categories {
			if c.ID != id && c.Name == upper {
				return reasonDuplicate
			}
		}
		cfg.Taxonomy.Categories[i].Name = upper
		return ""
	})
}

// DeleteCategory removes category id.
func (s *Store) DeleteCategory(ctx context.Context, id string) {
	s.editConfiguration(ctx, "delete_category", func(cfg *domain.Configuration) string {
		i := cfg.Taxonomy.FindCategory(id)
		if i < 0 {
			return reasonNotFound
		}
		cfg.Taxonomy.Categories = slices.Delete(cfg.Taxonomy.Categories, i, i+1)
		return ""
	})
}

// ToggleCategory flips whether category id is enabled.
func (s *Store) ToggleCategory(ctx context.Context, id string) {
	s.editConfiguration(ctx, "toggle_category", func(cfg *domain.Configuration) string {
		i := cfg.Taxonomy.FindCategory(id)
		if i < 0 {
			return reasonNotFound
		}
		cfg.Taxonomy.Categories[i].Active = !cfg.Taxonomy.Categories[i].Active
		return ""
	})
}

// AddSubElement adds an active sub-element named name to category catID.
func (s *Store) AddSubElement(ctx context.Context, catID, name string) {
	s.editConfiguration(ctx, "add_sub_element", func(cfg *domain.Configuration) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return reasonEmptyName
		}
		i := cfg.Taxonomy.FindCategory(catID)
		if i < 0 {
			return reasonNotFound
		}
		cat := &cfg.Taxonomy.Categories[i]
		id := domain.Slug(name)
		for _, sub := range cat.SubElements {
			if sub.ID == id || sub.Name == name {
				return reasonDuplicate
			}
		}
		cat.SubElements = append(cat.SubElements, domain.SubElement{ID: id, Name: name, Active: true})
		return ""
	})
}

func findSub(cfg *domain.Configuration, catID, subID string) (*domain.Category, int) {
	i := cfg.Taxonomy.FindCategory(catID)
	if i < 0 {
		return nil, -1
	}
	cat := &cfg.Taxonomy.Categories[i]
	return cat, cat.FindSubElement(subID)
}

// RenameSubElement renames sub-element subID of category catID.
func (s *Store) RenameSubElement(ctx context.Context, catID, subID, name string) {
	s.editConfiguration(ctx, "rename_sub_element", func(cfg *domain.Configuration) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return reasonEmptyName
		}
		cat, j := findSub(cfg, catID, subID)
		if j < 0 {
			return reasonNotFound
		}
		for _, sub := range cat.SubElements {
			if sub.ID != subID && sub.Name == name {
				return reasonDuplicate
			}
		}
		cat.SubElements[j].Name = name
		return ""
	})
}

// DeleteSubElement removes sub-element subID from category catID.
func (s *Store) DeleteSubElement(ctx context.Context, catID, subID string) {
	s.editConfiguration(ctx, "delete_sub_element", func(cfg *domain.Configuration) string {
		cat, j := findSub(cfg, catID, subID)
		if j < 0 {
			return reasonNotFound
		}
		cat.SubElements = slices.Delete(cat.SubElements, j, j+1)
		return ""
	})
}

// ToggleSubElement flips whether sub-element subID of catID is enabled.
func (s *Store) ToggleSubElement(ctx context.Context, catID, subID string) {
	s.editConfiguration(ctx, "toggle_sub_element", func(cfg *domain.Configuration) string {
		cat, j := findSub(cfg, catID, subID)
		if j < 0 {
			return reasonNotFound
		}
		cat.SubElements[j].Active = !cat.SubElements[j].Active
		return ""
	})
}

// AddDiscipline adds an empty label list for discipline name (upper-cased).
func (s *Store) AddDiscipline(ctx context.Context, kind domain.LabelKind, name string) {
	s.editConfiguration(ctx, "add_discipline", func(cfg *domain.Configuration) string {
		set := cfg.Labels.Set(kind)
		if set == nil {
			return reasonUnknown
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			return reasonEmptyName
		}
		if _, ok := set[name]; ok {
			return reasonDuplicate
		}
		set[name] = []string{}
		return ""
	})
}

// RenameDiscipline moves the labels of discipline from to the upper-cased to.
func (s *Store) RenameDiscipline(ctx context.Context, kind domain.LabelKind, from, to string) {
	s.editConfiguration(ctx, "rename_discipline", func(cfg *domain.Configuration) string {
		set := cfg.Labels.Set(kind)
		if set == nil {
			return reasonUnknown
		}
		to = strings.ToUpper(strings.TrimSpace(to))
		if to == "" {
			return reasonEmptyName
		}
		labels, ok := set[from]
		if !ok {
			return reasonNotFound
		}
		if to == from {
			return "unchanged"
		}
		if _, taken := set[to]; taken {
			return reasonDuplicate
		}
		set[to] = labels
		delete(set, from)
		return ""
	})
}

// DeleteDiscipline removes discipline name and its labels.
func (s *Store) DeleteDiscipline(ctx context.Context, kind domain.LabelKind, name string) {
	s.editConfiguration(ctx, "delete_discipline", func(cfg *domain.Configuration) string {
		set := cfg.Labels.Set(kind)
		if set == nil {
			return reasonUnknown
		}
		if _, ok := set[name]; !ok {
			return reasonNotFound
		}
		delete(set, name)
		return ""
	})
}

// AddLabel appends label to discipline.
func (s *Store) AddLabel(ctx context.Context, kind domain.LabelKind, discipline, label string) {
	s.editConfiguration(ctx, "add_label", func(cfg *domain.Configuration) string {
		set := cfg.Labels.Set(kind)
		if set == nil {
			return reasonUnknown
		}
		if strings.TrimSpace(label) == "" {
			return reasonEmptyName
		}
		labels, ok := set[discipline]
		if !ok {
			return reasonNotFound
		}
		if slices.Contains(labels, label) {
			return reasonDuplicate
		}
		set[discipline] = append(labels, label)
		return ""
	})
}

// UpdateLabel replaces the label at index in discipline.
func (s *Store) UpdateLabel(ctx context.Context, kind domain.LabelKind, discipline string, index int, label string) {
	s.editConfiguration(ctx, "update_label", func(cfg *domain.Configuration) string {
		set := cfg.Labels.Set(kind)
		if set == nil {
			return reasonUnknown
		}
		labels, ok := set[discipline]
		if !ok || index < 0 || index >= len(labels) {
			return reasonNotFound
		}
		if strings.TrimSpace(label) == "" {
			return reasonEmptyName
		}
		for i, l := range labels {
			if i != index && l == label {
				return reasonDuplicate
			}
		}
		labels[index] = label
		return ""
	})
}

// RemoveLabel removes every occurrence of label from discipline.
func (s *Store) RemoveLabel(ctx context.Context, kind domain.LabelKind, discipline, label string) {
	s.editConfiguration(ctx, "remove_label", func(cfg *domain.Configuration) string {
		set := cfg.Labels.Set(kind)
		if set == nil {
			return reasonUnknown
		}
		labels, ok := set[discipline]
		if !ok || !slices.Contains(labels, label) {
			return reasonNotFound
		}
		set[discipline] = slices.DeleteFunc(labels, func(l string) bool { return l == label })
		return ""
	})
}

// AddFrequentWord appends word to the frequent-words list.
func (s *Store) AddFrequentWord(ctx context.Context, word string) {
	s.editConfiguration(ctx, "add_frequent_word", func(cfg *domain.Configuration) string {
		if strings.TrimSpace(word) == "" {
			return reasonEmptyName
		}
		if slices.Contains(cfg.Labels.Frequent, word) {
			return reasonDuplicate
		}
		cfg.Labels.Frequent = append(cfg.Labels.Frequent, word)
		return ""
	})
}

// RemoveFrequentWord removes word from the frequent-words list.
func (s *Store) RemoveFrequentWord(ctx context.Context, word string) {
	s.editConfiguration(ctx, "remove_frequent_word", func(cfg *domain.Configuration) string {
		if !slices.Contains(cfg.Labels.Frequent, word) {
			return reasonNotFound
		}
		cfg.Labels.Frequent = slices.DeleteFunc(cfg.Labels.Frequent, func(w string) bool { return w == word })
		return ""
	})
}

// SetReportStyle replaces the report style block.
func (s *Store) SetReportStyle(ctx context.Context, style domain.ReportStyle) {
	s.editConfiguration(ctx, "set_report_style", func(cfg *domain.Configuration) string {
		cfg.Style = style
		return ""
	})
}

// SetQuickCapturePreset replaces the quick-capture layout preset.
func (s *Store) SetQuickCapturePreset(ctx context.Context, preset domain.QuickCapturePreset) {
	s.editConfiguration(ctx, "set_quick_capture_preset", func(cfg *domain.Configuration) string {
		cfg.LayoutPresets.QuickCapture = preset
		return ""
	})
}
