package core

import "context"

// Session holds the transient selectors of the capture screens. It is never
// persisted.
type Session struct {
	Module           string `json:"modulo"`
	Level            string `json:"nivel"`
	Type             string `json:"tipo"`
	ExportTemplateID string `json:"selectedExportTemplateId,omitempty"`
}

func defaultSession() Session {
	return Session{Module: "A", Level: "000", Type: "INTERIOR"}
}

// Session returns the current selectors.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) updateSession(ctx context.Context, name string, mutate func(*Session)) {
	op := s.begin(ctx, name)
	defer op.end()
	mutate(&s.session)
}

// SetModule selects the building module.
func (s *Store) SetModule(ctx context.Context, module string) {
	s.updateSession(ctx, "set_module", func(sess *Session) { sess.Module = module })
}

// SetLevel selects the building level.
func (s *Store) SetLevel(ctx context.Context, level string) {
	s.updateSession(ctx, "set_level", func(sess *Session) { sess.Level = level })
}

// SetType selects the location type (INTERIOR, EXTERIOR, ESCALERA).
func (s *Store) SetType(ctx context.Context, typ string) {
	s.updateSession(ctx, "set_type", func(sess *Session) { sess.Type = typ })
}

// SetExportTemplate records the export template chosen by the user; "" clears it.
func (s *Store) SetExportTemplate(ctx context.Context, id string) {
	s.updateSession(ctx, "set_export_template", func(sess *Session) { sess.ExportTemplateID = id })
}
