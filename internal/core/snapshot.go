package core

import (
	"slices"
	"time"

	"inspectorcore/pkg/domain"
)

// Snapshot is a read-only, deep-copied view of the whole store handed to
// export and archive collaborators.
type Snapshot struct {
	TakenAt         time.Time                          `json:"taken_at"`
	Records         map[string]domain.InspectionRecord `json:"informesPorAmbiente"`
	ActiveLocations []string                           `json:"ambientesActivos"`
	Selected        string                             `json:"ambienteSeleccionado"`
	QuickReports    []domain.QuickReport               `json:"informesCapturaRapida"`
	ElementReports  []domain.ElementReport             `json:"informesElementos"`
	Checkpoints     []domain.CheckpointSummary         `json:"checkpoints"`
	Configuration   domain.Configuration               `json:"configuracion"`
	Session         Session                            `json:"session"`
}

// Snapshot captures the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]domain.CheckpointSummary, 0, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		summaries = append(summaries, cp.Summary())
	}
	active := slices.Clone(s.active)
	if active == nil {
		active = []string{}
	}
	return Snapshot{
		TakenAt:         s.clock.Now(),
		Records:         domain.CloneRecords(s.records),
		ActiveLocations: active,
		Selected:        s.selected,
		QuickReports:    domain.CloneReports(s.quick.reports, domain.CloneQuickItem),
		ElementReports:  domain.CloneReports(s.elements.reports, domain.CloneElementItem),
		Checkpoints:     summaries,
		Configuration:   domain.CloneConfiguration(s.config),
		Session:         s.session,
	}
}

// VisibleLocations returns the active locations whose record is visible, in
// active-list order.
func (snap Snapshot) VisibleLocations() []string {
	out := make([]string, 0, len(snap.ActiveLocations))
	for _, id := range snap.ActiveLocations {
		if rec, ok := snap.Records[id]; ok && rec.Visible {
			out = append(out, id)
		}
	}
	return out
}
