package core

import (
	"context"
	"maps"
	"slices"

	"inspectorcore/pkg/domain"
)

// CreateCheckpoint snapshots every record and every quick-capture report and
// returns the checkpoint timestamp (epoch milliseconds). Timestamps are
// strictly increasing: a checkpoint taken within the same millisecond as the
// newest one is stamped one millisecond later.
func (s *Store) CreateCheckpoint(ctx context.Context) int64 {
	op := s.begin(ctx, "create_checkpoint")
	defer op.end()
	ts := s.clock.Now().UnixMilli()
	for _, cp := range s.checkpoints {
		if cp.Timestamp >= ts {
			ts = cp.Timestamp + 1
		}
	}
	cp := domain.Checkpoint{
		Timestamp:    ts,
		Records:      domain.CloneRecords(s.records),
		QuickReports: domain.CloneReports(s.quick.reports, domain.CloneQuickItem),
	}
	s.checkpoints = append(s.checkpoints, cp)
	op.saveJSON(domain.KeyCheckpoints, s.checkpoints)
	s.logger.Info("checkpoint created", "timestamp", ts, "locations", len(cp.Records), "quick_reports", len(cp.QuickReports))
	return ts
}

func (s *Store) checkpointIndex(ts int64) int {
	return slices.IndexFunc(s.checkpoints, func(cp domain.Checkpoint) bool { return cp.Timestamp == ts })
}

// Checkpoints lists checkpoint summaries, oldest first.
func (s *Store) Checkpoints() []domain.CheckpointSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CheckpointSummary, 0, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		out = append(out, cp.Summary())
	}
	return out
}

// Checkpoint returns a copy of the checkpoint stamped ts.
func (s *Store) Checkpoint(ts int64) (domain.Checkpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.checkpointIndex(ts)
	if i < 0 {
		return domain.Checkpoint{}, false
	}
	return domain.CloneCheckpoint(s.checkpoints[i]), true
}

// Rollback restores the records and quick-capture reports captured by the
// checkpoint stamped ts. Drafts of locations missing from the checkpoint are
// removed, the active list becomes the checkpoint's locations in key order,
// and the selection survives only if its location still exists. It reports
// whether the checkpoint was found.
func (s *Store) Rollback(ctx context.Context, ts int64) bool {
	op := s.begin(ctx, "rollback_checkpoint")
	defer op.end()
	i := s.checkpointIndex(ts)
	if i < 0 {
		s.logger.Warn("rollback ignored: checkpoint not found", "timestamp", ts)
		return false
	}
	cp := domain.CloneCheckpoint(s.checkpoints[i])

	for id := range s.records {
		if _, keep := cp.Records[id]; !keep {
			op.remove(domain.DraftKey(id))
		}
	}
	ids := slices.Sorted(maps.Keys(cp.Records))
	for _, id := range ids {
		op.saveDraft(id, cp.Records[id])
	}
	op.saveJSON(domain.KeyQuickReports, cp.QuickReports)

	s.records = cp.Records
	s.quick.reports = cp.QuickReports
	s.active = ids
	if _, ok := s.records[s.selected]; !ok || s.selected == "" {
		s.selected = ""
		if len(ids) > 0 {
			s.selected = ids[0]
		}
	}
	s.logger.Info("checkpoint restored", "timestamp", ts, "locations", len(ids))
	return true
}

// DeleteCheckpoint removes the checkpoint stamped ts and reports whether it
// existed.
func (s *Store) DeleteCheckpoint(ctx context.Context, ts int64) bool {
	op := s.begin(ctx, "delete_checkpoint")
	defer op.end()
	i := s.checkpointIndex(ts)
	if i < 0 {
		s.logger.Warn("delete ignored: checkpoint not found", "timestamp", ts)
		return false
	}
	s.checkpoints = slices.Delete(s.checkpoints, i, i+1)
	op.saveJSON(domain.KeyCheckpoints, s.checkpoints)
	return true
}
