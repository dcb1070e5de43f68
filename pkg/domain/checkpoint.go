package domain

// Checkpoint is an immutable point-in-time copy of every inspection record and
// every quick-capture report. Timestamp is epoch milliseconds and doubles as
// the checkpoint's key.
type Checkpoint struct {
	Timestamp    int64                       `json:"timestamp"`
	Records      map[string]InspectionRecord `json:"informesPorAmbiente"`
	QuickReports []QuickReport               `json:"informesCapturaRapida"`
}

// CheckpointSummary describes a checkpoint without carrying its payload.
type CheckpointSummary struct {
	Timestamp    int64 `json:"timestamp"`
	Locations    int   `json:"locations"`
	QuickReports int   `json:"quick_reports"`
}

// Summary returns the checkpoint's summary.
func (c Checkpoint) Summary() CheckpointSummary {
	return CheckpointSummary{Timestamp: c.Timestamp, Locations: len(c.Records), QuickReports: len(c.QuickReports)}
}
