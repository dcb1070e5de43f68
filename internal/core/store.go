// Package core holds the inspector store: the single in-memory owner of
// inspection records, report collections, checkpoints and configuration,
// mirrored key by key into a domain.BackingStore.
//
// Every mutating operation runs under the store mutex from the first read to
// the last backing-store write. Operations never return errors: missing
// references are logged no-ops and persistence failures are logged and
// reported to the metrics recorder while the in-memory state still advances.
package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"inspectorcore/internal/codec"
	"inspectorcore/pkg/domain"
)

// Store is the inspector state service shared by every collaborator.
type Store struct {
	mu      sync.RWMutex
	backing domain.BackingStore
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer

	records     map[string]domain.InspectionRecord
	active      []string
	selected    string
	session     Session
	checkpoints []domain.Checkpoint
	config      domain.Configuration

	quick    *Reports[domain.QuickItem]
	elements *Reports[domain.ElementItem]
}

// NewStore constructs a store over backing and hydrates the configuration,
// report collections and checkpoints persisted there. Location drafts are
// loaded lazily on selection, or eagerly with LoadPersistedLocations.
func NewStore(ctx context.Context, backing domain.BackingStore, opts ...Option) *Store {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{
		backing: backing,
		clock:   o.clock,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
		records: make(map[string]domain.InspectionRecord),
		session: defaultSession(),
		config:  domain.DefaultConfiguration(),
	}
	s.quick = newReports(s, "quick_reports", domain.KeyQuickReports, domain.KeyActiveQuickReport, domain.CloneQuickItem)
	s.elements = newReports(s, "element_reports", domain.KeyElementReports, domain.KeyActiveElementReport, domain.CloneElementItem)
	s.hydrate(ctx)
	return s
}

// Backing returns the backing store the state is mirrored into.
func (s *Store) Backing() domain.BackingStore { return s.backing }

func (s *Store) hydrate(ctx context.Context) {
	op := s.begin(ctx, "hydrate")
	defer op.end()

	cfg := domain.DefaultConfiguration()
	if op.loadJSON(domain.KeyConfiguration, &cfg) {
		s.config = cfg
	}
	if checkpoints, ok := op.loadCheckpoints(); ok {
		s.checkpoints = checkpoints
	}
	s.quick.hydrate(op)
	s.elements.hydrate(op)
	s.logger.Debug("store hydrated",
		"driver", string(s.backing.Driver()),
		"checkpoints", len(s.checkpoints),
		"quick_reports", len(s.quick.reports),
		"element_reports", len(s.elements.reports))
}

func (s *Store) today() string {
	return domain.FormatDate(s.clock.Now())
}

func (s *Store) defaultRecord() domain.InspectionRecord {
	return domain.NewRecord(s.clock.Now())
}

// operation is the unit of work of one store call. It holds the store lock
// until end and remembers the first persistence failure.
type operation struct {
	s       *Store
	ctx     context.Context
	name    string
	started time.Time
	span    TraceSpan
	err     error
}

func (s *Store) begin(ctx context.Context, name string) *operation {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	ctx, span := s.tracer.Start(ctx, name)
	return &operation{s: s, ctx: ctx, name: name, started: time.Now(), span: span}
}

func (op *operation) end() {
	op.span.End(op.err)
	op.s.metrics.Observe(op.ctx, op.name, op.err == nil, time.Since(op.started))
	op.s.mu.Unlock()
}

func (op *operation) fail(err error, msg string, args ...any) {
	if op.err == nil {
		op.err = err
	}
	op.s.logger.Error(msg, append(args, "operation", op.name, "error", err)...)
}

func (op *operation) save(key, value string) {
	if err := op.s.backing.Save(op.ctx, key, value); err != nil {
		op.fail(err, "persist failed", "key", key)
	}
}

func (op *operation) saveJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		op.fail(err, "encode failed", "key", key)
		return
	}
	op.save(key, string(data))
}

func (op *operation) remove(key string) {
	if err := op.s.backing.Remove(op.ctx, key); err != nil {
		op.fail(err, "remove failed", "key", key)
	}
}

func (op *operation) saveDraft(id string, rec domain.InspectionRecord) {
	raw, err := codec.Encode(rec)
	if err != nil {
		op.fail(err, "encode draft failed", "location", id)
		return
	}
	op.save(domain.DraftKey(id), raw)
}

// load reads key, logging and counting backing-store failures as absence.
func (op *operation) load(key string) (string, bool) {
	raw, ok, err := op.s.backing.Load(op.ctx, key)
	if err != nil {
		op.fail(err, "load failed", "key", key)
		return "", false
	}
	return raw, ok
}

// loadJSON decodes key into dst. It reports false, leaving the caller's
// default in place, when the key is absent or its value is corrupt.
func (op *operation) loadJSON(key string, dst any) bool {
	raw, ok := op.load(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		op.s.logger.Warn("ignoring corrupt persisted value", "key", key, "error", err)
		return false
	}
	return true
}

// storedCheckpoint is the persisted shape of a domain.Checkpoint with its
// records left raw for the draft codec.
type storedCheckpoint struct {
	Timestamp    int64                      `json:"timestamp"`
	Records      map[string]json.RawMessage `json:"informesPorAmbiente"`
	QuickReports []domain.QuickReport       `json:"informesCapturaRapida"`
}

// loadCheckpoints decodes the persisted checkpoint list. Each captured record
// is patched field by field from the defaults, so a rollback never installs a
// partial record; a corrupt one is replaced by defaults.
func (op *operation) loadCheckpoints() ([]domain.Checkpoint, bool) {
	var stored []storedCheckpoint
	if !op.loadJSON(domain.KeyCheckpoints, &stored) {
		return nil, false
	}
	out := make([]domain.Checkpoint, 0, len(stored))
	for _, sc := range stored {
		cp := domain.Checkpoint{
			Timestamp:    sc.Timestamp,
			Records:      make(map[string]domain.InspectionRecord, len(sc.Records)),
			QuickReports: sc.QuickReports,
		}
		for id, raw := range sc.Records {
			rec, err := codec.Decode(string(raw), true, op.s.defaultRecord())
			if err != nil {
				op.s.logger.Warn("resetting corrupt checkpoint record", "timestamp", sc.Timestamp, "location", id, "error", err)
			}
			cp.Records[id] = rec
		}
		if cp.QuickReports == nil {
			cp.QuickReports = []domain.QuickReport{}
		}
		out = append(out, cp)
	}
	return out, true
}

// loadDraft decodes the persisted draft for id, discarding it when corrupt.
func (op *operation) loadDraft(id string) domain.InspectionRecord {
	raw, ok := op.load(domain.DraftKey(id))
	rec, _ := op.decodeDraft(id, raw, ok)
	return rec
}

// decodeDraft decodes raw for id. A corrupt draft is logged and removed from
// the backing store, and defaults are returned with corrupt set.
func (op *operation) decodeDraft(id, raw string, present bool) (rec domain.InspectionRecord, corrupt bool) {
	rec, err := codec.Decode(raw, present, op.s.defaultRecord())
	if err != nil {
		op.s.logger.Warn("discarding corrupt draft", "location", id, "error", err)
		op.remove(domain.DraftKey(id))
		return rec, true
	}
	return rec, false
}

// ensureRecord returns a private copy of the record for id, decoding it from
// the backing store (or defaults) when it is not in memory yet.
func (op *operation) ensureRecord(id string) domain.InspectionRecord {
	if rec, ok := op.s.records[id]; ok {
		return domain.CloneRecord(rec)
	}
	return op.loadDraft(id)
}

// commitRecord persists rec under id and then installs it in memory.
func (op *operation) commitRecord(id string, rec domain.InspectionRecord) {
	op.saveDraft(id, rec)
	op.s.records[id] = rec
}
