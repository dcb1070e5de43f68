// Package codec converts inspection records to and from the string form kept
// in the backing store.
//
// Decoding is deliberately asymmetric: a value that is not a JSON object is
// discarded in favour of the defaults, while an object missing some fields is
// patched field by field from the defaults.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"inspectorcore/pkg/domain"
)

// ErrCorruptDraft reports a persisted draft that could not be parsed.
var ErrCorruptDraft = errors.New("codec: corrupt draft")

// Encode serializes rec. Nil collections are written as empty ones so the
// persisted form always carries every field.
func Encode(rec domain.InspectionRecord) (string, error) {
	out := domain.CloneRecord(rec)
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode draft: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted draft. present is false when nothing was stored,
// in which case a copy of defaults is returned. On a parse failure Decode
// still returns a copy of defaults, together with an error wrapping
// ErrCorruptDraft so the caller can discard the stored value.
func Decode(raw string, present bool, defaults domain.InspectionRecord) (domain.InspectionRecord, error) {
	rec := domain.CloneRecord(defaults)
	if !present {
		return rec, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrCorruptDraft, err)
	}
	if fields == nil {
		// the literal null
		return rec, fmt.Errorf("%w: not an object", ErrCorruptDraft)
	}
	merge(fields, "estado", &rec.State)
	merge(fields, "comentarios", &rec.Comments)
	merge(fields, "imagenes", &rec.Images)
	merge(fields, "layout", &rec.Layout)
	merge(fields, "visible", &rec.Visible)
	merge(fields, "nombre", &rec.Name)
	merge(fields, "categoriasVisibles", &rec.VisibleCategories)
	merge(fields, "fecha", &rec.Date)
	return normalize(rec, defaults), nil
}

// merge overwrites *dst with fields[key] when it is present, non-null and of
// the expected shape. Anything else leaves the default in place.
func merge[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// normalize fills collections that decoded to nil, e.g. from nested nulls.
func normalize(rec, defaults domain.InspectionRecord) domain.InspectionRecord {
	if rec.State == nil {
		rec.State = domain.CloneStatusGrid(defaults.State)
	}
	for cat, subs := range rec.State {
		if subs == nil {
			rec.State[cat] = map[string]domain.Status{}
		}
	}
	if rec.Images == nil {
		rec.Images = []domain.Image{}
	}
	if rec.VisibleCategories == nil {
		rec.VisibleCategories = map[string]bool{}
	}
	return rec
}
