package orchestrator

import (
	"encoding/json"
	"reflect"
)

// draft tracks the two copies of an editable checkpoint payload: the
// last value confirmed persisted on the server (baseline) and the value
// currently being edited (working). It is shape-agnostic; the same
// tracker serves every checkpoint type.
type draft struct {
	baseline any
	working  any
}

func newDraft(payload any) draft {
	return draft{baseline: clonePayload(payload), working: clonePayload(payload)}
}

// hasChanges reports whether the working copy differs structurally from
// the baseline.
func (d *draft) hasChanges() bool {
	return !structuralEqual(d.working, d.baseline)
}

// structuralEqual compares two opaque payloads by structure: mappings
// compare order-insensitively, lists order-sensitively. Both values are
// normalized through JSON first so equivalent representations (e.g.
// map[string]string vs map[string]any) compare equal.
func structuralEqual(a, b any) bool {
	return reflect.DeepEqual(normalizePayload(a), normalizePayload(b))
}

// normalizePayload reduces v to the canonical JSON value types
// (map[string]any, []any, float64, string, bool, nil).
func normalizePayload(v any) any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		// Not JSON-representable; fall back to the value itself.
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// clonePayload deep-copies an opaque payload. Snapshots and baselines
// must not alias the working copy the editing front end mutates.
func clonePayload(v any) any {
	return normalizePayload(v)
}
