package fields

import "strings"

// FieldValue is one named field's extracted datum. Strategies create these
// fresh on every invocation; the merger may replace them wholesale but never
// mutates them in place.
type FieldValue struct {
	Name       string         `json:"name"`
	Value      *string        `json:"value"` // nil when the field was searched but nothing matched
	Confidence float32        `json:"confidence"`
	Source     string         `json:"source"` // "text" | "ocr"; informational only
	Meta       map[string]any `json:"meta,omitempty"`
}

// Filled reports whether the field carries a non-blank value.
func (fv FieldValue) Filled() bool {
	if fv.Value == nil {
		return false
	}
	return strings.TrimSpace(*fv.Value) != ""
}

// ExtractionResult is one document's full field set from one extraction run.
type ExtractionResult struct {
	Fields     map[string]FieldValue
	TextDigest string
	DocMeta    map[string]any
}

// NewResult returns an empty result with allocated maps.
func NewResult() ExtractionResult {
	return ExtractionResult{
		Fields:  make(map[string]FieldValue),
		DocMeta: make(map[string]any),
	}
}

// Get looks up a field by name.
func (r ExtractionResult) Get(name string) (FieldValue, bool) {
	fv, ok := r.Fields[name]
	return fv, ok
}

// Merge combines two results field by field, preferring the strictly higher
// confidence; the receiver's entry wins exact ties. Document metadata from
// other overwrites same-named keys in the receiver. The first non-empty text
// digest is carried through.
func (r ExtractionResult) Merge(other ExtractionResult) ExtractionResult {
	merged := make(map[string]FieldValue, len(r.Fields)+len(other.Fields))
	for k, v := range r.Fields {
		merged[k] = v
	}
	for k, v := range other.Fields {
		cur, ok := merged[k]
		if !ok || v.Confidence > cur.Confidence {
			merged[k] = v
		}
	}

	meta := make(map[string]any, len(r.DocMeta)+len(other.DocMeta))
	for k, v := range r.DocMeta {
		meta[k] = v
	}
	for k, v := range other.DocMeta {
		meta[k] = v
	}

	digest := r.TextDigest
	if digest == "" {
		digest = other.TextDigest
	}
	return ExtractionResult{Fields: merged, TextDigest: digest, DocMeta: meta}
}

// AggregateConfidence is the arithmetic mean of the clamped confidences of
// all filled fields. A result with no filled fields aggregates to 0.0.
func AggregateConfidence(r ExtractionResult) float32 {
	var total float32
	n := 0
	for _, fv := range r.Fields {
		if fv.Value == nil {
			continue
		}
		total += Clamp(fv.Confidence)
		n++
	}
	if n == 0 {
		return 0.0
	}
	return total / float32(n)
}

// Clamp bounds a confidence to [0.0, 1.0].
func Clamp(c float32) float32 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// String returns a pointer to s, for building optional field values.
func String(s string) *string {
	return &s
}
