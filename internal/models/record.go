package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// VerifyManuallyKey is the reserved annotation key emitted alongside the schema fields
const VerifyManuallyKey = "verifyManually"

// RawRecord is a scraped key/value table, keys exactly as shown on the page
type RawRecord map[string]string

// SortedKeys returns the raw keys in a stable order
func (r RawRecord) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Page holds everything extracted from one product page
type Page struct {
	URL         string
	Raw         RawRecord
	Make        string
	Year        string
	Type        string
	Model       string
	Trim        string
	Description string
	WebFeatures string
	ImageURL    string
}

// CanonicalRecord maps canonical field names to typed values (nil = unknown)
type CanonicalRecord map[string]any

// Record is one normalized output record
type Record struct {
	Fields         CanonicalRecord
	VerifyManually []string // sorted canonical keys left nil
}

// Get returns a field value
func (r Record) Get(key string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[key]
}

// String returns the field as text, or "" for nil
func (r Record) String(key string) string {
	v := r.Get(key)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// MarshalJSON flattens the fields and appends the verifyManually annotation
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	verify := r.VerifyManually
	if verify == nil {
		verify = []string{}
	}
	out[VerifyManuallyKey] = verify
	return json.Marshal(out)
}

// UnmarshalJSON splits the annotation back out of the field set
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Fields = make(CanonicalRecord, len(raw))
	r.VerifyManually = nil
	for k, msg := range raw {
		if k == VerifyManuallyKey {
			if err := json.Unmarshal(msg, &r.VerifyManually); err != nil {
				return fmt.Errorf("failed to decode %s: %w", VerifyManuallyKey, err)
			}
			continue
		}
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("failed to decode field %q: %w", k, err)
		}
		r.Fields[k] = v
	}
	return nil
}

// TireSpec is the decoded form of a tire size code; nil fields mean unparsed
type TireSpec struct {
	TireCode        string
	VehicleClass    *string
	SectionWidthMM  *float64
	SectionWidthIn  *float64
	AspectRatio     *float64
	Construction    *string
	WheelDiameterIn *float64
	LoadRange       *string
	PlyRating       *int
	TireDiameterIn  *float64
}

// Valid reports whether the code was recognised
func (t TireSpec) Valid() bool {
	return t.SectionWidthMM != nil && t.WheelDiameterIn != nil
}

// Failure records a URL that could not be turned into a record
type Failure struct {
	URL   string
	Stage string
	Err   string
}
