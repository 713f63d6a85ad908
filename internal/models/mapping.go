package models

import "strings"

// DomainMapping is the per-site configuration learned interactively.
// Nil selector fields mean "not available on this site".
type DomainMapping struct {
	Make                 string             `json:"Make"`
	MakeSelector         *string            `json:"makeSelector"`
	YearSelector         *string            `json:"yearSelector"`
	TypeSelector         *string            `json:"typeSelector"`
	ModelSelector        *string            `json:"modelSelector"`
	ModelExtractor       *string            `json:"modelExtractor"`
	TrimSelector         *string            `json:"trimSelector"`
	ImageSelector        *string            `json:"imageSelector"`
	DescriptionSelector  *string            `json:"descriptionSelector"`
	RowSelector          *string            `json:"rowSelector"`
	DLSelector           *string            `json:"dlSelector"`
	OptionsSelector      *string            `json:"optionsSelector"`
	WebFeaturesSelector  *string            `json:"webFeaturesSelector"`
	WebFeaturesExtractor *string            `json:"webFeaturesExtractor"`
	KeyMappings          map[string]*string `json:"keyMappings"`
}

// DomainMappings is keyed by second-level domain label (e.g. "granddesignrv")
type DomainMappings map[string]*DomainMapping

// SynonymDictionary maps a raw key to a canonical key; nil means discard
type SynonymDictionary map[string]*string

// Lookup returns the learned mapping for a raw key and whether one exists
func (dm *DomainMapping) Lookup(raw string) (*string, bool) {
	if dm == nil || dm.KeyMappings == nil {
		return nil, false
	}
	v, ok := dm.KeyMappings[raw]
	return v, ok
}

// Learn records a raw key decision. Existing entries are never removed.
func (dm *DomainMapping) Learn(raw string, canonical *string) {
	if dm.KeyMappings == nil {
		dm.KeyMappings = make(map[string]*string)
	}
	dm.KeyMappings[raw] = canonical
}

// IsNullToken reports whether an operator answer explicitly declines a value
func IsNullToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null", "undefined":
		return true
	}
	return false
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
