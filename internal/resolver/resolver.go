package resolver

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/schema"
)

var (
	// ErrPersist wraps a failure to save learned mappings; it must stop the run
	ErrPersist = errors.New("failed to persist key mappings")
	// ErrAborted wraps a prompt the operator cancelled or could not answer; it must stop the run
	ErrAborted = errors.New("key resolution aborted")
)

// suggestions shown with the manual prompt
const suggestionCount = 3

// Prompter is the interactive surface the resolver needs
type Prompter interface {
	Confirm(title, description string) (bool, error)
	Input(title, description string, validate func(string) error) (string, error)
}

// Persister saves the mapping store after each record
type Persister interface {
	Persist() error
}

// Resolver maps raw page keys to canonical schema keys, learning per domain
type Resolver struct {
	synonyms  models.SynonymDictionary
	prompter  Prompter
	persister Persister
	logger    *log.Logger
}

// New creates a resolver
func New(synonyms models.SynonymDictionary, prompter Prompter, persister Persister, logger *log.Logger) *Resolver {
	if synonyms == nil {
		synonyms = models.SynonymDictionary{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		synonyms:  synonyms,
		prompter:  prompter,
		persister: persister,
		logger:    logger,
	}
}

// ResolveKey returns the canonical key for raw, or nil to discard it.
// New decisions are recorded in dm.KeyMappings but not persisted.
func (r *Resolver) ResolveKey(dm *models.DomainMapping, raw, value string) (*string, error) {
	// 1. learned for this domain
	if canonical, ok := dm.Lookup(raw); ok {
		return canonical, nil
	}

	// 2. global synonym dictionary
	if candidate, ok := r.synonyms[raw]; ok {
		if candidate == nil {
			return nil, nil
		}
		switch {
		case !schema.Has(*candidate):
			r.logger.Warn("synonym points outside the schema, asking instead", "raw", raw, "candidate", *candidate)
		case strings.EqualFold(raw, *candidate):
			dm.Learn(raw, candidate)
			return candidate, nil
		default:
			if r.prompter == nil {
				return nil, fmt.Errorf("%w: no prompter to confirm %q", ErrAborted, raw)
			}
			ok, err := r.prompter.Confirm(
				fmt.Sprintf("Map %q to %q?", raw, *candidate),
				fmt.Sprintf("Value on page: %s", value),
			)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to confirm mapping for %q: %w", ErrAborted, raw, err)
			}
			if ok {
				dm.Learn(raw, candidate)
				return candidate, nil
			}
		}
	}

	// 3. ask
	canonical, err := r.ask(raw, value)
	if err != nil {
		return nil, err
	}
	dm.Learn(raw, canonical)
	return canonical, nil
}

func (r *Resolver) ask(raw, value string) (*string, error) {
	desc := fmt.Sprintf("Value on page: %s\nSuggestions: %s\nType a schema field name, or null to discard.",
		value, strings.Join(schema.Suggest(raw, suggestionCount), " | "))

	if r.prompter == nil {
		return nil, fmt.Errorf("%w: no prompter to map %q", ErrAborted, raw)
	}
	answer, err := r.prompter.Input(fmt.Sprintf("Canonical field for %q", raw), desc, r.ValidateAnswer)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read mapping for %q: %w", ErrAborted, raw, err)
	}
	return r.interpret(answer), nil
}

// ValidateAnswer accepts null, a schema key, or a synonym with a schema target
func (r *Resolver) ValidateAnswer(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New(`enter a field name or "null"`)
	}
	if models.IsNullToken(s) || schema.Has(s) {
		return nil
	}
	if target, ok := r.synonyms[s]; ok && target != nil && schema.Has(*target) {
		return nil
	}
	return fmt.Errorf("%q is not a known field (try: %s)", s, strings.Join(schema.Suggest(s, suggestionCount), ", "))
}

func (r *Resolver) interpret(answer string) *string {
	answer = strings.TrimSpace(answer)
	if models.IsNullToken(answer) {
		return nil
	}
	if schema.Has(answer) {
		return models.StringPtr(answer)
	}
	target := r.synonyms[answer]
	return models.StringPtr(*target)
}

// ResolveRecord renames every raw key, drops discarded ones, then persists.
// When two raw keys land on one canonical key the first non-empty value is kept.
// An aborted prompt still persists what was learned before it.
func (r *Resolver) ResolveRecord(dm *models.DomainMapping, raw models.RawRecord) (models.CanonicalRecord, error) {
	out := make(models.CanonicalRecord, len(raw))
	from := make(map[string]string, len(raw))

	for _, k := range raw.SortedKeys() {
		v := raw[k]
		canonical, err := r.ResolveKey(dm, k, v)
		if err != nil {
			if persistErr := r.persist(); persistErr != nil {
				return nil, errors.Join(err, persistErr)
			}
			return nil, err
		}
		if canonical == nil {
			continue
		}

		key := *canonical
		if prev, exists := out[key]; exists && prev != "" {
			r.logger.Warn("duplicate canonical key, keeping first value",
				"key", key, "kept_from", from[key], "dropped_from", k)
			continue
		}
		out[key] = v
		from[key] = k
	}

	if err := r.persist(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) persist() error {
	if r.persister == nil {
		return nil
	}
	if err := r.persister.Persist(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
