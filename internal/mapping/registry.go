package mapping

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/charmbracelet/log"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/scrape"
)

// Prompter asks the operator for a validated line of input
type Prompter interface {
	Input(title, description string, validate func(string) error) (string, error)
}

// Registry holds the loaded domain mappings for one run
type Registry struct {
	store    Store
	prompter Prompter
	mappings models.DomainMappings
	logger   *log.Logger
}

// NewRegistry loads every mapping from store
func NewRegistry(store Store, prompter Prompter, logger *log.Logger) (*Registry, error) {
	mappings, err := store.Load()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger.Debug("loaded domain mappings", "domains", len(mappings))
	return &Registry{
		store:    store,
		prompter: prompter,
		mappings: mappings,
		logger:   logger,
	}, nil
}

// Lookup returns the mapping for a second-level domain
func (r *Registry) Lookup(sld string) (*models.DomainMapping, bool) {
	dm, ok := r.mappings[sld]
	return dm, ok
}

// Domains lists the known second-level domains, sorted
func (r *Registry) Domains() []string {
	out := make([]string, 0, len(r.mappings))
	for d := range r.mappings {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Persist writes the whole collection to the store
func (r *Registry) Persist() error {
	if err := r.store.Save(r.mappings); err != nil {
		return fmt.Errorf("failed to persist domain mappings: %w", err)
	}
	return nil
}

// selectorField binds a prompt to a DomainMapping field
type selectorField struct {
	name      string
	hint      string
	extractor bool
	target    func(dm *models.DomainMapping) **string
}

var selectorFields = []selectorField{
	{"makeSelector", "CSS selector for the manufacturer name", false, func(dm *models.DomainMapping) **string { return &dm.MakeSelector }},
	{"yearSelector", "CSS selector for the model year", false, func(dm *models.DomainMapping) **string { return &dm.YearSelector }},
	{"typeSelector", "CSS selector for the RV type", false, func(dm *models.DomainMapping) **string { return &dm.TypeSelector }},
	{"modelSelector", "CSS selector for the model name", false, func(dm *models.DomainMapping) **string { return &dm.ModelSelector }},
	{"modelExtractor", "Named extractor for the model", true, func(dm *models.DomainMapping) **string { return &dm.ModelExtractor }},
	{"trimSelector", "CSS selector for the trim / floor plan code", false, func(dm *models.DomainMapping) **string { return &dm.TrimSelector }},
	{"imageSelector", "CSS selector for the floor plan image", false, func(dm *models.DomainMapping) **string { return &dm.ImageSelector }},
	{"descriptionSelector", "CSS selector for the description", false, func(dm *models.DomainMapping) **string { return &dm.DescriptionSelector }},
	{"rowSelector", "CSS selector for spec table rows (default: " + scrape.DefaultRowSelector + ")", false, func(dm *models.DomainMapping) **string { return &dm.RowSelector }},
	{"dlSelector", "CSS selector for description lists", false, func(dm *models.DomainMapping) **string { return &dm.DLSelector }},
	{"optionsSelector", "CSS selector for option list items", false, func(dm *models.DomainMapping) **string { return &dm.OptionsSelector }},
	{"webFeaturesSelector", "CSS selector for the feature list", false, func(dm *models.DomainMapping) **string { return &dm.WebFeaturesSelector }},
	{"webFeaturesExtractor", "Named extractor for the feature list", true, func(dm *models.DomainMapping) **string { return &dm.WebFeaturesExtractor }},
}

// GetOrCreate returns the mapping for sld, interactively building and
// persisting a new one when the domain has not been seen before.
func (r *Registry) GetOrCreate(sld string) (*models.DomainMapping, error) {
	if dm, ok := r.mappings[sld]; ok {
		return dm, nil
	}
	if r.prompter == nil {
		return nil, fmt.Errorf("no mapping for %q and no prompter configured", sld)
	}

	r.logger.Info("setting up new domain", "domain", sld)
	dm := &models.DomainMapping{KeyMappings: map[string]*string{}}

	makeName, err := r.prompter.Input(
		fmt.Sprintf("Make for %s", sld),
		"Manufacturer name written into every record from this site",
		ValidateMake,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read make: %w", err)
	}
	dm.Make = strings.TrimSpace(makeName)

	for _, f := range selectorFields {
		validate := ValidateSelector
		desc := f.hint + ` (type "null" if not available)`
		if f.extractor {
			validate = ValidateExtractor
			desc = f.hint + ": " + strings.Join(scrape.ExtractorNames(), ", ") + ` (or "null")`
		}

		answer, err := r.prompter.Input(fmt.Sprintf("%s: %s", sld, f.name), desc, validate)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.name, err)
		}
		if models.IsNullToken(answer) {
			continue
		}
		*f.target(dm) = models.StringPtr(strings.TrimSpace(answer))
	}

	r.mappings[sld] = dm
	if err := r.Persist(); err != nil {
		return nil, err
	}
	return dm, nil
}

var errEmpty = errors.New(`value cannot be empty (type "null" to skip)`)

// ValidateMake requires a non-empty, non-null manufacturer name
func ValidateMake(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || models.IsNullToken(s) {
		return errors.New("make cannot be empty")
	}
	return nil
}

// ValidateSelector accepts "null" or a syntactically valid CSS selector group
func ValidateSelector(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errEmpty
	}
	if models.IsNullToken(s) {
		return nil
	}
	if _, err := cascadia.Compile(s); err != nil {
		return fmt.Errorf("invalid CSS selector: %w", err)
	}
	return nil
}

// ValidateExtractor accepts "null" or a registered extractor name
func ValidateExtractor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errEmpty
	}
	if models.IsNullToken(s) || scrape.HasExtractor(s) {
		return nil
	}
	return fmt.Errorf("unknown extractor %q", s)
}
