package mapping

import (
	"fmt"
	"os"

	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/titanous/json5"
)

// LoadSynonyms reads the synonym dictionary. A missing file is an empty dictionary.
func LoadSynonyms(path string) (models.SynonymDictionary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.SynonymDictionary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms: %w", err)
	}

	sd := models.SynonymDictionary{}
	if len(data) == 0 {
		return sd, nil
	}
	if err := json5.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms %s: %w", path, err)
	}
	return sd, nil
}
