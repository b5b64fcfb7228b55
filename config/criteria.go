package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dealhound/dealhound/models"
)

// LoadCriteria reads search criteria from a YAML or JSON file, chosen by
// extension, and normalizes them through models.NewCriteria.
func LoadCriteria(path string) (models.Criteria, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Criteria{}, fmt.Errorf("read criteria file: %w", err)
	}

	var c models.Criteria
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return models.Criteria{}, fmt.Errorf("parse yaml criteria: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &c); err != nil {
			return models.Criteria{}, fmt.Errorf("parse json criteria: %w", err)
		}
	default:
		return models.Criteria{}, fmt.Errorf("unsupported criteria format %q, want .yaml, .yml or .json", filepath.Ext(path))
	}
	return models.NewCriteria(c)
}
