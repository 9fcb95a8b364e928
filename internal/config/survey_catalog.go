package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SurveyCatalogTheme is one topical dimension an interview explores.
type SurveyCatalogTheme struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SurveyCatalogEntry describes a survey and its theme catalogue.
type SurveyCatalogEntry struct {
	ID     string               `yaml:"id"`
	Type   string               `yaml:"type"` // employee_satisfaction | course_evaluation
	Mode   string               `yaml:"mode"` // coverage | duration
	Name   string               `yaml:"name"`
	Themes []SurveyCatalogTheme `yaml:"themes"`
}

// SurveyCatalog is the bootstrap reference data installed at startup.
type SurveyCatalog struct {
	Surveys []SurveyCatalogEntry `yaml:"surveys"`
}

// LoadSurveyCatalog reads and validates the YAML survey catalogue.
func LoadSurveyCatalog(path string) (*SurveyCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read survey catalog: %w", err)
	}

	var catalog SurveyCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse survey catalog: %w", err)
	}

	for i := range catalog.Surveys {
		entry := &catalog.Surveys[i]
		if entry.ID == "" {
			return nil, fmt.Errorf("survey at index %d is missing an id", i)
		}
		if entry.Type != "employee_satisfaction" && entry.Type != "course_evaluation" {
			return nil, fmt.Errorf("survey %q has unknown type %q", entry.ID, entry.Type)
		}
		if entry.Mode != "coverage" && entry.Mode != "duration" {
			return nil, fmt.Errorf("survey %q has unknown mode %q", entry.ID, entry.Mode)
		}
		if len(entry.Themes) == 0 {
			return nil, fmt.Errorf("survey %q has no themes", entry.ID)
		}
		for _, theme := range entry.Themes {
			if theme.ID == "" || theme.Name == "" {
				return nil, fmt.Errorf("survey %q has a theme without id or name", entry.ID)
			}
		}
	}

	return &catalog, nil
}
