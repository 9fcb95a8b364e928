package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surveys.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadSurveyCatalog(t *testing.T) {
	path := writeCatalog(t, `
surveys:
  - id: employee-satisfaction-q3
    type: employee_satisfaction
    mode: coverage
    name: Employee Satisfaction Q3
    themes:
      - id: theme-workload
        name: Workload
        description: How manageable the day-to-day load feels
      - id: theme-growth
        name: Growth
  - id: course-evaluation-spring
    type: course_evaluation
    mode: duration
    name: Course Evaluation
    themes:
      - id: theme-pacing
        name: Pacing
`)

	catalog, err := LoadSurveyCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Surveys) != 2 {
		t.Fatalf("surveys = %d, want 2", len(catalog.Surveys))
	}
	first := catalog.Surveys[0]
	if first.ID != "employee-satisfaction-q3" || first.Mode != "coverage" {
		t.Errorf("first survey = %+v", first)
	}
	if len(first.Themes) != 2 || first.Themes[1].Name != "Growth" {
		t.Errorf("first survey themes = %+v", first.Themes)
	}
}

func TestLoadSurveyCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing id",
			content: `
surveys:
  - type: employee_satisfaction
    mode: coverage
    themes:
      - id: t1
        name: T1
`,
			wantErr: "missing an id",
		},
		{
			name: "unknown type",
			content: `
surveys:
  - id: s1
    type: exit_interview
    mode: coverage
    themes:
      - id: t1
        name: T1
`,
			wantErr: "unknown type",
		},
		{
			name: "unknown mode",
			content: `
surveys:
  - id: s1
    type: employee_satisfaction
    mode: open_ended
    themes:
      - id: t1
        name: T1
`,
			wantErr: "unknown mode",
		},
		{
			name: "no themes",
			content: `
surveys:
  - id: s1
    type: employee_satisfaction
    mode: coverage
`,
			wantErr: "no themes",
		},
		{
			name: "theme without name",
			content: `
surveys:
  - id: s1
    type: employee_satisfaction
    mode: coverage
    themes:
      - id: t1
`,
			wantErr: "without id or name",
		},
		{
			name:    "malformed yaml",
			content: "surveys: [not: closed",
			wantErr: "parse survey catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSurveyCatalog(writeCatalog(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSurveyCatalogMissingFile(t *testing.T) {
	_, err := LoadSurveyCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
