package interview

import "testing"

func TestThemeDepth(t *testing.T) {
	tests := []struct {
		exchanges int
		want      int
	}{
		{0, 0},
		{1, 25},
		{2, 45},
		{3, 65},
		{4, 85},
		{5, 100},
		{12, 100},
	}
	for _, tt := range tests {
		if got := ThemeDepth(tt.exchanges); got != tt.want {
			t.Errorf("ThemeDepth(%d) = %d, want %d", tt.exchanges, got, tt.want)
		}
	}
}

func TestBuildCoverage(t *testing.T) {
	themes := themesNamed("workload", "growth", "leadership")
	turns := classifiedTurns("theme-workload", "theme-workload", "theme-growth")

	report := BuildCoverage(themes, turns)

	if report.DiscussedCount != 2 {
		t.Fatalf("expected 2 discussed themes, got %d", report.DiscussedCount)
	}
	if report.CoveragePercent < 66 || report.CoveragePercent > 67 {
		t.Fatalf("expected ~66.7%% coverage, got %f", report.CoveragePercent)
	}
	if report.CurrentThemeID == nil || *report.CurrentThemeID != "theme-growth" {
		t.Fatalf("current theme should track the latest classified turn, got %v", report.CurrentThemeID)
	}

	byID := map[string]ThemeProgress{}
	for _, progress := range report.Themes {
		byID[progress.Theme.PublicID] = progress
	}
	if !byID["theme-workload"].Discussed || byID["theme-workload"].Depth != 45 {
		t.Fatalf("workload progress wrong: %+v", byID["theme-workload"])
	}
	if byID["theme-leadership"].Discussed || byID["theme-leadership"].Depth != 0 {
		t.Fatalf("leadership should be untouched: %+v", byID["theme-leadership"])
	}
	if !byID["theme-growth"].Current {
		t.Fatal("growth should be the current theme")
	}
}

func TestBuildCoverageEmpty(t *testing.T) {
	report := BuildCoverage(nil, nil)
	if report.CoveragePercent != 0 || report.DiscussedCount != 0 {
		t.Fatalf("empty catalogue should produce a zero report: %+v", report)
	}
}

func TestUndiscussedThemes(t *testing.T) {
	themes := themesNamed("a", "b", "c")
	report := BuildCoverage(themes, classifiedTurns("theme-b"))

	missing := UndiscussedThemes(report)
	if len(missing) != 2 {
		t.Fatalf("expected 2 undiscussed themes, got %d", len(missing))
	}
	for _, theme := range missing {
		if theme.PublicID == "theme-b" {
			t.Fatal("theme-b was discussed")
		}
	}
}

func TestConsecutiveExchangesOnCurrent(t *testing.T) {
	turns := classifiedTurns("theme-a", "theme-b", "", "theme-b")
	if got := ConsecutiveExchangesOnCurrent(turns); got != 2 {
		t.Fatalf("expected 2 consecutive exchanges on theme-b, got %d", got)
	}

	turns = classifiedTurns("theme-a", "theme-b", "theme-c")
	if got := ConsecutiveExchangesOnCurrent(turns); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}

	if got := ConsecutiveExchangesOnCurrent(nil); got != 0 {
		t.Fatalf("expected 0 for no turns, got %d", got)
	}
}
