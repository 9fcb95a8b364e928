package interview

// ThemeProgress is the derived per-theme discussion state. Recomputed from
// the turn history on every request; never cached across requests.
type ThemeProgress struct {
	Theme     Theme `json:"theme"`
	Discussed bool  `json:"discussed"`
	Current   bool  `json:"current"`
	Depth     int   `json:"depth"`
	Exchanges int   `json:"exchanges"`
}

// CoverageReport aggregates theme progress for a session. The current theme
// reflects the most recent classified turn and may lag one turn behind while
// enrichment is in flight.
type CoverageReport struct {
	Themes          []ThemeProgress `json:"themes"`
	DiscussedCount  int             `json:"discussed_count"`
	CoveragePercent float64         `json:"coverage_percent"`
	CurrentThemeID  *string         `json:"current_theme_id,omitempty"`
}

// ThemeDepth converts an exchange count into a 0-100 depth score: first
// mention jumps to 25, each further exchange adds 20, capped at 100.
func ThemeDepth(exchanges int) int {
	if exchanges <= 0 {
		return 0
	}
	depth := 25 + 20*(exchanges-1)
	if depth > 100 {
		return 100
	}
	return depth
}

// BuildCoverage computes per-theme progress and overall coverage from the
// turn history.
func BuildCoverage(themes []Theme, turns []*Turn) CoverageReport {
	exchanges := make(map[string]int, len(themes))
	var currentThemeID *string
	for _, turn := range turns {
		if turn.ThemeID == nil {
			continue
		}
		exchanges[*turn.ThemeID]++
		currentThemeID = turn.ThemeID
	}

	report := CoverageReport{
		Themes:         make([]ThemeProgress, 0, len(themes)),
		CurrentThemeID: currentThemeID,
	}
	for _, theme := range themes {
		count := exchanges[theme.PublicID]
		progress := ThemeProgress{
			Theme:     theme,
			Discussed: count > 0,
			Current:   currentThemeID != nil && *currentThemeID == theme.PublicID,
			Depth:     ThemeDepth(count),
			Exchanges: count,
		}
		if progress.Discussed {
			report.DiscussedCount++
		}
		report.Themes = append(report.Themes, progress)
	}

	if len(themes) > 0 {
		report.CoveragePercent = float64(report.DiscussedCount) / float64(len(themes)) * 100
	}
	return report
}

// UndiscussedThemes returns the themes without any associated turn.
func UndiscussedThemes(report CoverageReport) []Theme {
	var out []Theme
	for _, progress := range report.Themes {
		if !progress.Discussed {
			out = append(out, progress.Theme)
		}
	}
	return out
}

// ConsecutiveExchangesOnCurrent counts how many of the most recent classified
// turns in a row belong to the current theme. Used for pacing directives.
func ConsecutiveExchangesOnCurrent(turns []*Turn) int {
	var current *string
	count := 0
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].ThemeID == nil {
			continue
		}
		if current == nil {
			current = turns[i].ThemeID
			count = 1
			continue
		}
		if *turns[i].ThemeID != *current {
			break
		}
		count++
	}
	return count
}
