package interview

// CompletionPolicy decides whether an interview has gathered enough. Both
// implementations are pure functions of turn history plus configuration; no
// hidden state.
type CompletionPolicy interface {
	Name() string
	ShouldComplete(session *Session, themes []Theme, turns []*Turn) bool
}

// PolicyForSession selects the policy the session is configured for.
func PolicyForSession(session *Session) CompletionPolicy {
	if session.Mode == ModeDuration {
		return DurationPolicy{}
	}
	return ThemeCoveragePolicy{}
}

// ThemeCoveragePolicy completes only once every theme has been sampled:
// below the hard floor max(6, themeCount+2) it never completes; above it,
// every theme needs at least one associated turn and the mean exchange count
// per discussed theme must reach 1.
type ThemeCoveragePolicy struct{}

func (ThemeCoveragePolicy) Name() string { return "theme_coverage" }

func (ThemeCoveragePolicy) ShouldComplete(session *Session, themes []Theme, turns []*Turn) bool {
	floor := len(themes) + 2
	if floor < 6 {
		floor = 6
	}
	if len(turns) < floor {
		return false
	}

	exchanges := make(map[string]int, len(themes))
	classified := 0
	for _, turn := range turns {
		if turn.ThemeID != nil {
			exchanges[*turn.ThemeID]++
			classified++
		}
	}

	discussed := 0
	for _, theme := range themes {
		if exchanges[theme.PublicID] == 0 {
			return false
		}
		discussed++
	}
	if discussed == 0 {
		return false
	}

	return float64(classified)/float64(discussed) >= 1
}

// DurationPolicy completes once the exchange target for the selected session
// length is reached. Under 3 turns it never completes; two exchanges past the
// target it force-completes even if the conversation hasn't wound down.
type DurationPolicy struct{}

func (DurationPolicy) Name() string { return "duration" }

func (DurationPolicy) ShouldComplete(session *Session, _ []Theme, turns []*Turn) bool {
	if len(turns) < 3 {
		return false
	}
	if session.TargetExchanges == nil {
		return false
	}
	return len(turns) >= *session.TargetExchanges
}

// ForceComplete reports whether the session has overrun the target by the
// forced-completion margin.
func (DurationPolicy) ForceComplete(session *Session, turns []*Turn) bool {
	if len(turns) < 3 || session.TargetExchanges == nil {
		return false
	}
	return len(turns) >= *session.TargetExchanges+2
}
