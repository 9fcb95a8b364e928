package interview

import "context"

// Theme is a named topical dimension the interview is meant to explore.
// Read-only reference data supplied per survey.
type Theme struct {
	PublicID    string `json:"id"`
	SurveyID    string `json:"survey_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Survey groups a theme catalogue with its interview configuration.
type Survey struct {
	PublicID string     `json:"id"`
	Name     string     `json:"name"`
	Type     SurveyType `json:"type"`
	Mode     PolicyMode `json:"mode"`
}

type SurveyRepository interface {
	Upsert(ctx context.Context, survey *Survey) error
	FindByPublicID(ctx context.Context, publicID string) (*Survey, error)
}

type ThemeRepository interface {
	Upsert(ctx context.Context, theme *Theme) error
	ListBySurvey(ctx context.Context, surveyID string) ([]Theme, error)
	FindByPublicIDs(ctx context.Context, publicIDs []string) ([]Theme, error)
}
