package interviewresp

import "pulse-server/internal/domain/interview"

// ThemeProgress mirrors the coverage snapshot for the client-side progress bar.
type ThemeProgress struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Discussed bool   `json:"discussed"`
	Current   bool   `json:"current"`
	Depth     int    `json:"depth"`
	Exchanges int    `json:"exchanges"`
}

type CoverageReport struct {
	Themes          []ThemeProgress `json:"themes"`
	DiscussedCount  int             `json:"discussedCount"`
	CoveragePercent float64         `json:"coveragePercent"`
	CurrentThemeID  *string         `json:"currentThemeId,omitempty"`
}

type StructuredSummary struct {
	Opening   *string  `json:"opening,omitempty"`
	KeyPoints []string `json:"keyPoints"`
	Sentiment string   `json:"sentiment"`
}

// TurnResponse is the reply for one interview turn. Error is populated on
// degraded turns where the reply was produced but persistence failed.
type TurnResponse struct {
	Message            string             `json:"message"`
	Empathy            *string            `json:"empathy,omitempty"`
	ShouldComplete     bool               `json:"shouldComplete"`
	IsCompletionPrompt bool               `json:"isCompletionPrompt,omitempty"`
	Phase              string             `json:"phase"`
	ThemeProgress      *CoverageReport    `json:"themeProgress,omitempty"`
	StructuredSummary  *StructuredSummary `json:"structuredSummary,omitempty"`
	Error              *string            `json:"error,omitempty"`
}

// NewTurnResponse maps the domain output onto the wire shape.
func NewTurnResponse(out *interview.TurnOutput) *TurnResponse {
	resp := &TurnResponse{
		Message:            out.Message,
		Empathy:            out.Empathy,
		ShouldComplete:     out.ShouldComplete,
		IsCompletionPrompt: out.IsCompletionPrompt,
		Phase:              string(out.Phase),
	}
	if out.Progress != nil {
		report := &CoverageReport{
			Themes:          make([]ThemeProgress, 0, len(out.Progress.Themes)),
			DiscussedCount:  out.Progress.DiscussedCount,
			CoveragePercent: out.Progress.CoveragePercent,
			CurrentThemeID:  out.Progress.CurrentThemeID,
		}
		for _, item := range out.Progress.Themes {
			report.Themes = append(report.Themes, ThemeProgress{
				ID:        item.Theme.PublicID,
				Name:      item.Theme.Name,
				Discussed: item.Discussed,
				Current:   item.Current,
				Depth:     item.Depth,
				Exchanges: item.Exchanges,
			})
		}
		resp.ThemeProgress = report
	}
	if out.Summary != nil {
		resp.StructuredSummary = &StructuredSummary{
			Opening:   out.Summary.Opening,
			KeyPoints: out.Summary.KeyPoints,
			Sentiment: out.Summary.Sentiment,
		}
	}
	return resp
}

// StartSessionResponse returns the identifier for a freshly created conversation.
type StartSessionResponse struct {
	ConversationID string `json:"conversationId"`
	SurveyID       string `json:"surveyId"`
	Phase          string `json:"phase"`
}
