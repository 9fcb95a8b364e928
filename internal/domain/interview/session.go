package interview

import (
	"context"
	"time"
)

// ===============================================
// Session Types
// ===============================================

// SurveyType selects the interview persona and theme framing.
type SurveyType string

const (
	SurveyTypeEmployeeSatisfaction SurveyType = "employee_satisfaction"
	SurveyTypeCourseEvaluation     SurveyType = "course_evaluation"
)

// PolicyMode selects which completion policy governs a session.
type PolicyMode string

const (
	ModeCoverage PolicyMode = "coverage"
	ModeDuration PolicyMode = "duration"
)

// Phase is the interview state machine position. The duration-gated mode has
// two extra phases (duration_selection, theme_selection) the coverage-gated
// mode never enters; the two vocabularies are deliberately kept distinct.
type Phase string

const (
	PhaseNone              Phase = ""
	PhaseDurationSelection Phase = "duration_selection"
	PhaseInterview         Phase = "interview"
	PhaseThemeSelection    Phase = "theme_selection"
	PhaseReviewing         Phase = "reviewing"
	PhaseComplete          Phase = "complete"
)

// OwnerKind describes who a session belongs to.
type OwnerKind string

const (
	OwnerUser       OwnerKind = "user"
	OwnerPublicLink OwnerKind = "public_link"
	OwnerPreview    OwnerKind = "preview"
)

// DurationTargets maps a selected duration in minutes to the target number of
// exchanges for the duration-gated policy.
var DurationTargets = map[int]int{
	5:  5,
	10: 10,
	15: 15,
}

// ===============================================
// Session Structure
// ===============================================

// Session is one participant's interview conversation. Created when the
// participant starts a survey; its lifecycle is owned by the store, this
// engine only advances the phase and selection fields.
type Session struct {
	ID               uint       `json:"-"`
	PublicID         string     `json:"id"`
	OwnerID          string     `json:"-"`
	OwnerKind        OwnerKind  `json:"-"`
	SurveyID         string     `json:"survey_id"`
	SurveyType       SurveyType `json:"survey_type"`
	Mode             PolicyMode `json:"mode"`
	Phase            Phase      `json:"phase"`
	SelectedDuration *int       `json:"selected_duration,omitempty"`
	TargetExchanges  *int       `json:"-"`
	FocusThemeID     *string    `json:"-"`
	InitialMood      *int       `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HalfwayPoint returns the exchange count at which the duration-gated mode
// offers theme selection. Zero when no target is set.
func (s *Session) HalfwayPoint() int {
	if s.TargetExchanges == nil || *s.TargetExchanges <= 0 {
		return 0
	}
	return (*s.TargetExchanges + 1) / 2
}

// SelectDuration stores the participant's duration choice and derives the
// exchange target from the fixed table.
func (s *Session) SelectDuration(minutes int) bool {
	target, ok := DurationTargets[minutes]
	if !ok {
		return false
	}
	s.SelectedDuration = &minutes
	s.TargetExchanges = &target
	return true
}

// ===============================================
// Session Repository
// ===============================================

type SessionFilter struct {
	ID       *uint
	PublicID *string
	OwnerID  *string
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByPublicID(ctx context.Context, publicID string) (*Session, error)
	Update(ctx context.Context, session *Session) error
}
