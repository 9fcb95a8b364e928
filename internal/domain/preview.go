package domain

import "pulse-server/internal/domain/interview"

// PreviewService runs the interview state machine over the in-memory preview
// stores, so anonymous preview conversations never touch Postgres. The
// embedded service is assembled separately from the authenticated one.
type PreviewService struct {
	*interview.Service
}
