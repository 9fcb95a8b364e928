package domain

import "pulse-server/internal/domain/interview"

// Principal is the authenticated identity attached to a request. Kind
// distinguishes JWT subjects from public-link participants.
type Principal struct {
	ID      string
	Subject string
	Email   string
	Name    string
	Kind    interview.OwnerKind
}

// Caller maps the principal onto the session ownership check.
func (p Principal) Caller() interview.Caller {
	return interview.Caller{
		ID:            p.ID,
		Kind:          p.Kind,
		Authenticated: p.Kind == interview.OwnerUser,
	}
}
