package dbschema

import (
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Session{})
}

// Session represents the database schema for interview sessions
type Session struct {
	BaseModel
	PublicID         string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	OwnerID          string  `gorm:"type:varchar(128);index:idx_session_owner;not null"`
	OwnerKind        string  `gorm:"type:varchar(20);index:idx_session_owner;not null"`
	SurveyPublicID   string  `gorm:"type:varchar(50);index;not null"`
	SurveyType       string  `gorm:"type:varchar(50);not null"`
	Mode             string  `gorm:"type:varchar(20);not null"`
	Phase            string  `gorm:"type:varchar(30);not null;default:''"`
	SelectedDuration *int    `gorm:""`
	TargetExchanges  *int    `gorm:""`
	FocusThemeID     *string `gorm:"type:varchar(50)"`
	InitialMood      *int    `gorm:""`

	Turns []Turn `gorm:"foreignKey:SessionID"`
}

// NewSchemaSession creates a database schema from a domain session
func NewSchemaSession(s *interview.Session) *Session {
	return &Session{
		BaseModel: BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		PublicID:         s.PublicID,
		OwnerID:          s.OwnerID,
		OwnerKind:        string(s.OwnerKind),
		SurveyPublicID:   s.SurveyID,
		SurveyType:       string(s.SurveyType),
		Mode:             string(s.Mode),
		Phase:            string(s.Phase),
		SelectedDuration: s.SelectedDuration,
		TargetExchanges:  s.TargetExchanges,
		FocusThemeID:     s.FocusThemeID,
		InitialMood:      s.InitialMood,
	}
}

// EtoD converts database schema to domain session (Entity to Domain)
func (s *Session) EtoD() *interview.Session {
	return &interview.Session{
		ID:               s.ID,
		PublicID:         s.PublicID,
		OwnerID:          s.OwnerID,
		OwnerKind:        interview.OwnerKind(s.OwnerKind),
		SurveyID:         s.SurveyPublicID,
		SurveyType:       interview.SurveyType(s.SurveyType),
		Mode:             interview.PolicyMode(s.Mode),
		Phase:            interview.Phase(s.Phase),
		SelectedDuration: s.SelectedDuration,
		TargetExchanges:  s.TargetExchanges,
		FocusThemeID:     s.FocusThemeID,
		InitialMood:      s.InitialMood,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
