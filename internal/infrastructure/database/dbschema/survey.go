package dbschema

import (
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Survey{})
	database.RegisterSchemaForAutoMigrate(Theme{})
}

// Survey represents the database schema for survey configurations
type Survey struct {
	BaseModel
	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name     string `gorm:"type:varchar(256);not null"`
	Type     string `gorm:"type:varchar(50);not null"`
	Mode     string `gorm:"type:varchar(20);not null"`

	Themes []Theme `gorm:"foreignKey:SurveyPublicID;references:PublicID"`
}

// Theme represents the database schema for survey themes
type Theme struct {
	BaseModel
	PublicID       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	SurveyPublicID string `gorm:"type:varchar(50);index;not null"`
	Name           string `gorm:"type:varchar(256);not null"`
	Description    string `gorm:"type:text"`
}

// NewSchemaSurvey creates a database schema from a domain survey
func NewSchemaSurvey(s *interview.Survey) *Survey {
	return &Survey{
		PublicID: s.PublicID,
		Name:     s.Name,
		Type:     string(s.Type),
		Mode:     string(s.Mode),
	}
}

// EtoD converts database schema to domain survey (Entity to Domain)
func (s *Survey) EtoD() *interview.Survey {
	return &interview.Survey{
		PublicID: s.PublicID,
		Name:     s.Name,
		Type:     interview.SurveyType(s.Type),
		Mode:     interview.PolicyMode(s.Mode),
	}
}

// NewSchemaTheme creates a database schema from a domain theme
func NewSchemaTheme(t *interview.Theme) *Theme {
	return &Theme{
		PublicID:       t.PublicID,
		SurveyPublicID: t.SurveyID,
		Name:           t.Name,
		Description:    t.Description,
	}
}

// EtoD converts database schema to domain theme (Entity to Domain)
func (t *Theme) EtoD() interview.Theme {
	return interview.Theme{
		PublicID:    t.PublicID,
		SurveyID:    t.SurveyPublicID,
		Name:        t.Name,
		Description: t.Description,
	}
}
