package dbschema

import (
	"encoding/json"

	"gorm.io/datatypes"

	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Turn{})
}

// Turn represents the database schema for interview turns
type Turn struct {
	BaseModel
	PublicID    string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	SessionID   uint    `gorm:"index:idx_turn_session;not null"`
	UserContent string  `gorm:"type:text;not null"`
	Question    string  `gorm:"type:text"`
	Empathy     *string `gorm:"type:text"`

	SentimentLabel *string        `gorm:"type:varchar(20)"`
	SentimentScore *int           `gorm:""`
	ThemePublicID  *string        `gorm:"type:varchar(50);index"`
	Urgent         bool           `gorm:"not null;default:false"`
	UrgencyScore   *int           `gorm:""`
	DeepAnalysis   datatypes.JSON `gorm:"type:jsonb"`
	Signals        datatypes.JSON `gorm:"type:jsonb"`
}

// NewSchemaTurn creates a database schema from a domain turn
func NewSchemaTurn(t *interview.Turn) *Turn {
	model := &Turn{
		BaseModel: BaseModel{
			ID:        t.ID,
			CreatedAt: t.CreatedAt,
		},
		PublicID:       t.PublicID,
		SessionID:      t.SessionID,
		UserContent:    t.UserContent,
		Question:       t.Question,
		Empathy:        t.Empathy,
		SentimentLabel: t.SentimentLabel,
		SentimentScore: t.SentimentScore,
		ThemePublicID:  t.ThemeID,
		Urgent:         t.Urgent,
		UrgencyScore:   t.UrgencyScore,
	}
	if t.DeepAnalysis != nil {
		if raw, err := json.Marshal(t.DeepAnalysis); err == nil {
			model.DeepAnalysis = raw
		}
	}
	if t.Signals != nil {
		if raw, err := json.Marshal(t.Signals); err == nil {
			model.Signals = raw
		}
	}
	return model
}

// EtoD converts database schema to domain turn (Entity to Domain)
func (t *Turn) EtoD() *interview.Turn {
	turn := &interview.Turn{
		ID:             t.ID,
		PublicID:       t.PublicID,
		SessionID:      t.SessionID,
		UserContent:    t.UserContent,
		Question:       t.Question,
		Empathy:        t.Empathy,
		SentimentLabel: t.SentimentLabel,
		SentimentScore: t.SentimentScore,
		ThemeID:        t.ThemePublicID,
		Urgent:         t.Urgent,
		UrgencyScore:   t.UrgencyScore,
		CreatedAt:      t.CreatedAt,
	}
	if len(t.DeepAnalysis) > 0 {
		_ = json.Unmarshal(t.DeepAnalysis, &turn.DeepAnalysis)
	}
	if len(t.Signals) > 0 {
		_ = json.Unmarshal(t.Signals, &turn.Signals)
	}
	return turn
}
