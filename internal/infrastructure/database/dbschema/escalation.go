package dbschema

import (
	"pulse-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Escalation{})
	database.RegisterSchemaForAutoMigrate(AuditRecord{})
}

// Escalation represents the database schema for urgent-turn escalations. One
// row per turn at most, enforced by the unique index so a retried enrichment
// run cannot duplicate it.
type Escalation struct {
	BaseModel
	SessionPublicID string `gorm:"type:varchar(50);index;not null"`
	TurnPublicID    string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Reason          string `gorm:"type:text;not null"`
	UrgencyScore    int    `gorm:"not null;default:0"`
}

// AuditRecord represents the database schema for the compliance trail of
// authenticated conversations.
type AuditRecord struct {
	BaseModel
	SessionPublicID string `gorm:"type:varchar(50);index;not null"`
	TurnPublicID    string `gorm:"type:varchar(50);uniqueIndex;not null"`
	OwnerID         string `gorm:"type:varchar(128);index;not null"`
	Action          string `gorm:"type:varchar(50);not null"`
}
