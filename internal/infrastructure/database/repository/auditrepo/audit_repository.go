package auditrepo

import (
	"context"

	"gorm.io/gorm/clause"

	"pulse-server/internal/domain/enrichment"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database/dbschema"
	"pulse-server/internal/infrastructure/database/transaction"
	"pulse-server/internal/utils/platformerrors"
)

// AuditGormRepository implements the enrichment escalation and audit sinks
// using GORM. Both writes are insert-or-ignore on the turn id so a retried
// pipeline run cannot duplicate rows.
type AuditGormRepository struct {
	db *transaction.Database
}

var (
	_ enrichment.EscalationLogger = (*AuditGormRepository)(nil)
	_ enrichment.AuditLogger      = (*AuditGormRepository)(nil)
)

// NewAuditGormRepository creates the escalation/audit repository
func NewAuditGormRepository(db *transaction.Database) *AuditGormRepository {
	return &AuditGormRepository{db: db}
}

// LogEscalation implements enrichment.EscalationLogger.
func (repo *AuditGormRepository) LogEscalation(ctx context.Context, session *interview.Session, turn *interview.Turn, reason string, urgencyScore int) error {
	model := &dbschema.Escalation{
		SessionPublicID: session.PublicID,
		TurnPublicID:    turn.PublicID,
		Reason:          reason,
		UrgencyScore:    urgencyScore,
	}
	err := repo.db.GetTx(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "turn_public_id"}},
			DoNothing: true,
		}).
		Create(model).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to log escalation")
	}
	return nil
}

// LogTurnProcessed implements enrichment.AuditLogger.
func (repo *AuditGormRepository) LogTurnProcessed(ctx context.Context, session *interview.Session, turn *interview.Turn) error {
	model := &dbschema.AuditRecord{
		SessionPublicID: session.PublicID,
		TurnPublicID:    turn.PublicID,
		OwnerID:         session.OwnerID,
		Action:          "turn_processed",
	}
	err := repo.db.GetTx(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "turn_public_id"}},
			DoNothing: true,
		}).
		Create(model).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to write audit record")
	}
	return nil
}
