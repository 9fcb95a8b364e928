package turnrepo

import (
	"context"
	"encoding/json"

	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database/dbschema"
	"pulse-server/internal/infrastructure/database/transaction"
	"pulse-server/internal/utils/functional"
	"pulse-server/internal/utils/platformerrors"
)

// TurnGormRepository implements interview.TurnRepository using GORM
type TurnGormRepository struct {
	db *transaction.Database
}

var _ interview.TurnRepository = (*TurnGormRepository)(nil)

// NewTurnGormRepository creates a new turn repository
func NewTurnGormRepository(db *transaction.Database) *TurnGormRepository {
	return &TurnGormRepository{db: db}
}

// Create implements interview.TurnRepository.
func (repo *TurnGormRepository) Create(ctx context.Context, turn *interview.Turn) error {
	model := dbschema.NewSchemaTurn(turn)
	if err := repo.db.GetTx(ctx).Create(model).Error; err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to create turn")
	}
	turn.ID = model.ID
	turn.CreatedAt = model.CreatedAt
	return nil
}

// ListBySession implements interview.TurnRepository.
func (repo *TurnGormRepository) ListBySession(ctx context.Context, sessionID uint) ([]*interview.Turn, error) {
	var rows []dbschema.Turn
	err := repo.db.GetTx(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list turns")
	}
	return functional.Map(rows, func(item dbschema.Turn) *interview.Turn {
		return item.EtoD()
	}), nil
}

// CountBySession implements interview.TurnRepository.
func (repo *TurnGormRepository) CountBySession(ctx context.Context, sessionID uint) (int, error) {
	var count int64
	err := repo.db.GetTx(ctx).
		Model(&dbschema.Turn{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to count turns")
	}
	return int(count), nil
}

// ApplyClassification implements interview.TurnRepository. The update is a
// plain column set keyed by id, so re-applying identical values is harmless.
func (repo *TurnGormRepository) ApplyClassification(ctx context.Context, turnID uint, classification interview.TurnClassification) error {
	updates := map[string]any{
		"urgent": classification.Urgent,
	}
	// An unset label means the sentiment classifier did not run to completion;
	// the columns keep whatever an earlier pass stored.
	if classification.SentimentLabel != "" {
		updates["sentiment_label"] = classification.SentimentLabel
		updates["sentiment_score"] = classification.SentimentScore
	}
	if classification.ThemeID != nil {
		updates["theme_public_id"] = *classification.ThemeID
	}
	err := repo.db.GetTx(ctx).
		Model(&dbschema.Turn{}).
		Where("id = ?", turnID).
		Updates(updates).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to apply classification")
	}
	return nil
}

// ApplyDeepAnalysis implements interview.TurnRepository.
func (repo *TurnGormRepository) ApplyDeepAnalysis(ctx context.Context, turnID uint, urgencyScore int, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to encode deep analysis")
	}
	err = repo.db.GetTx(ctx).
		Model(&dbschema.Turn{}).
		Where("id = ?", turnID).
		Updates(map[string]any{
			"urgency_score": urgencyScore,
			"deep_analysis": raw,
		}).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to apply deep analysis")
	}
	return nil
}

// ApplySignals implements interview.TurnRepository.
func (repo *TurnGormRepository) ApplySignals(ctx context.Context, turnID uint, signals []interview.SemanticSignal) error {
	raw, err := json.Marshal(signals)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to encode signals")
	}
	err = repo.db.GetTx(ctx).
		Model(&dbschema.Turn{}).
		Where("id = ?", turnID).
		Update("signals", raw).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to apply signals")
	}
	return nil
}
