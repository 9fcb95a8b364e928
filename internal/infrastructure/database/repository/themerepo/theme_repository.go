package themerepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database/dbschema"
	"pulse-server/internal/infrastructure/database/transaction"
	"pulse-server/internal/utils/functional"
	"pulse-server/internal/utils/platformerrors"
)

// SurveyGormRepository implements interview.SurveyRepository using GORM
type SurveyGormRepository struct {
	db *transaction.Database
}

var _ interview.SurveyRepository = (*SurveyGormRepository)(nil)

// NewSurveyGormRepository creates a new survey repository
func NewSurveyGormRepository(db *transaction.Database) *SurveyGormRepository {
	return &SurveyGormRepository{db: db}
}

// Upsert implements interview.SurveyRepository.
func (repo *SurveyGormRepository) Upsert(ctx context.Context, survey *interview.Survey) error {
	model := dbschema.NewSchemaSurvey(survey)
	err := repo.db.GetTx(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "type", "mode", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to upsert survey")
	}
	return nil
}

// FindByPublicID implements interview.SurveyRepository.
func (repo *SurveyGormRepository) FindByPublicID(ctx context.Context, publicID string) (*interview.Survey, error) {
	var model dbschema.Survey
	if err := repo.db.GetTx(ctx).Where("public_id = ?", publicID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"survey not found", err, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to find survey by public ID")
	}
	return model.EtoD(), nil
}

// ThemeGormRepository implements interview.ThemeRepository using GORM
type ThemeGormRepository struct {
	db *transaction.Database
}

var _ interview.ThemeRepository = (*ThemeGormRepository)(nil)

// NewThemeGormRepository creates a new theme repository
func NewThemeGormRepository(db *transaction.Database) *ThemeGormRepository {
	return &ThemeGormRepository{db: db}
}

// Upsert implements interview.ThemeRepository.
func (repo *ThemeGormRepository) Upsert(ctx context.Context, theme *interview.Theme) error {
	model := dbschema.NewSchemaTheme(theme)
	err := repo.db.GetTx(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to upsert theme")
	}
	return nil
}

// FindByPublicIDs implements interview.ThemeRepository.
func (repo *ThemeGormRepository) FindByPublicIDs(ctx context.Context, publicIDs []string) ([]interview.Theme, error) {
	if len(publicIDs) == 0 {
		return nil, nil
	}
	var rows []dbschema.Theme
	err := repo.db.GetTx(ctx).
		Where("public_id IN ?", publicIDs).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to find themes")
	}
	return functional.Map(rows, func(item dbschema.Theme) interview.Theme {
		return item.EtoD()
	}), nil
}

// ListBySurvey implements interview.ThemeRepository.
func (repo *ThemeGormRepository) ListBySurvey(ctx context.Context, surveyID string) ([]interview.Theme, error) {
	var rows []dbschema.Theme
	err := repo.db.GetTx(ctx).
		Where("survey_public_id = ?", surveyID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list themes")
	}
	return functional.Map(rows, func(item dbschema.Theme) interview.Theme {
		return item.EtoD()
	}), nil
}
