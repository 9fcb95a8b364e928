package sessionrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database/dbschema"
	"pulse-server/internal/infrastructure/database/transaction"
	"pulse-server/internal/utils/platformerrors"
)

// SessionGormRepository implements interview.SessionRepository using GORM
type SessionGormRepository struct {
	db *transaction.Database
}

var _ interview.SessionRepository = (*SessionGormRepository)(nil)

// NewSessionGormRepository creates a new session repository
func NewSessionGormRepository(db *transaction.Database) *SessionGormRepository {
	return &SessionGormRepository{db: db}
}

// Create implements interview.SessionRepository.
func (repo *SessionGormRepository) Create(ctx context.Context, session *interview.Session) error {
	model := dbschema.NewSchemaSession(session)
	if err := repo.db.GetTx(ctx).Create(model).Error; err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to create session")
	}
	session.ID = model.ID
	session.CreatedAt = model.CreatedAt
	session.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByPublicID implements interview.SessionRepository.
func (repo *SessionGormRepository) FindByPublicID(ctx context.Context, publicID string) (*interview.Session, error) {
	var model dbschema.Session
	if err := repo.db.GetTx(ctx).Where("public_id = ?", publicID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"session not found", err, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to find session by public ID")
	}
	return model.EtoD(), nil
}

// Update implements interview.SessionRepository.
func (repo *SessionGormRepository) Update(ctx context.Context, session *interview.Session) error {
	model := dbschema.NewSchemaSession(session)
	if err := repo.db.GetTx(ctx).Save(model).Error; err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to update session")
	}
	session.UpdatedAt = model.UpdatedAt
	return nil
}
