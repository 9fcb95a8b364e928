package repository

import (
	"github.com/google/wire"

	"pulse-server/internal/domain/enrichment"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/database/repository/auditrepo"
	"pulse-server/internal/infrastructure/database/repository/sessionrepo"
	"pulse-server/internal/infrastructure/database/repository/themerepo"
	"pulse-server/internal/infrastructure/database/repository/turnrepo"
)

var RepositoryProvider = wire.NewSet(
	sessionrepo.NewSessionGormRepository,
	wire.Bind(new(interview.SessionRepository), new(*sessionrepo.SessionGormRepository)),

	turnrepo.NewTurnGormRepository,
	wire.Bind(new(interview.TurnRepository), new(*turnrepo.TurnGormRepository)),

	themerepo.NewSurveyGormRepository,
	wire.Bind(new(interview.SurveyRepository), new(*themerepo.SurveyGormRepository)),
	themerepo.NewThemeGormRepository,
	wire.Bind(new(interview.ThemeRepository), new(*themerepo.ThemeGormRepository)),

	auditrepo.NewAuditGormRepository,
	wire.Bind(new(enrichment.EscalationLogger), new(*auditrepo.AuditGormRepository)),
	wire.Bind(new(enrichment.AuditLogger), new(*auditrepo.AuditGormRepository)),
)
