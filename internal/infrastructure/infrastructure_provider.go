package infrastructure

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"pulse-server/internal/config"
	"pulse-server/internal/domain"
	"pulse-server/internal/domain/enrichment"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/domain/prompt"
	"pulse-server/internal/infrastructure/auth"
	"pulse-server/internal/infrastructure/crontab"
	"pulse-server/internal/infrastructure/database"
	"pulse-server/internal/infrastructure/database/repository"
	"pulse-server/internal/infrastructure/database/transaction"
	"pulse-server/internal/infrastructure/gateway"
	"pulse-server/internal/infrastructure/logger"
	"pulse-server/internal/infrastructure/memstore"
	"pulse-server/internal/infrastructure/metrics"
	"pulse-server/internal/infrastructure/ratelimit"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideJWTValidator provides a JWT validator
func ProvideJWTValidator(cfg *config.Config, log zerolog.Logger) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(
		context.Background(),
		cfg.JWKSURL,
		cfg.Issuer,
		cfg.Audience,
		cfg.RefreshJWKSInterval,
		cfg.AuthClockSkew,
		log,
	)
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(cfg.GetDatabaseWriteDSN(), cfg.GetDatabaseReadDSN())
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		log.Info().Msg("Running database migrations...")
		if err := database.Migration(db); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
		log.Info().Msg("Database migrations completed successfully")
	}

	return db, nil
}

// ProvideTransactionDatabase provides a transaction database wrapper
func ProvideTransactionDatabase(db *gorm.DB) *transaction.Database {
	return transaction.NewDatabase(db)
}

// ProvideRateLimiter provides the two-tier request limiter
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.NewLimiter(cfg, ratelimit.SystemClock())
}

// ProvidePreviewService assembles a second interview service over the
// in-memory preview stores. It shares the model gateway, prompt processor
// and metrics with the authenticated service but runs its own enrichment
// pipeline against the preview turn store.
func ProvidePreviewService(
	store *memstore.Store,
	chat *gateway.ChatClient,
	prompts prompt.Processor,
	summaries *interview.SummaryGenerator,
	scheduler enrichment.Scheduler,
	escalations enrichment.EscalationLogger,
	audits enrichment.AuditLogger,
	recorder *metrics.Recorder,
	log zerolog.Logger,
) *domain.PreviewService {
	turns := memstore.NewTurnStore(store)
	pipeline := enrichment.NewPipeline(chat, turns, escalations, audits, scheduler, recorder, log)
	service := interview.NewService(
		memstore.NewSessionStore(store),
		turns,
		memstore.NewThemeStore(store),
		chat,
		prompts,
		summaries,
		pipeline,
		recorder,
		log,
	)
	return &domain.PreviewService{Service: service}
}

// Infrastructure bundles the pieces the HTTP server needs at startup.
type Infrastructure struct {
	DB           *gorm.DB
	JWTValidator *auth.JWTValidator
	RateLimiter  *ratelimit.Limiter
	PreviewStore *memstore.Store
	Logger       zerolog.Logger
}

func NewInfrastructure(
	db *gorm.DB,
	jwtValidator *auth.JWTValidator,
	rateLimiter *ratelimit.Limiter,
	previewStore *memstore.Store,
	logger zerolog.Logger,
) *Infrastructure {
	return &Infrastructure{
		DB:           db,
		JWTValidator: jwtValidator,
		RateLimiter:  rateLimiter,
		PreviewStore: previewStore,
		Logger:       logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// Database
	ProvideDatabase,
	ProvideTransactionDatabase,

	// Repositories
	repository.RepositoryProvider,

	// Model gateway
	gateway.NewChatClient,
	wire.Bind(new(interview.ModelGateway), new(*gateway.ChatClient)),

	// Metrics recorder
	metrics.NewRecorder,
	wire.Bind(new(interview.MetricsRecorder), new(*metrics.Recorder)),
	wire.Bind(new(enrichment.MetricsRecorder), new(*metrics.Recorder)),

	// Logger
	logger.GetLogger,

	// Auth
	ProvideJWTValidator,

	// Rate limiting
	ProvideRateLimiter,

	// Preview store and the memory-backed service over it
	memstore.NewStore,
	ProvidePreviewService,

	// Crontab for background sweeps
	crontab.NewCrontab,

	// Infrastructure struct
	NewInfrastructure,
)
