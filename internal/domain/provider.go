package domain

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"pulse-server/internal/config"
	"pulse-server/internal/domain/enrichment"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/domain/prompt"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	prompt.NewProcessor,
	wire.Bind(new(prompt.Processor), new(*prompt.ProcessorImpl)),

	interview.NewSummaryGenerator,
	interview.NewService,

	ProvideScheduler,
	wire.Bind(new(enrichment.Scheduler), new(*enrichment.GoroutineScheduler)),
	enrichment.NewPipeline,
	wire.Bind(new(interview.Enricher), new(*enrichment.Pipeline)),
)

func ProvideScheduler(cfg *config.Config, log zerolog.Logger) *enrichment.GoroutineScheduler {
	return enrichment.NewGoroutineScheduler(cfg.EnrichmentTimeout, log)
}
