package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"pulse-server/internal/config"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/utils/platformerrors"
)

type DataInitializer struct {
	surveys interview.SurveyRepository
	themes  interview.ThemeRepository
	logger  zerolog.Logger
}

// Install upserts the survey catalogue from the bootstrap file. Existing
// surveys and themes are updated in place so the file stays authoritative.
func (d *DataInitializer) Install(ctx context.Context) error {
	cfg := config.GetGlobal()

	catalog, err := config.LoadSurveyCatalog(cfg.SurveyCatalogFile)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load survey catalog")
	}
	if len(catalog.Surveys) == 0 {
		d.logger.Warn().Str("file", cfg.SurveyCatalogFile).Msg("no surveys in catalog, starting empty")
		return nil
	}

	for i := range catalog.Surveys {
		entry := catalog.Surveys[i]
		if err := d.installSurvey(ctx, entry); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
				fmt.Sprintf("failed to bootstrap survey %q", entry.ID))
		}
	}

	d.logger.Info().Int("surveys", len(catalog.Surveys)).Msg("survey catalog installed")
	return nil
}

func (d *DataInitializer) installSurvey(ctx context.Context, entry config.SurveyCatalogEntry) error {
	survey := &interview.Survey{
		PublicID: entry.ID,
		Name:     entry.Name,
		Type:     interview.SurveyType(entry.Type),
		Mode:     interview.PolicyMode(entry.Mode),
	}
	if err := d.surveys.Upsert(ctx, survey); err != nil {
		return err
	}

	for _, item := range entry.Themes {
		theme := &interview.Theme{
			PublicID:    item.ID,
			SurveyID:    entry.ID,
			Name:        item.Name,
			Description: item.Description,
		}
		if err := d.themes.Upsert(ctx, theme); err != nil {
			return err
		}
	}
	return nil
}
