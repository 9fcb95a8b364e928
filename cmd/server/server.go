package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pulse-server/internal/config"
	"pulse-server/internal/infrastructure/crontab"
	"pulse-server/internal/infrastructure/logger"
	"pulse-server/internal/infrastructure/observability"
	"pulse-server/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	crontab    *crontab.Crontab
}

func init() {
	logger.GetLogger()
	config.Load()
}

func (application *Application) Start() {
	background := context.Background()
	ctx, cancel := context.WithCancel(background)
	defer cancel()

	cfg := config.GetGlobal()

	var eg errgroup.Group
	eg.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", cfg.MetricsPort), mux)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.crontab.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.httpServer.Run()
		if err != nil {
			cancel()
		}
		return err
	})

	if err := eg.Wait(); err != nil {
		panic(err)
	}
}

func main() {
	ctx := context.Background()
	log := logger.GetLogger()

	cfg := config.GetGlobal()
	if cfg == nil {
		log.Fatal().Msg("config not loaded")
	}

	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}

	dataInitializer, err := CreateDataInitializer()
	if err != nil {
		log.Fatal().Err(err).Msg("create data initializer")
	}

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	if err := dataInitializer.Install(ctx); err != nil {
		log.Fatal().Err(err).Msg("install survey catalog")
	}

	application.Start()
}
