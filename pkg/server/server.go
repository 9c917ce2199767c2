package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/de-tools/trade-atlas/pkg/handlers/report"
	"github.com/de-tools/trade-atlas/pkg/metrics"
	"github.com/de-tools/trade-atlas/pkg/services/report"
	"github.com/de-tools/trade-atlas/pkg/store/duckdb/history"

	tradeatlasmiddleware "github.com/de-tools/trade-atlas/pkg/server/middleware"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          http.Handler
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Generator report.Generator
	Logger    zerolog.Logger
	// History and Metrics are optional.
	History history.Store
	Metrics *metrics.Recorder
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	ReportTimeout   time.Duration
	CacheTTL        time.Duration
	Dependencies    Dependencies
}

// ConfigureRouter mounts the report API under /api/v1 and, when a recorder
// is configured, the Prometheus endpoint at /metrics.
func ConfigureRouter(config Config) http.Handler {
	deps := config.Dependencies
	reportHandler := handlers.NewHandler(deps.Generator, handlers.Options{
		ReportTimeout: config.ReportTimeout,
		CacheTTL:      config.CacheTTL,
		History:       deps.History,
	})

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(tradeatlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports", reportHandler.GetSummary)
		r.Get("/reports/{key}", reportHandler.GetReport)
		r.Get("/runs", reportHandler.ListRuns)
		r.Get("/runs/{run}/reports", reportHandler.GetRunReports)
	})

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	router := ConfigureRouter(config)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
