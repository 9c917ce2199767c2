package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/trade-atlas/pkg/logger"
	"github.com/de-tools/trade-atlas/pkg/metrics"
	"github.com/de-tools/trade-atlas/pkg/server"
	"github.com/de-tools/trade-atlas/pkg/services/config"
	"github.com/de-tools/trade-atlas/pkg/services/report"
	"github.com/de-tools/trade-atlas/pkg/store/duckdb/history"
	"github.com/de-tools/trade-atlas/pkg/store/source"
)

var (
	cfgPath string
	loader  = config.NewLoader()
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve trade balance reports over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a settings file (yaml, toml or json)")
	if err := loader.BindFlags(rootCmd.Flags(),
		config.KeyInput,
		config.KeyClassification,
		config.KeyYear,
		config.KeyCategory,
		config.KeyCodeDigits,
		config.KeyBlocFile,
		config.KeyWorkers,
		config.KeyLogLevel,
		config.KeyHistoryDB,
		config.KeyServerAddr,
		config.KeyReportTimeout,
		config.KeyCacheTTL,
	); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	settings, err := loader.Load(cfgPath)
	if err != nil {
		return err
	}

	log, err := logger.New(settings.LogLevel)
	if err != nil {
		return err
	}

	coverage, err := settings.Coverage()
	if err != nil {
		return err
	}

	var store history.Store
	if settings.HistoryDB != "" {
		s, db, err := history.Open(settings.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer db.Close()
		store = s
	}

	recorder := metrics.NewRecorder()
	service, err := report.NewService(report.Options{
		Input:          settings.Input,
		Classification: settings.Classification,
		Criteria:       settings.Criteria(),
		Coverage:       coverage,
		Workers:        settings.Workers,
		Sources:        source.NewDefaultRegistry(),
		History:        store,
		Metrics:        recorder,
	})
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}

	log.Info().
		Str("input", settings.Input).
		Str("year", settings.Year).
		Str("category", settings.Category).
		Int("members", len(coverage.Members())).
		Msg("configuration loaded")

	api := server.NewWebAPI(log, server.Config{
		Addr:          settings.Server.Addr,
		ReportTimeout: settings.Server.ReportTimeout,
		CacheTTL:      settings.Server.CacheTTL,
		Dependencies: server.Dependencies{
			Generator: service,
			History:   store,
			Metrics:   recorder,
		},
	})

	if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
