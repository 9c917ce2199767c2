package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/trade-atlas/pkg/logger"
	"github.com/de-tools/trade-atlas/pkg/store/duckdb/history"
)

// FlagConfig is the persistent flag naming an optional settings file.
const FlagConfig = "config"

func configFile(cmd *cobra.Command) string {
	if f := cmd.Flag(FlagConfig); f != nil {
		return f.Value.String()
	}
	return ""
}

func withLogger(ctx context.Context, level string) (context.Context, error) {
	log, err := logger.New(level)
	if err != nil {
		return nil, err
	}
	return log.WithContext(ctx), nil
}

// openHistory returns a nil store when path is empty.
func openHistory(path string) (history.Store, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	store, db, err := history.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return store, func() { closeDB(db) }, nil
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}
