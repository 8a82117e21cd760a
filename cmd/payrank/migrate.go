package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/payrank/internal/config"
	"github.com/Veraticus/payrank/internal/service"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup, so this is only needed to prepare
a fresh database ahead of time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			slog.Info("🗄️  Running database migrations...", "database", config.DatabasePath())
			return withStorage(cmd, func(_ context.Context, _ service.Storage) error {
				slog.Info("✅ Database migrations completed successfully!")
				return nil
			})
		},
	}
}
