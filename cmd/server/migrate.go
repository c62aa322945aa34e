package main

import (
	"log/slog"

	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.InitDB(config.Load())
			if err != nil {
				return err
			}
			defer config.CloseDB(db)
			return config.Migrate(db)
		},
	}
}

func newSeedTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-tags",
		Short: "Insert the built-in profile tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.InitDB(config.Load())
			if err != nil {
				return err
			}
			defer config.CloseDB(db)

			tags := services.NewTagService(repositories.NewPostgresTagRepository(db))
			if err := tags.SeedSystemTags(cmd.Context()); err != nil {
				return err
			}
			slog.Info("System tags seeded", "count", len(services.SystemTags))
			return nil
		},
	}
}
