// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-accounts/internal/platform/migration"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Apply all pending migrations from MIGRATION_PATH to DATABASE_URL.`,
		RunE:  runMigrate,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE:  runMigrateStatus,
	})
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}

			cmd.Printf("Reverting %d migration(s)...\n", steps)
			if err := migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, commandLogger(cmd)); err != nil {
				return err
			}

			cmd.Println("Revert completed")
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	cmd.Println("Running migrations...")
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, commandLogger(cmd)); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	version, dirty, err := migration.Status(cfg.DatabaseURL, cfg.MigrationPath)
	if err != nil {
		return err
	}

	cmd.Printf("version: %d\n", version)
	if dirty {
		cmd.Println("state: dirty (a migration failed midway, fix it and force the version)")
	} else {
		cmd.Println("state: clean")
	}
	return nil
}
