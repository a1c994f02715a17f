// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// cliConfig is the subset of the server configuration the CLI needs. It is
// parsed separately so maintenance commands do not require Redis or SMTP.
type cliConfig struct {
	DatabaseURL   string        `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string        `env:"MIGRATION_PATH"  envDefault:"./migrations"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"24h"`
}

func loadCLIConfig() (*cliConfig, error) {
	cfg := &cliConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("accountctl: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// NewRootCmd creates the root command for the accountctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accountctl",
		Short: "Maintenance tooling for the accounts service",
		Long: `accountctl runs schema migrations, clears lapsed password reset
tokens and checks candidate passwords against the policy.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewPurgeResetTokensCmd())
	cmd.AddCommand(NewCheckPasswordCmd())

	return cmd
}

// commandLogger writes text logs to the command's error stream.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}
