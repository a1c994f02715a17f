// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-accounts/internal/platform/ctxutil"
	pgstore "github.com/taibuivan/yomira-accounts/internal/platform/postgres"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/internal/users/auth"
)

// NewPurgeResetTokensCmd creates the purge-reset-tokens subcommand.
func NewPurgeResetTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-reset-tokens",
		Short: "Clear password reset tokens past their window",
		Long: `Clear every password reset token issued more than RESET_TOKEN_TTL ago.
The API process runs the same purge on a ticker.`,
		RunE: runPurgeResetTokens,
	}
}

func runPurgeResetTokens(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	ctx := ctxutil.WithLogger(cmd.Context(), logger)

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger, pgstore.WithMaxConns(1), pgstore.WithStatementTimeout(0))
	if err != nil {
		return err
	}
	defer pool.Close()

	service := auth.NewService(auth.Dependencies{
		Accounts: account.NewPostgresStore(pool),
		Settings: auth.Settings{ResetTokenTTL: cfg.ResetTokenTTL},
	})

	purged, err := service.PurgeExpiredResetTokens(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("purged %d reset token(s)\n", purged)
	return nil
}
