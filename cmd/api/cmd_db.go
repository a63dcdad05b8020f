// AngelaMos | 2026
// cmd_db.go

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/icetruck/internal/auth"
	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/user"
)

var pruneGrace time.Duration

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootConfig()
		if err != nil {
			return err
		}

		db, err := core.NewDatabase(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		n, err := core.Migrate(cmd.Context(), db.DB, logger)
		if err != nil {
			return err
		}

		logger.Info("migrations complete", "applied", n)
		return nil
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the ES256 key pair used to sign access tokens",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, logger, err := bootConfig()
		if err != nil {
			return err
		}

		err = auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
		if err != nil {
			return err
		}

		logger.Info("key pair written",
			"private", cfg.JWT.PrivateKeyPath,
			"public", cfg.JWT.PublicKeyPath,
		)
		return nil
	},
}

var pruneTokensCmd = &cobra.Command{
	Use:   "prune-tokens",
	Short: "Delete refresh tokens that expired before the grace period",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		jwtManager, err := auth.NewJWTManager(cfg.JWT)
		if err != nil {
			return err
		}

		svc := auth.NewService(
			auth.NewRepository(db.DB),
			jwtManager,
			user.NewService(user.NewRepository(db.DB)),
			nil,
			logger,
		)

		_, err = svc.PruneExpiredTokens(ctx, pruneGrace)
		return err
	},
}

func init() {
	pruneTokensCmd.Flags().DurationVar(
		&pruneGrace,
		"grace",
		24*time.Hour,
		"keep tokens that expired less than this long ago",
	)
}
