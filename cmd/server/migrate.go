package main

import (
	"os"

	"acquisitions/internal/config"
	"acquisitions/internal/logutil"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Action: func(cctx *cli.Context) error {
			_ = config.LoadDotEnv()
			dbCfg, err := config.LoadDBConfig()
			if err != nil {
				return err
			}
			logger := logutil.New(os.Getenv("LOG_LEVEL"), true)
			logutil.SetDefault(logger)

			pool, err := config.ConnectDB(cctx.Context, dbCfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()
			if err := config.RunMigrations(cctx.Context, db); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}
