package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "acquisitions",
		Usage: "Authentication API: sign-up, sign-in and sign-out with cookie sessions",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
		DefaultCommand: "serve",
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("application failed")
	}
}
