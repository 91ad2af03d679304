package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"arenaapp/cmd"
	"arenaapp/database"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "arena",
		Usage: "stake-weighted debate contests with escrowed wagers",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "migrate",
						Usage:   "apply pending migrations before serving",
						Sources: cli.EnvVars("ARENA_MIGRATE_ON_START"),
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return cmd.Serve(ctx, cmd.ServeOptions{Migrate: c.Bool("migrate")})
				},
			},
			{
				Name:  "init-arena",
				Usage: "create the arena configuration if it does not exist",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return cmd.InitArena(ctx)
				},
			},
			{
				Name:  "migrate",
				Usage: "manage database migrations",
				Commands: []*cli.Command{
					{
						Name: "up",
						Action: func(context.Context, *cli.Command) error {
							return database.MigrateUp()
						},
					},
					{
						Name:      "down",
						ArgsUsage: "[steps]",
						Action: func(_ context.Context, c *cli.Command) error {
							steps := "1"
							if c.Args().Len() > 0 {
								steps = c.Args().First()
							}
							return database.MigrateDown(steps)
						},
					},
					{
						Name: "status",
						Action: func(context.Context, *cli.Command) error {
							return database.MigrateStatus()
						},
					},
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(fmt.Errorf("arena: %w", err))
	}
}
