package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"orders/cmd"

	"github.com/labstack/gommon/log"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "orders",
		Usage: "order lifecycle service",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files loaded before reading the environment",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API and publish order events",
				Action: func(c *cli.Context) error {
					cfg, err := cmd.LoadConfig(c.StringSlice("env-file")...)
					if err != nil {
						return err
					}
					return cmd.Serve(c.Context, cfg, cmd.NewLogger(cfg))
				},
			},
			{
				Name:  "notify",
				Usage: "consume order events and send notifications",
				Action: func(c *cli.Context) error {
					cfg, err := cmd.LoadConfig(c.StringSlice("env-file")...)
					if err != nil {
						return err
					}
					return cmd.Notify(c.Context, cfg, cmd.NewLogger(cfg))
				},
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations",
				Action: func(c *cli.Context) error {
					cfg, err := cmd.LoadConfig(c.StringSlice("env-file")...)
					if err != nil {
						return err
					}
					return cmd.Migrate(c.Context, cfg, cmd.NewLogger(cfg))
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
