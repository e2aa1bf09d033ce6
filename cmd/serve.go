/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedsim/config"
	"feedsim/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Generate records and serve the buffer over HTTP",
		Description: `Runs the feed simulator and an HTTP server side by side.

The server exposes the buffer at /records, the newest record at
/records/latest, per source counts at /stats, a server-sent event stream of
new records at /records/sse and Prometheus metrics at /metrics.

The buffer file is still written on every cycle, so file based consumers
keep working.`,
		Flags: append(settingsFlags(),
			&cli.StringFlag{
				Name:    "addr",
				Value:   config.DefaultServerAddr,
				Usage:   "Address for the HTTP server to listen on",
				EnvVars: []string{"FEEDSIM_ADDR"},
			},
		),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			serveCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			broadcaster := server.NewBroadcaster()

			sim, cleanup, err := newSimulator(serveCtx, cfg, broadcaster)
			if err != nil {
				return err
			}
			defer cleanup()

			app := server.Server(&server.ServerConfig{
				Buffer:      newStore(cfg),
				Broadcaster: broadcaster,
			})

			g, gctx := errgroup.WithContext(serveCtx)

			g.Go(func() error {
				err := sim.Run(gctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})

			g.Go(func() error {
				log.WithField("addr", cfg.Server.Addr).Info("Starting server...")
				return app.Listen(cfg.Server.Addr)
			})

			g.Go(func() error {
				<-gctx.Done()
				log.Info("Gracefully shutting down...")
				broadcaster.Shutdown()
				return app.ShutdownWithTimeout(60 * time.Second)
			})

			if err := g.Wait(); err != nil {
				return err
			}

			log.Info("Done!")
			return nil
		},
	}
}
