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

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Generate records into the buffer file until stopped",
		Description: `Waits a random interval, generates a record, appends it to the
buffer file and trims the buffer to its capacity. Repeats until interrupted.

Errors while reading or writing the buffer are logged and retried after
a fixed delay. The process never exits because of a failed cycle.`,
		Flags: settingsFlags(),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			sim, cleanup, err := newSimulator(runCtx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			log.WithField("buffer", cfg.Buffer.Path).Info("Buffer configured")

			if err := sim.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			log.Info("Stopped feed simulator")
			return nil
		},
	}
}
