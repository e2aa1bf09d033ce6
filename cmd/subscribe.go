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

	"feedsim/buffer"
	"feedsim/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func subscribeCmd() *cli.Command {
	return &cli.Command{
		Name:  "subscribe",
		Usage: "Log all new buffer records to the command line",
		Description: `Polls the buffer file and prints every record that was not there
on the previous poll.

Returns each record as a JSON object on a single line. Use a tool like jq to
process the output.

Prints all other log messages to stderr.`,
		Flags: append(settingsFlags(),
			&cli.DurationFlag{
				Name:  "poll-interval",
				Value: 5 * time.Second,
				Usage: "How often to read the buffer file",
			},
			&cli.BoolFlag{
				Name:  "from-start",
				Usage: "Print the records already in the buffer first",
			},
		),
		Action: func(ctx *cli.Context) error {
			interval := ctx.Duration("poll-interval")
			if interval <= 0 {
				return errors.New("poll-interval must be positive")
			}

			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			subCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := newStore(cfg)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			log.WithField("buffer", cfg.Buffer.Path).Info("Subscribing to buffer...")

			seen := map[string]bool{}
			if !ctx.Bool("from-start") {
				records, err := pollBuffer(subCtx, store)
				if err != nil && !errors.Is(err, buffer.ErrMalformed) {
					return err
				}
				seen = idSet(records)
			}

			for {
				records, err := pollBuffer(subCtx, store)
				switch {
				case subCtx.Err() != nil:
					log.Info("Stopping subscription")
					return nil
				case errors.Is(err, buffer.ErrMalformed):
					// The writer may be halfway through rewriting the file
					log.WithError(err).Debug("Skipping malformed buffer")
				case err != nil:
					log.WithError(err).Error("Error reading buffer")
				default:
					var fresh []models.Record
					fresh, seen = diffRecords(records, seen)
					for _, record := range fresh {
						if err := printRecord(ctx.App.Writer, &record); err != nil {
							return err
						}
					}
				}

				select {
				case <-subCtx.Done():
					log.Info("Stopping subscription")
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}

func pollBuffer(ctx context.Context, store *buffer.Store) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return store.Load(ctx)
}

func idSet(records []models.Record) map[string]bool {
	return lo.Associate(records, func(r models.Record) (string, bool) {
		return r.Id, true
	})
}

// diffRecords returns the records missing from the previous poll and the id
// set to compare the next poll against
func diffRecords(records []models.Record, seen map[string]bool) ([]models.Record, map[string]bool) {
	return unseen(records, seen), idSet(records)
}

// unseen returns the records whose id was not in the previous poll, in
// buffer order
func unseen(records []models.Record, seen map[string]bool) []models.Record {
	return lo.Filter(records, func(r models.Record, _ int) bool {
		return !seen[r.Id]
	})
}
