/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"feedsim/models"
	"feedsim/simulator"

	"github.com/urfave/cli/v2"
)

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Print freshly generated records to the command line",
		Description: `Generates records immediately, without waiting between them, and
prints each one as a JSON object on a single line.

With --write every record is also merged into the buffer file, exactly as
the run command would do it.`,
		Flags: append(settingsFlags(),
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "Number of records to generate",
			},
			&cli.BoolFlag{
				Name:  "write",
				Usage: "Also append the records to the buffer file",
			},
		),
		Action: func(ctx *cli.Context) error {
			count := ctx.Int("count")
			if count < 1 {
				return errors.New("count must be at least 1")
			}

			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			if !ctx.Bool("write") {
				generator, err := simulator.NewGenerator(cfg.Catalog, simulator.RealClock{}, nil)
				if err != nil {
					return err
				}
				for i := 0; i < count; i++ {
					record := generator.Generate()
					if err := printRecord(ctx.App.Writer, &record); err != nil {
						return err
					}
				}
				return nil
			}

			sim, cleanup, err := newSimulator(ctx.Context, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			for i := 0; i < count; i++ {
				record, err := sim.RunCycle(ctx.Context)
				if err != nil {
					return err
				}
				if err := printRecord(ctx.App.Writer, &record); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// printRecord writes a record as a single line of JSON
func printRecord(w io.Writer, record *models.Record) error {
	recordJson, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(recordJson))
	return err
}
