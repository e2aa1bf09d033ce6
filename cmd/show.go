/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"feedsim/buffer"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the buffer contents",
		Description: `Reads the buffer file and prints it as a pretty printed JSON array,
oldest record first. A missing or malformed buffer prints an empty array.`,
		Flags: append(settingsFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Only print the newest records, 0 prints all",
			},
		),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			records, err := newStore(cfg).Load(ctx.Context)
			if err != nil {
				if !errors.Is(err, buffer.ErrMalformed) {
					return err
				}
				log.WithError(err).Warn("Buffer is malformed")
			}

			if limit := ctx.Int("limit"); limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}

			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(ctx.App.Writer, string(data))
			return err
		},
	}
}
