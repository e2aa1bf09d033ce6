/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"feedsim/archive"

	"github.com/urfave/cli/v2"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the archive",
		Description: `Tidy up the archive by removing records that are old.

		Remove records that are older than 90 days from the archive.
		This is to keep the archive size down. The buffer file is not touched.`,
		Flags: append(archiveFlags(),
			&cli.DurationFlag{
				Name:  "older-than",
				Value: 90 * 24 * time.Hour,
				Usage: "Remove records created longer ago than this",
			},
		),
		Action: func(ctx *cli.Context) error {
			path, err := archivePath(ctx)
			if err != nil {
				return err
			}

			a, err := archive.Open(ctx.Context, path)
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.Tidy(ctx.Context, time.Now().Add(-ctx.Duration("older-than")))
			if err != nil {
				return err
			}

			fmt.Fprintf(ctx.App.Writer, "Removed %d records\n", removed)
			return nil
		},
	}
}
