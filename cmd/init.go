/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"feedsim/config"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Interactively write a configuration file",
		Description: `Asks for the buffer location, capacity, timings and archive path and
writes them, together with the default catalog, to a TOML file.

Edit the [catalog] section of the written file to change the sources,
titles and snippets records are generated from.`,
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing configuration file",
			},
		},
		Action: func(ctx *cli.Context) error {
			path := ctx.String("config")
			if _, err := os.Stat(path); err == nil && !ctx.Bool("force") {
				return fmt.Errorf("%s already exists, use --force to overwrite it", path)
			}

			cfg := config.Defaults()

			bufferPath, err := prompt.New().Ask("Buffer file:").Input(cfg.Buffer.Path)
			if err != nil {
				return err
			}

			capacity, err := askInt("Buffer capacity:", cfg.Buffer.Capacity)
			if err != nil {
				return err
			}

			minInterval, err := askDuration("Shortest wait between records:", cfg.Schedule.MinInterval.Duration)
			if err != nil {
				return err
			}

			maxInterval, err := askDuration("Longest wait between records:", cfg.Schedule.MaxInterval.Duration)
			if err != nil {
				return err
			}

			archivePath, err := prompt.New().Ask("SQLite archive (empty to disable):").Input("")
			if err != nil {
				return err
			}

			cfg.Buffer.Path = bufferPath
			cfg.Buffer.Capacity = capacity
			cfg.Schedule.MinInterval.Duration = minInterval
			cfg.Schedule.MaxInterval.Duration = maxInterval
			cfg.Archive.Path = archivePath

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := cfg.SaveConfig(path); err != nil {
				return err
			}

			fmt.Fprintln(ctx.App.Writer, "Wrote configuration to", path)
			return nil
		},
	}
}

func askInt(question string, value int) (int, error) {
	answer, err := prompt.New().Ask(question).Input(strconv.Itoa(value))
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.Atoi(answer)
	if err != nil {
		return 0, errors.New("please enter a whole number")
	}
	return parsed, nil
}

func askDuration(question string, value time.Duration) (time.Duration, error) {
	answer, err := prompt.New().Ask(question).Input(value.String())
	if err != nil {
		return 0, err
	}
	parsed, err := time.ParseDuration(answer)
	if err != nil {
		return 0, fmt.Errorf("please enter a duration such as 30s: %w", err)
	}
	return parsed, nil
}
