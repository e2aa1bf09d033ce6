/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "feedsim",
		Usage: "A simulated live news and market data feed",
		Description: `Fabricates short news and market items at random intervals and
		appends them to a capped JSON buffer file that other processes poll.

		The buffer keeps the most recent 100 records by default. Every record
		can also be archived to SQLite and the buffer can be served over HTTP.

		Flags can generally be set via environment variables, e.g.:

		--buffer => FEEDSIM_BUFFER=pathway_data.json
		--config => FEEDSIM_CONFIG=feedsim.toml
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"FEEDSIM_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format (text or json)",
				EnvVars: []string{"FEEDSIM_LOG_FORMAT"},
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			runCmd(),
			serveCmd(),
			generateCmd(),
			showCmd(),
			subscribeCmd(),
			initCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return cli.ShowAppHelp(ctx)
		},
	}
}

// Execute runs the app with the process arguments, loading a .env file first
// if one exists in the working directory
func Execute() {
	loadEnvFile()

	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadEnvFile loads .env files into the environment. A missing file is fine,
// anything else is reported but does not stop the app.
func loadEnvFile(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Error loading .env file")
	}
}

// setupLogging sends diagnostics to stderr so stdout stays free for data
func setupLogging(ctx *cli.Context) error {
	log.SetOutput(os.Stderr)

	level, err := log.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	switch ctx.String("log-format") {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format: %s", ctx.String("log-format"))
	}

	return nil
}
