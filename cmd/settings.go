/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"feedsim/archive"
	"feedsim/buffer"
	"feedsim/config"
	"feedsim/simulator"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const defaultConfigPath = "feedsim.toml"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   defaultConfigPath,
		Usage:   "Path to TOML configuration file",
		EnvVars: []string{"FEEDSIM_CONFIG"},
	}
}

func archiveFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "archive",
		Aliases: []string{"a"},
		Usage:   "SQLite archive file location, archiving is disabled when empty",
		EnvVars: []string{"FEEDSIM_ARCHIVE"},
	}
}

// settingsFlags are shared by every command that reads or writes the buffer
func settingsFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "buffer",
			Aliases: []string{"b"},
			Value:   config.DefaultBufferPath,
			Usage:   "Buffer file location",
			EnvVars: []string{"FEEDSIM_BUFFER"},
		},
		&cli.IntFlag{
			Name:    "capacity",
			Value:   config.DefaultCapacity,
			Usage:   "Maximum number of records kept in the buffer",
			EnvVars: []string{"FEEDSIM_CAPACITY"},
		},
		&cli.BoolFlag{
			Name:    "atomic-write",
			Usage:   "Write the buffer to a temp file and rename it into place",
			EnvVars: []string{"FEEDSIM_ATOMIC_WRITE"},
		},
		&cli.DurationFlag{
			Name:    "min-interval",
			Value:   config.DefaultMinInterval,
			Usage:   "Shortest wait between records",
			EnvVars: []string{"FEEDSIM_MIN_INTERVAL"},
		},
		&cli.DurationFlag{
			Name:    "max-interval",
			Value:   config.DefaultMaxInterval,
			Usage:   "Longest wait between records",
			EnvVars: []string{"FEEDSIM_MAX_INTERVAL"},
		},
		&cli.DurationFlag{
			Name:    "error-delay",
			Value:   config.DefaultErrorDelay,
			Usage:   "Wait after a failed cycle before trying again",
			EnvVars: []string{"FEEDSIM_ERROR_DELAY"},
		},
		archiveFlag(),
	}
}

// loadSettings reads the config file, if there is one, and applies any
// explicitly set flags or environment variables on top of it
func loadSettings(ctx *cli.Context) (*config.TomlConfig, error) {
	cfg := config.Defaults()

	path := ctx.String("config")
	if _, err := os.Stat(path); err == nil {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if ctx.IsSet("config") || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if ctx.IsSet("buffer") {
		cfg.Buffer.Path = ctx.String("buffer")
	}
	if ctx.IsSet("capacity") {
		cfg.Buffer.Capacity = ctx.Int("capacity")
	}
	if ctx.IsSet("atomic-write") {
		cfg.Buffer.AtomicWrite = ctx.Bool("atomic-write")
	}
	if ctx.IsSet("min-interval") {
		cfg.Schedule.MinInterval.Duration = ctx.Duration("min-interval")
	}
	if ctx.IsSet("max-interval") {
		cfg.Schedule.MaxInterval.Duration = ctx.Duration("max-interval")
	}
	if ctx.IsSet("error-delay") {
		cfg.Schedule.ErrorDelay.Duration = ctx.Duration("error-delay")
	}
	if ctx.IsSet("archive") {
		cfg.Archive.Path = ctx.String("archive")
	}
	if ctx.IsSet("addr") {
		cfg.Server.Addr = ctx.String("addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

func newStore(cfg *config.TomlConfig) *buffer.Store {
	return buffer.NewStore(cfg.Buffer.Path, buffer.WithAtomicWrite(cfg.Buffer.AtomicWrite))
}

// newSimulator wires the buffer store, the archive when configured, and any
// extra sinks. The returned cleanup closes the archive.
func newSimulator(ctx context.Context, cfg *config.TomlConfig, sinks ...simulator.Sink) (*simulator.Simulator, func(), error) {
	generator, err := simulator.NewGenerator(cfg.Catalog, simulator.RealClock{}, nil)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if cfg.Archive.Path != "" {
		a, err := archive.Open(ctx, cfg.Archive.Path)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("archive", cfg.Archive.Path).Info("Archiving records")
		sinks = append(sinks, a)
		cleanup = func() {
			if err := a.Close(); err != nil {
				log.WithError(err).Warn("Error closing archive")
			}
		}
	}

	sim := simulator.New(simulator.Config{
		Capacity:    cfg.Buffer.Capacity,
		MinInterval: cfg.Schedule.MinInterval.Duration,
		MaxInterval: cfg.Schedule.MaxInterval.Duration,
		ErrorDelay:  cfg.Schedule.ErrorDelay.Duration,
	}, generator, newStore(cfg), simulator.WithSinks(sinks...))

	return sim, cleanup, nil
}
