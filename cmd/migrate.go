/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"feedsim/archive"

	"github.com/urfave/cli/v2"
)

// archivePath takes --archive or FEEDSIM_ARCHIVE, falling back to the
// [archive] path of the config file
func archivePath(ctx *cli.Context) (string, error) {
	cfg, err := loadSettings(ctx)
	if err != nil {
		return "", err
	}

	path := cfg.Archive.Path
	if path == "" {
		return "", errors.New("please specify an archive with --archive, FEEDSIM_ARCHIVE or [archive] path in the config file")
	}
	fmt.Fprintln(ctx.App.ErrWriter, "Archive configured: ", path)
	return path, nil
}

func archiveFlags() []cli.Flag {
	return []cli.Flag{configFlag(), archiveFlag()}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run archive migrations",
		Description: `Runs database migrations on the SQLite archive. Will create the archive if it does not exist.`,
		Flags:       archiveFlags(),
		Action: func(ctx *cli.Context) error {
			path, err := archivePath(ctx)
			if err != nil {
				return err
			}
			return archive.Migrate(path)
		},
	}
}

func rollbackCmd() *cli.Command {
	return &cli.Command{
		Name:        "rollback",
		Usage:       "Rollback archive migration",
		Description: `Rolls back the last archive migration`,
		Flags:       archiveFlags(),
		Action: func(ctx *cli.Context) error {
			path, err := archivePath(ctx)
			if err != nil {
				return err
			}
			return archive.Rollback(path)
		},
	}
}
