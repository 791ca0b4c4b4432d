package main

import (
	"path/filepath"

	"github.com/pressly/goose"

	"github.com/bahati/elimu/core"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	dir := filepath.Join(core.Conf.WorkDir, "storage", "database", "migrations")
	return gooseRunFunc(args[0], cli.db.DB, dir, arguments...)
}
