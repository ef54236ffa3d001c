package main

import (
	"context"

	"github.com/pressly/goose/v3"

	"github.com/noah-isme/tuition-center-api/pkg/database"
)

var gooseRunFunc = goose.RunContext // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	return gooseRunFunc(ctx, args[0], cli.db, database.MigrationsDir, args[1:]...)
}
