package main

import (
	"log"

	"github.com/alexflint/go-arg"
	"github.com/crowdstake/crowdstake-server/common/config"
	"github.com/crowdstake/crowdstake-server/common/logging"
	database "github.com/crowdstake/crowdstake-server/database/db"
	"github.com/crowdstake/crowdstake-server/types"
)

type Config struct {
	Force bool `arg:"--force" help:"drop and recreate tables even if they hold data"`
}

func main() {
	name := "crowdstake-reset-db"
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	args := new(Config)
	arg.MustParse(args)

	logging.Initialize(name)
	defer logging.Finalize()
	logger := logging.NewLoggerTag(name)

	database.Initialize()
	defer database.Finalize()
	if err := database.Reset(database.GetDB(), types.Crowdfund, args.Force); err != nil {
		logger.Error("reset failed: %s", err)
		return
	}
	version, err := database.SchemaVersion(database.GetDB())
	if err != nil {
		logger.Error("read schema version: %s", err)
		return
	}
	logger.Info("database reset, schema version %d", version)
}
