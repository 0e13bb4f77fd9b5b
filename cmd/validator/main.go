package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/crowdstake/crowdstake-server/common/config"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/common/metrics"
	"github.com/crowdstake/crowdstake-server/validator"
)

func main() {
	name := "crowdstake-validator"
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	// Initialize logger.
	logging.Initialize(name)
	defer logging.Finalize()
	logger := logging.NewLoggerTag(name)
	metrics.Init()

	// postgres://crowdstake@localhost:5432/crowdstake?sslmode=disable
	args := new(validator.Config)
	arg.MustParse(args)
	if len(args.DatabaseURLs) == 0 {
		if u := config.GetString("DB_ARGS", ""); u != "" {
			args.DatabaseURLs = []string{u}
		}
	}
	logger.Info("checking %d replicas every %s", len(args.DatabaseURLs), args.RoundInterval)

	v, err := validator.NewValidator(args, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()
	ctx, cancelFunc := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := v.Run(ctx); err != nil {
			logger.Error("validator stopped: %s", err)
		}
	}()
	wait(cancelFunc)
	<-done
}

func wait(stop context.CancelFunc) {
	var exitSignal = make(chan os.Signal, 1)
	signal.Notify(exitSignal, syscall.SIGTERM)
	signal.Notify(exitSignal, syscall.SIGINT)
	<-exitSignal
	stop()
}
