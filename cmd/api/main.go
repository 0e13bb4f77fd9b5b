package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/crowdstake/crowdstake-server/account"
	"github.com/crowdstake/crowdstake-server/api"
	"github.com/crowdstake/crowdstake-server/common/config"
	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/crowdfund"
	database "github.com/crowdstake/crowdstake-server/database/db"
	"github.com/crowdstake/crowdstake-server/env"
	"github.com/crowdstake/crowdstake-server/ethereum"
	"github.com/crowdstake/crowdstake-server/staking"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/crowdstake/crowdstake-server/validator"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Listen         string `arg:"--listen,env:LISTEN" default:":3000" help:"public api address"`
	InternalListen string `arg:"--internal-listen,env:INTERNAL_LISTEN" default:":9453" help:"health and metrics address"`
	EthRPCURL      string `arg:"--eth-rpc-url,env:ETH_RPC_URL" help:"json-rpc endpoint used to pay donation rewards"`
	TreasuryKey    string `arg:"--treasury-key,env:TREASURY_PRIVATE_KEY" help:"hex private key of the reward treasury"`
	Validate       bool   `arg:"--validate,env:VALIDATE_LEDGER" help:"run the ledger validator in process"`
}

func main() {
	name := "crowdstake"
	if err := config.Load(); err != nil {
		panic(err)
	}
	args := new(Config)
	arg.MustParse(args)

	// Initialize logger.
	logging.Initialize(name)
	defer logging.Finalize()
	logger := logging.NewLoggerTag(name)
	cerrors.Initialize(logger)
	defer cerrors.Catch()

	database.Initialize()
	handle := database.GetDB()
	if env.ResetDatabase() {
		if err := database.Reset(handle, types.Crowdfund, true); err != nil {
			logger.Critical("reset database: %s", err)
			return
		}
	}

	backgroundCtx, stop := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(backgroundCtx)

	hub := api.NewHub(logger)
	opts := []crowdfund.Option{crowdfund.WithNotifier(hub)}
	if args.TreasuryKey != "" {
		percent := config.GetDecimal("DONATION_REWARD_PERCENT", decimal.NewFromInt(1))
		rewarder, err := ethereum.NewRewarder(args.EthRPCURL, args.TreasuryKey, percent)
		if err != nil {
			logger.Warn("donation rewards disabled: %s", err)
		} else {
			logger.Info("donation rewards paid from %s", rewarder.Treasury().Hex())
			opts = append(opts, crowdfund.WithRewarder(rewarder))
		}
	}

	campaigns := crowdfund.NewService(handle, opts...)
	server := api.NewServer(ctx, logger, args.Listen, api.Services{
		Accounts:  account.NewService(handle),
		Campaigns: campaigns,
		Staking:   staking.NewService(handle),
		Hub:       hub,
	})
	internalServer := api.NewInternalServer(ctx, logger, args.InternalListen, func(ctx context.Context) error {
		return database.Ping(ctx, handle)
	})

	group.Go(func() error {
		return hub.Run(ctx)
	})
	group.Go(func() error {
		return server.Run()
	})
	group.Go(func() error {
		return internalServer.Run()
	})
	if args.Validate {
		vld := validator.NewValidatorWithDB(&validator.Config{
			RoundInterval: config.GetDuration("VALIDATOR_ROUND_INTERVAL", 0),
		}, logger.With("component", "validator"), handle)
		group.Go(func() error {
			return vld.Run(ctx)
		})
	}
	go WaitExitSignalWithServer(stop, logger, server, internalServer)

	if err := group.Wait(); err != nil {
		logger.Critical("service stopped: %s", err)
	}
	campaigns.Wait()
}

func WaitExitSignalWithServer(
	ctxStop context.CancelFunc, logger logging.Logger, server *api.Server,
	inServer *api.InternalServer) {
	var exitSignal = make(chan os.Signal, 1)
	signal.Notify(exitSignal, syscall.SIGTERM)
	signal.Notify(exitSignal, syscall.SIGINT)

	sig := <-exitSignal
	logger.Info("caught sig: %+v, Stopping...", sig)
	if err := server.Shutdown(); err != nil {
		logger.Error("Server shutdown failed:%+v", err)
	}
	if err := inServer.Shutdown(); err != nil {
		logger.Error("Server shutdown failed:%+v", err)
	}
	ctxStop()
}
