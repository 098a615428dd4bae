package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flexvote-io/flexvote/internal/clients/govclient"
	"github.com/flexvote-io/flexvote/internal/clients/tokenclient"
	"github.com/flexvote-io/flexvote/internal/config"
	"github.com/flexvote-io/flexvote/internal/db"
	dbmodel "github.com/flexvote-io/flexvote/internal/db/model"
	"github.com/flexvote-io/flexvote/internal/observability/metrics"
	"github.com/flexvote-io/flexvote/internal/observability/tracing"
	"github.com/flexvote-io/flexvote/internal/pool"
	"github.com/flexvote-io/flexvote/internal/queue"
	"github.com/flexvote-io/flexvote/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the flexvote voting pool server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up voting pool db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	// Create a basic zap logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating zap logger")
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			log.Error().Err(err).Msg("error while syncing zap logger")
		}
	}()

	queueManager, err := queue.NewQueueManager(&cfg.Queue, zapLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize queue manager")
	}
	defer queueManager.Shutdown()

	// the in-process token ledger doubles as the logical clock
	ledger := tokenclient.NewMemoryLedger()
	tokenClient := tokenclient.NewTokenClientWithMetrics(ledger)

	governor := govclient.NewGovernor(tokenClient, ledger)
	govClient := govclient.NewGovClientWithMetrics(governor)

	votingPool := pool.NewPool(cfg.Pool.Address, govClient, tokenClient, ledger)

	service := services.NewService(cfg, dbClient, ledger, governor, votingPool, queueManager)

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	if err := service.StartPoolSync(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start pool sync")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}
