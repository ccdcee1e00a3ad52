package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting fintrack-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	gateway := cli.InitMailGateway(logger, cfg)
	if gateway == nil {
		logger.Error("The worker needs a configured mail relay")
		os.Exit(1)
	}

	amqpClient, err := cli.InitAMQP(cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mailSvc := services.NewMailService(repo, gateway, cfg.MailDefaultRecipient, cfg.MailSendTimeout)
	digest := worker.NewDigestWorker(mailSvc, cfg.SummaryInterval, cfg.MotivationInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTransactionEvents(ctx, digest.HandleEvent)
	})
	g.Go(func() error {
		return digest.RunSummaryLoop(ctx)
	})
	g.Go(func() error {
		return digest.RunMotivationLoop(ctx)
	})

	logger.Info("Worker running",
		"summary_interval", cfg.SummaryInterval.String(),
		"motivation_interval", cfg.MotivationInterval.String(),
		"queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
