package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	var store storage.TransactionStore
	switch cfg.DataBackend {
	case "memory":
		store = memory.NewStore()
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	default:
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		store = repo
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	}

	var notifier services.Notifier
	if gw := cli.InitMailGateway(logger, cfg); gw != nil {
		notifier = gw
	}

	// The broker is optional for the API: lifecycle events are
	// best-effort and a missing broker must not block requests.
	var publisher services.EventPublisher
	amqpClient, err := cli.InitAMQP(cfg)
	if err != nil {
		logger.Warn("AMQP unavailable, lifecycle events disabled", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	txSvc := services.NewTransactionService(store, notifier, publisher, cfg.MailSendTimeout)

	var mailSvc *services.MailService
	if notifier != nil {
		mailSvc = services.NewMailService(store, notifier, cfg.MailDefaultRecipient, cfg.MailSendTimeout)
	}

	srv := apphttp.NewServer(":"+cfg.Port, txSvc, mailSvc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
