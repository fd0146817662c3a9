package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/nulln0ne/deriverse-estimator/internal/config"
	"github.com/nulln0ne/deriverse-estimator/internal/handler"
	"github.com/nulln0ne/deriverse-estimator/internal/logging"
	"github.com/nulln0ne/deriverse-estimator/internal/service"
	"github.com/nulln0ne/deriverse-estimator/internal/sol"
	"github.com/nulln0ne/deriverse-estimator/pkg/deriverse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	app := fiber.New()
	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rpcClient, err := sol.Dial(ctx, cfg.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to Solana node: %w", err)
	}

	deployment := deriverse.Deployment{
		ProgramID: cfg.ProgramID,
		Version:   cfg.SchemaVersion,
	}
	quoteService := service.NewQuoteService(logger, sol.NewFetcher(rpcClient), deployment)
	quoteHandler := handler.NewQuoteHandler(logger, quoteService)
	app.Get("/quote", quoteHandler.Handle())

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			rpcClient.Close()
			return fmt.Errorf("server error: %w", err)
		}
		rpcClient.Close()
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_ = app.Shutdown()

	rpcClient.Close()

	<-shutdownCtx.Done()
	return nil
}
