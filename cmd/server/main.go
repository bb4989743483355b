// @title Food Catalog Dedup API
// @version 1.0
// @description Кластеризация похожих продуктов каталога и связывание дубликатов.

// @BasePath /
// @schemes http https

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"foodcatalog/internal/config"
	"foodcatalog/internal/container"
	"foodcatalog/internal/infrastructure/logging"
	"foodcatalog/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("CATALOG_CONFIG"), "path to YAML config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogMode, cfg.LogLevelOrDefault())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := c.Initialize(); err != nil {
		return err
	}
	defer c.Close()

	srv := server.NewServer(c)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	logger.Info("server started",
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"text_fields", cfg.Dedup.TextFields,
		"poll_interval", cfg.Dedup.PollInterval.String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}
