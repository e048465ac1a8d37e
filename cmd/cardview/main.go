package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/config"
	apphttp "github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/http"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/log"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/parserapi"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.ParseLevel(cfg.LogLevel), log.ComponentApp)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	client := parserapi.NewClient(cfg.ParserServiceURL, cfg.ParserTimeout, logger)
	parser := parserapi.NewCachingParser(client, cfg.CacheTTL, logger)

	srv := apphttp.NewServer(":"+cfg.Port, parser, logger, apphttp.Options{
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		CacheStats:         parser,
	})

	// Uploads can be slow; the write timeout must cover a full parser
	// round trip.
	srv.ReadTimeout = cfg.ParserTimeout + 30*time.Second
	srv.WriteTimeout = cfg.ParserTimeout + 30*time.Second
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
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting statement viewer",
		"port", cfg.Port,
		"parser_service_url", cfg.ParserServiceURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
