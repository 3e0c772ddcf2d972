package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prismtrade/prismtrade/internal/analysis"
	"github.com/prismtrade/prismtrade/internal/config"
	"github.com/prismtrade/prismtrade/internal/history"
	"github.com/prismtrade/prismtrade/internal/logger"
	"github.com/prismtrade/prismtrade/internal/marketdata"
	"github.com/prismtrade/prismtrade/internal/monitoring"
	"github.com/prismtrade/prismtrade/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Configuration file (YAML, optional)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)

	provider := marketdata.NewBybitProvider(marketdata.BybitConfig{
		APIKey:    cfg.MarketData.APIKey,
		APISecret: cfg.MarketData.APISecret,
		Testnet:   cfg.MarketData.Testnet,
		Category:  cfg.MarketData.Category,
	})

	var recorder *history.Recorder
	if cfg.History.Enabled {
		recorder = history.NewRecorder(cfg.History.Dir)
	}

	service := analysis.NewService(provider, recorder, monitoring.NewMetrics(), log)
	srv := server.New(cfg.Server, service, log)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sig := <-done
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
