// Command server runs the Smart-Invest paper-trading backend. All market
// data is simulated in-process; state lives under the configured data
// directory.
//
// Usage:
//
//	server --config config.yaml
//	server --setup          (interactive configuration wizard)
//	server                  (CLI flags with defaults)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartinvest/server/config"
	"github.com/smartinvest/server/internal/services/auth"
	"github.com/smartinvest/server/internal/services/forecast"
	"github.com/smartinvest/server/internal/services/news"
	"github.com/smartinvest/server/internal/services/portfolio"
	"github.com/smartinvest/server/internal/services/pricer"
	"github.com/smartinvest/server/internal/services/trader"
	"github.com/smartinvest/server/internal/services/tutorial"
	"github.com/smartinvest/server/internal/setup"
	"github.com/smartinvest/server/internal/storage/accounts"
	"github.com/smartinvest/server/internal/storage/progress"
	"github.com/smartinvest/server/internal/storage/transactions"
	"github.com/smartinvest/server/internal/web"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Setup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		cfg, err = config.Load(setup.GeneratedConfigFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	accountStore, err := accounts.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	txStore, err := transactions.NewWALStore(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return err
	}
	defer txStore.Close()

	progressStore, err := progress.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	quotes := pricer.NewSimulate(logger)

	authSvc, err := auth.NewService(accountStore, cfg.OpeningBalance, logger)
	if err != nil {
		return err
	}
	traderSvc, err := trader.NewService(accountStore, txStore, quotes, logger)
	if err != nil {
		return err
	}
	portfolioSvc, err := portfolio.NewService(txStore, accountStore, quotes, cfg.FallbackPrice, logger)
	if err != nil {
		return err
	}
	forecastSvc, err := forecast.NewService(quotes, logger)
	if err != nil {
		return err
	}
	tutorialSvc, err := tutorial.NewService(progressStore, logger)
	if err != nil {
		return err
	}
	newsSvc, err := news.NewService(news.Config{BaseURL: cfg.NewsFeedURL, APIKey: cfg.NewsAPIKey}, logger)
	if err != nil {
		return err
	}

	server, err := web.NewServer(cfg.ListenAddr, web.Deps{
		Auth:      authSvc,
		Pricer:    quotes,
		Trader:    traderSvc,
		Portfolio: portfolioSvc,
		Forecast:  forecastSvc,
		Tutorial:  tutorialSvc,
		News:      newsSvc,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return quotes.Run(ctx, cfg.TickInterval)
	})
	g.Go(func() error {
		return server.Start(ctx)
	})

	logger.Info("smart-invest server started",
		zap.String("addr", cfg.ListenAddr),
		zap.String("data_dir", cfg.DataDir))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
