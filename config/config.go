// Package config loads server settings from a yaml file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr     = ":8080"
	DefaultDataDir        = "data"
	DefaultOpeningBalance = "100000"
	DefaultFallbackPrice  = "100"
	DefaultTickInterval   = 2 * time.Second
)

type Config struct {
	ListenAddr     string
	DataDir        string
	OpeningBalance decimal.Decimal
	FallbackPrice  decimal.Decimal
	TickInterval   time.Duration
	NewsFeedURL    string
	NewsAPIKey     string
	Setup          bool
}

// ConfigTmp is the yaml shape; decimal fields travel as strings.
type ConfigTmp struct {
	ListenAddr     string        `yaml:"listen_addr"`
	DataDir        string        `yaml:"data_dir"`
	OpeningBalance string        `yaml:"opening_balance,omitempty"`
	FallbackPrice  string        `yaml:"fallback_price,omitempty"`
	TickInterval   time.Duration `yaml:"tick_interval,omitempty"`
	NewsFeedURL    string        `yaml:"news_feed_url,omitempty"`
	NewsAPIKey     string        `yaml:"news_api_key,omitempty"`
}

func Get() (Config, error) {
	return fromArgs(os.Args[1:])
}

// fromArgs parses on a fresh FlagSet so Get stays callable more than once
// within a process.
func fromArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	setup := fs.Bool("setup", false, "run the interactive setup wizard")
	addr := fs.String("addr", DefaultListenAddr, "listen address, example: :8080")
	dataDir := fs.String("datadir", DefaultDataDir, "directory for ledger segments and json stores")
	openingBalance := fs.String("openingbalance", DefaultOpeningBalance, "cash balance granted to new accounts")
	fallbackPrice := fs.String("fallbackprice", DefaultFallbackPrice, "price used when a symbol has no quote")
	tickInterval := fs.Duration("tickinterval", DefaultTickInterval, "simulated quote tick interval")
	newsFeedURL := fs.String("newsfeed", "", "optional upstream news feed url")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		cfg, err := Load(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Setup = *setup
		return cfg, nil
	}

	opening, err := decimal.NewFromString(*openingBalance)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --openingbalance provided, --openingbalance=%s", *openingBalance)
	}
	fallback, err := decimal.NewFromString(*fallbackPrice)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --fallbackprice provided, --fallbackprice=%s", *fallbackPrice)
	}

	cfg := Config{
		ListenAddr:     *addr,
		DataDir:        *dataDir,
		OpeningBalance: opening,
		FallbackPrice:  fallback,
		TickInterval:   *tickInterval,
		NewsFeedURL:    *newsFeedURL,
		NewsAPIKey:     os.Getenv("NEWS_API_KEY"),
		Setup:          *setup,
	}
	return cfg, validate(cfg)
}

// Load reads a yaml config from path. The setup wizard loads its generated
// file through this after writing it.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:   tmp.ListenAddr,
		DataDir:      tmp.DataDir,
		TickInterval: tmp.TickInterval,
		NewsFeedURL:  tmp.NewsFeedURL,
		NewsAPIKey:   tmp.NewsAPIKey,
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.NewsAPIKey == "" {
		cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	}

	if tmp.OpeningBalance == "" {
		tmp.OpeningBalance = DefaultOpeningBalance
	}
	cfg.OpeningBalance, err = decimal.NewFromString(tmp.OpeningBalance)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'opening_balance' param in yaml config: %w", err)
	}

	if tmp.FallbackPrice == "" {
		tmp.FallbackPrice = DefaultFallbackPrice
	}
	cfg.FallbackPrice, err = decimal.NewFromString(tmp.FallbackPrice)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'fallback_price' param in yaml config: %w", err)
	}

	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if cfg.OpeningBalance.IsNegative() {
		return fmt.Errorf("opening balance must not be negative, got %s", cfg.OpeningBalance)
	}
	if !cfg.FallbackPrice.IsPositive() {
		return fmt.Errorf("fallback price must be positive, got %s", cfg.FallbackPrice)
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", cfg.TickInterval)
	}
	return nil
}
