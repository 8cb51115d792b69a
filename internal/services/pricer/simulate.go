package pricer

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
	"github.com/smartinvest/server/internal/ledger"
)

const (
	// maxHistory caps the per-symbol price history kept for forecasting.
	maxHistory = 120
	// maxTickPercent bounds a single random-walk step to +/-1.5%.
	maxTickPercent = 0.015
)

type listing struct {
	name  string
	price float64
}

// seedListings is the simulated exchange universe. Prices are opening marks,
// not live data.
var seedListings = map[string]listing{
	"AAPL":  {name: "Apple Inc", price: 182.63},
	"GOOGL": {name: "Alphabet Inc", price: 139.68},
	"MSFT":  {name: "Microsoft Corporation", price: 410.34},
	"TSLA":  {name: "Tesla Inc", price: 234.50},
	"JPM":   {name: "JP Morgan Chase & Co", price: 195.42},
	"AMZN":  {name: "Amazon.com Inc", price: 178.15},
	"NVDA":  {name: "NVIDIA Corporation", price: 875.28},
	"META":  {name: "Meta Platforms Inc", price: 474.99},
}

// Simulate is an in-process quote source: a bounded random walk over a seeded
// listing table. It stands in for a real market-data integration, which this
// application deliberately does not have.
type Simulate struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	rand    *rand.Rand
	names   map[string]string
	open    map[string]decimal.Decimal
	current map[string]decimal.Decimal
	history map[string][]decimal.Decimal
}

// NewSimulate creates a simulated quote source seeded with the built-in
// listing table.
func NewSimulate(logger *zap.Logger) *Simulate {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Simulate{
		logger:  logger,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		names:   make(map[string]string, len(seedListings)),
		open:    make(map[string]decimal.Decimal, len(seedListings)),
		current: make(map[string]decimal.Decimal, len(seedListings)),
		history: make(map[string][]decimal.Decimal, len(seedListings)),
	}

	for symbol, l := range seedListings {
		price := decimal.NewFromFloat(l.price)
		s.names[symbol] = l.name
		s.open[symbol] = price
		s.current[symbol] = price
		s.history[symbol] = []decimal.Decimal{price}
	}

	return s
}

// GetPrice returns the current simulated price for the symbol.
func (s *Simulate) GetPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.current[symbol]
	if !ok {
		return decimal.Decimal{}, ErrPriceUnavailable
	}
	return price, nil
}

// Quote returns the full quote for the symbol, with change measured against
// the opening mark.
func (s *Simulate) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.current[symbol]
	if !ok {
		return domain.Quote{}, ErrPriceUnavailable
	}

	open := s.open[symbol]
	change := price.Sub(open)
	changePercent := decimal.Zero
	if open.IsPositive() {
		changePercent = change.Div(open).Mul(decimal.NewFromInt(100))
	}

	return domain.Quote{
		Symbol:        symbol,
		Name:          s.names[symbol],
		Exchange:      "NYSE",
		Currency:      "USD",
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Timestamp:     time.Now(),
	}, nil
}

// Search returns quotes for listings whose symbol or name matches the query.
func (s *Simulate) Search(ctx context.Context, query string) []domain.Quote {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	s.mu.RLock()
	symbols := make([]string, 0, len(s.names))
	for symbol, name := range s.names {
		if strings.Contains(symbol, query) || strings.Contains(strings.ToUpper(name), query) {
			symbols = append(symbols, symbol)
		}
	}
	s.mu.RUnlock()

	sort.Strings(symbols)

	quotes := make([]domain.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := s.Quote(ctx, symbol)
		if err != nil {
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes
}

// Symbols returns all listed symbols in stable order.
func (s *Simulate) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.current))
	for symbol := range s.current {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// History returns the recorded price ticks for the symbol, oldest first.
func (s *Simulate) History(symbol string) []decimal.Decimal {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.RLock()
	defer s.mu.RUnlock()

	ticks := s.history[symbol]
	out := make([]decimal.Decimal, len(ticks))
	copy(out, ticks)
	return out
}

// Snapshot returns a stable price map for one reconciliation pass. The
// ledger engine requires a non-mutating view of its inputs for the duration
// of one call; the walk keeps moving underneath, so every reconciliation
// takes its own snapshot first.
func (s *Simulate) Snapshot() ledger.PriceMap {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prices := make(ledger.PriceMap, len(s.current))
	for symbol, price := range s.current {
		prices[symbol] = price
	}
	return prices
}

// Tick advances every listed price by one bounded random-walk step.
func (s *Simulate) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for symbol, price := range s.current {
		step := (s.rand.Float64()*2 - 1) * maxTickPercent
		next := price.Mul(decimal.NewFromFloat(1 + step)).Round(2)
		if next.LessThanOrEqual(decimal.Zero) {
			next = price
		}

		s.current[symbol] = next

		ticks := append(s.history[symbol], next)
		if len(ticks) > maxHistory {
			ticks = ticks[len(ticks)-maxHistory:]
		}
		s.history[symbol] = ticks
	}
}

// Run advances the walk on the given interval until ctx is cancelled.
func (s *Simulate) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("quote simulator started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("quote simulator stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}
