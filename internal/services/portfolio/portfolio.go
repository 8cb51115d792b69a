// Package portfolio serves holdings views derived from the transaction
// ledger. Every screen goes through this service and the ledger engine; no
// view derives cost basis on its own.
package portfolio

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
	"github.com/smartinvest/server/internal/ledger"
)

// Ledger is the append-only trade ledger (read side).
type Ledger interface {
	ByUser(username string) ([]domain.Transaction, error)
}

// Accounts is the account store (read side).
type Accounts interface {
	Get(username string) (domain.Account, bool)
}

// Prices takes a stable price snapshot for one reconciliation pass.
type Prices interface {
	Snapshot() ledger.PriceMap
}

// View is the reconciled state of one user's portfolio. Issues carry any
// data-integrity problems found during reconciliation; they are surfaced,
// never repaired here.
type View struct {
	Holdings []domain.Holding `json:"holdings"`
	Summary  domain.Summary   `json:"summary"`
	Issues   []ledger.Issue   `json:"issues,omitempty"`
}

// Service reconciles the ledger into holdings views on demand.
type Service struct {
	ledger        Ledger
	accounts      Accounts
	prices        Prices
	fallbackPrice decimal.Decimal
	logger        *zap.Logger
}

// NewService creates a portfolio service. fallbackPrice is substituted for
// symbols the price source cannot resolve.
func NewService(txLedger Ledger, accounts Accounts, prices Prices, fallbackPrice decimal.Decimal, logger *zap.Logger) (*Service, error) {
	if txLedger == nil {
		return nil, errors.New("transaction ledger is required")
	}
	if accounts == nil {
		return nil, errors.New("accounts store is required")
	}
	if prices == nil {
		return nil, errors.New("price source is required")
	}
	if fallbackPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("fallback price must be positive, got %s", fallbackPrice.String())
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		ledger:        txLedger,
		accounts:      accounts,
		prices:        prices,
		fallbackPrice: fallbackPrice,
		logger:        logger,
	}, nil
}

// View reconciles the user's full portfolio: holdings, summary and any
// integrity issues. A user with no transactions gets an empty view with the
// cash balance filled in; that is a normal outcome.
func (s *Service) View(_ context.Context, username string) (View, error) {
	txs, err := s.ledger.ByUser(username)
	if err != nil {
		return View{}, errors.Wrap(err, "load ledger")
	}

	balance := decimal.Zero
	if account, ok := s.accounts.Get(username); ok {
		balance = account.Balance
	}

	holdings, issues := ledger.BuildHoldings(txs, s.prices.Snapshot(), s.fallbackPrice)
	for _, issue := range issues {
		s.logger.Warn("ledger integrity issue",
			zap.String("user", username),
			zap.String("kind", string(issue.Kind)),
			zap.String("symbol", issue.Symbol),
			zap.String("detail", issue.Detail))
	}

	return View{
		Holdings: holdings,
		Summary:  ledger.Summarize(holdings, balance),
		Issues:   issues,
	}, nil
}

// Transactions returns the raw trade history, newest last. An empty action
// filter returns everything.
func (s *Service) Transactions(_ context.Context, username string, filter domain.Action) ([]domain.Transaction, error) {
	txs, err := s.ledger.ByUser(username)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger")
	}
	if filter == "" {
		return txs, nil
	}

	filtered := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Action == filter {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}
