// Package trader executes simulated trades against the account balance and
// the append-only transaction ledger.
package trader

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
	"github.com/smartinvest/server/internal/ledger"
	"github.com/smartinvest/server/internal/services/pricer"
)

// Execution rejection reasons. These are expected business outcomes, not
// internal failures.
var (
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrUnknownUser        = errors.New("user not found")
)

// Accounts is the account store the trader debits and credits.
type Accounts interface {
	Get(username string) (domain.Account, bool)
	Put(account domain.Account) error
}

// Ledger is the append-only trade ledger.
type Ledger interface {
	Append(tx domain.Transaction) (domain.Transaction, error)
	ByUser(username string) ([]domain.Transaction, error)
}

// Service executes buys and sells. Oversells are rejected here, at the
// execution boundary: the reconciliation engine reports net quantity and the
// trader refuses any sell that would drive it negative. Reconciliation
// itself never rejects, so a negative position in the ledger always means
// corruption, not a code path through this service.
type Service struct {
	mu       sync.Mutex
	accounts Accounts
	ledger   Ledger
	pricer   pricer.Pricer
	logger   *zap.Logger
}

// NewService creates a trade execution service.
func NewService(accounts Accounts, txLedger Ledger, priceSource pricer.Pricer, logger *zap.Logger) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("accounts store is required")
	}
	if txLedger == nil {
		return nil, errors.New("transaction ledger is required")
	}
	if priceSource == nil {
		return nil, errors.New("pricer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		accounts: accounts,
		ledger:   txLedger,
		pricer:   priceSource,
		logger:   logger,
	}, nil
}

// Request describes one order. Price is resolved at execution time from the
// quote source; OrderType and Duration are recorded pass-through.
type Request struct {
	Username  string
	Symbol    string
	StockName string
	Quantity  int64
	OrderType string
	Duration  string
}

// Buy executes a market buy. The total cost is debited from the cash balance;
// a buy that would overdraw the account is rejected with ErrInsufficientFunds.
func (s *Service) Buy(ctx context.Context, req Request) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, err := s.pricer.GetPrice(ctx, req.Symbol)
	if err != nil {
		return domain.Transaction{}, errors.Wrapf(err, "resolve price for %s", req.Symbol)
	}

	account, ok := s.accounts.Get(req.Username)
	if !ok {
		return domain.Transaction{}, ErrUnknownUser
	}

	tx, err := domain.NewTransaction(uuid.New().String(), req.Username, req.Symbol, domain.ActionBuy, req.Quantity, price, time.Now())
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.StockName = req.StockName
	tx.OrderType = req.OrderType
	tx.Duration = req.Duration

	if tx.Total.GreaterThan(account.Balance) {
		return domain.Transaction{}, ErrInsufficientFunds
	}

	if err := account.Withdraw(tx.Total); err != nil {
		return domain.Transaction{}, err
	}

	// Debit before append: a failed balance write must not leave a paid-for
	// trade in the ledger.
	if err := s.accounts.Put(account); err != nil {
		return domain.Transaction{}, errors.Wrap(err, "update balance")
	}

	recorded, err := s.ledger.Append(tx)
	if err != nil {
		account.Deposit(tx.Total)
		if refundErr := s.accounts.Put(account); refundErr != nil {
			s.logger.Error("buy refund failed, balance diverged from ledger",
				zap.String("user", req.Username),
				zap.String("symbol", tx.Symbol),
				zap.String("total", tx.Total.String()),
				zap.Error(refundErr))
		}
		return domain.Transaction{}, errors.Wrap(err, "record buy")
	}
	tx = recorded

	s.logger.Info("buy executed",
		zap.String("user", req.Username),
		zap.String("symbol", tx.Symbol),
		zap.Int64("quantity", tx.Quantity),
		zap.String("price", price.String()),
		zap.String("total", tx.Total.String()),
		zap.String("balance", account.Balance.String()))

	return tx, nil
}

// Sell executes a market sell. The requested quantity is validated against
// the position reconciled from the ledger; selling more than is held is
// rejected with ErrInsufficientShares so an oversell can never enter the
// ledger through this path.
func (s *Service) Sell(ctx context.Context, req Request) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, err := s.pricer.GetPrice(ctx, req.Symbol)
	if err != nil {
		return domain.Transaction{}, errors.Wrapf(err, "resolve price for %s", req.Symbol)
	}

	account, ok := s.accounts.Get(req.Username)
	if !ok {
		return domain.Transaction{}, ErrUnknownUser
	}

	tx, err := domain.NewTransaction(uuid.New().String(), req.Username, req.Symbol, domain.ActionSell, req.Quantity, price, time.Now())
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.StockName = req.StockName
	tx.OrderType = req.OrderType
	tx.Duration = req.Duration

	history, err := s.ledger.ByUser(req.Username)
	if err != nil {
		return domain.Transaction{}, errors.Wrap(err, "load ledger")
	}

	held := ledger.NetQuantity(history, tx.Symbol)
	if req.Quantity > held {
		return domain.Transaction{}, errors.Wrapf(ErrInsufficientShares,
			"requested %d, holding %d %s", req.Quantity, held, tx.Symbol)
	}

	tx, err = s.ledger.Append(tx)
	if err != nil {
		return domain.Transaction{}, errors.Wrap(err, "record sell")
	}

	account.Deposit(tx.Total)
	if err := s.accounts.Put(account); err != nil {
		s.logger.Error("sell recorded but proceeds not credited, balance diverged from ledger",
			zap.String("user", req.Username),
			zap.String("symbol", tx.Symbol),
			zap.String("total", tx.Total.String()),
			zap.Error(err))
		return domain.Transaction{}, errors.Wrap(err, "update balance")
	}

	s.logger.Info("sell executed",
		zap.String("user", req.Username),
		zap.String("symbol", tx.Symbol),
		zap.Int64("quantity", tx.Quantity),
		zap.String("price", price.String()),
		zap.String("total", tx.Total.String()),
		zap.String("balance", account.Balance.String()))

	return tx, nil
}

// Proceeds returns the cash value of quantity shares at the current price.
// Used by views that preview an order before submitting it.
func (s *Service) Proceeds(ctx context.Context, symbol string, quantity int64) (decimal.Decimal, error) {
	price, err := s.pricer.GetPrice(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return price.Mul(decimal.NewFromInt(quantity)), nil
}
