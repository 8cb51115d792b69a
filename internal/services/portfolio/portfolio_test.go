package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
	"github.com/smartinvest/server/internal/ledger"
)

type memLedger struct {
	records []domain.Transaction
}

func (m *memLedger) ByUser(username string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range m.records {
		if tx.Username == username {
			out = append(out, tx)
		}
	}
	return out, nil
}

type memAccounts struct {
	accounts map[string]domain.Account
}

func (m *memAccounts) Get(username string) (domain.Account, bool) {
	acc, ok := m.accounts[username]
	return acc, ok
}

type fixedPrices ledger.PriceMap

func (f fixedPrices) Snapshot() ledger.PriceMap {
	return ledger.PriceMap(f)
}

func record(t *testing.T, seq uint64, symbol string, action domain.Action, qty int64, price float64, at time.Time) domain.Transaction {
	t.Helper()
	tx, err := domain.NewTransaction("tx", "alice", symbol, action, qty, decimal.NewFromFloat(price), at)
	require.NoError(t, err)
	tx.Seq = seq
	return tx
}

func newService(t *testing.T, txs []domain.Transaction, prices fixedPrices, balance int64) *Service {
	t.Helper()

	account, err := domain.NewAccount("alice", "alice@example.com", "hash", decimal.NewFromInt(balance))
	require.NoError(t, err)

	svc, err := NewService(
		&memLedger{records: txs},
		&memAccounts{accounts: map[string]domain.Account{"alice": account}},
		prices,
		decimal.NewFromInt(100),
		zap.NewNop(),
	)
	require.NoError(t, err)
	return svc
}

func TestService_View(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		record(t, 1, "AAPL", domain.ActionBuy, 10, 175.50, base),
		record(t, 2, "TSLA", domain.ActionBuy, 5, 240.00, base.Add(time.Minute)),
		record(t, 3, "AAPL", domain.ActionSell, 4, 182.63, base.Add(2*time.Minute)),
	}
	prices := fixedPrices{"AAPL": decimal.NewFromFloat(182.63), "TSLA": decimal.NewFromFloat(234.50)}

	view, err := newService(t, txs, prices, 5000).View(context.Background(), "alice")
	require.NoError(t, err)

	require.Len(t, view.Holdings, 2)
	assert.Empty(t, view.Issues)
	assert.Equal(t, int64(6), view.Holdings[0].Quantity)
	assert.True(t, view.Summary.TotalValue.Equal(decimal.NewFromFloat(2268.28)), "total %s", view.Summary.TotalValue)
	assert.True(t, view.Summary.AvailableCash.Equal(decimal.NewFromInt(5000)))
}

func TestService_View_EmptyPortfolio(t *testing.T) {
	view, err := newService(t, nil, fixedPrices{}, 100000).View(context.Background(), "alice")
	require.NoError(t, err)

	assert.Empty(t, view.Holdings)
	assert.True(t, view.Summary.TotalValue.IsZero())
	assert.True(t, view.Summary.AvailableCash.Equal(decimal.NewFromInt(100000)))
}

func TestService_View_SurfacesIntegrityIssues(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		record(t, 1, "AAPL", domain.ActionBuy, 5, 100, base),
		record(t, 2, "AAPL", domain.ActionSell, 8, 100, base.Add(time.Minute)),
	}

	view, err := newService(t, txs, fixedPrices{}, 1000).View(context.Background(), "alice")
	require.NoError(t, err)

	assert.Empty(t, view.Holdings)
	require.Len(t, view.Issues, 1)
	assert.Equal(t, ledger.IssueNegativeQuantity, view.Issues[0].Kind)
}

func TestService_Transactions_Filter(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		record(t, 1, "AAPL", domain.ActionBuy, 10, 100, base),
		record(t, 2, "AAPL", domain.ActionSell, 4, 110, base.Add(time.Minute)),
		record(t, 3, "TSLA", domain.ActionBuy, 2, 240, base.Add(2*time.Minute)),
	}
	svc := newService(t, txs, fixedPrices{}, 1000)
	ctx := context.Background()

	all, err := svc.Transactions(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	buys, err := svc.Transactions(ctx, "alice", domain.ActionBuy)
	require.NoError(t, err)
	assert.Len(t, buys, 2)

	sells, err := svc.Transactions(ctx, "alice", domain.ActionSell)
	require.NoError(t, err)
	require.Len(t, sells, 1)
	assert.Equal(t, "AAPL", sells[0].Symbol)
}
