package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/server/internal/domain"
)

var fallback = decimal.NewFromInt(100)

func tx(t *testing.T, seq uint64, symbol string, action domain.Action, quantity int64, price float64, at time.Time) domain.Transaction {
	t.Helper()
	rec, err := domain.NewTransaction("tx-seq", "alice", symbol, action, quantity, decimal.NewFromFloat(price), at)
	require.NoError(t, err)
	rec.Seq = seq
	return rec
}

func TestAverageCost_PureBuys(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "AAPL", domain.ActionBuy, 10, 100, base),
		tx(t, 2, "AAPL", domain.ActionBuy, 5, 130, base.Add(time.Minute)),
		tx(t, 3, "AAPL", domain.ActionBuy, 5, 150, base.Add(2*time.Minute)),
	}

	// (10*100 + 5*130 + 5*150) / 20 = 120
	avg := AverageCost(txs, fallback)
	assert.True(t, avg.Equal(decimal.NewFromInt(120)), "got %s", avg)
}

func TestAverageCost_SellKeepsAverage(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "AAPL", domain.ActionBuy, 10, 100, base),
		tx(t, 2, "AAPL", domain.ActionSell, 4, 182.63, base.Add(time.Minute)),
	}

	// selling removes shares at the running average, so the remaining 6
	// shares keep the $100 basis regardless of the sell price
	avg := AverageCost(txs, fallback)
	assert.True(t, avg.Equal(decimal.NewFromInt(100)), "got %s", avg)
}

func TestAverageCost_ZeroPositionReturnsFallback(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "AAPL", domain.ActionBuy, 5, 100, base),
		tx(t, 2, "AAPL", domain.ActionSell, 5, 120, base.Add(time.Minute)),
	}

	avg := AverageCost(txs, decimal.NewFromFloat(182.63))
	assert.True(t, avg.Equal(decimal.NewFromFloat(182.63)), "got %s", avg)
}

func TestAverageCost_UnorderedInputIsSorted(t *testing.T) {
	base := time.Now()
	// sell arrives first in the slice but last chronologically
	txs := []domain.Transaction{
		tx(t, 3, "AAPL", domain.ActionSell, 4, 200, base.Add(2*time.Minute)),
		tx(t, 1, "AAPL", domain.ActionBuy, 10, 100, base),
		tx(t, 2, "AAPL", domain.ActionBuy, 10, 120, base.Add(time.Minute)),
	}

	avg := AverageCost(txs, fallback)
	assert.True(t, avg.Equal(decimal.NewFromInt(110)), "got %s", avg)
}

func TestAverageCost_TimestampTieBreaksOnSeq(t *testing.T) {
	at := time.Now()
	txs := []domain.Transaction{
		tx(t, 2, "AAPL", domain.ActionSell, 10, 150, at),
		tx(t, 1, "AAPL", domain.ActionBuy, 10, 100, at),
	}

	// seq order puts the buy first, so the sell closes the position cleanly
	avg := AverageCost(txs, fallback)
	assert.True(t, avg.Equal(fallback), "got %s", avg)
}

func TestBuildHoldings_EndToEndExample(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "AAPL", domain.ActionBuy, 10, 175.50, base),
		tx(t, 2, "TSLA", domain.ActionBuy, 5, 240.00, base.Add(time.Minute)),
		tx(t, 3, "AAPL", domain.ActionSell, 4, 182.63, base.Add(2*time.Minute)),
	}
	prices := PriceMap{
		"AAPL": decimal.NewFromFloat(182.63),
		"TSLA": decimal.NewFromFloat(234.50),
	}

	holdings, issues := BuildHoldings(txs, prices, fallback)
	require.Empty(t, issues)
	require.Len(t, holdings, 2)

	aapl := holdings[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, int64(6), aapl.Quantity)
	assert.True(t, aapl.AverageCost.Equal(decimal.NewFromFloat(175.50)), "avg cost %s", aapl.AverageCost)
	assert.True(t, aapl.MarketValue.Equal(decimal.NewFromFloat(1095.78)), "market value %s", aapl.MarketValue)
	assert.True(t, aapl.UnrealizedGainLoss.Equal(decimal.NewFromFloat(42.78)), "gain %s", aapl.UnrealizedGainLoss)
	assert.True(t, aapl.ReturnPercent.Sub(decimal.NewFromFloat(4.06)).Abs().LessThan(decimal.NewFromFloat(0.01)),
		"return %s", aapl.ReturnPercent)

	tsla := holdings[1]
	assert.Equal(t, "TSLA", tsla.Symbol)
	assert.Equal(t, int64(5), tsla.Quantity)
	assert.True(t, tsla.AverageCost.Equal(decimal.NewFromInt(240)))
	assert.True(t, tsla.MarketValue.Equal(decimal.NewFromFloat(1172.50)))
	assert.True(t, tsla.UnrealizedGainLoss.Equal(decimal.NewFromFloat(-27.50)))
	assert.True(t, tsla.ReturnPercent.Sub(decimal.NewFromFloat(-2.29)).Abs().LessThan(decimal.NewFromFloat(0.01)),
		"return %s", tsla.ReturnPercent)

	summary := Summarize(holdings, decimal.NewFromInt(1000))
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromFloat(2268.28)), "total value %s", summary.TotalValue)
	assert.True(t, summary.AvailableCash.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 2, summary.HoldingsCount)
}

func TestBuildHoldings_Idempotent(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "AAPL", domain.ActionBuy, 10, 175.50, base),
		tx(t, 2, "TSLA", domain.ActionBuy, 5, 240.00, base.Add(time.Minute)),
		tx(t, 3, "AAPL", domain.ActionSell, 4, 182.63, base.Add(2*time.Minute)),
	}
	prices := PriceMap{"AAPL": decimal.NewFromFloat(182.63), "TSLA": decimal.NewFromFloat(234.50)}

	first, firstIssues := BuildHoldings(txs, prices, fallback)
	second, secondIssues := BuildHoldings(txs, prices, fallback)

	assert.Equal(t, first, second)
	assert.Equal(t, firstIssues, secondIssues)
}

func TestBuildHoldings_ZeroQuantityExcluded(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "AAPL", domain.ActionBuy, 5, 100, base),
		tx(t, 2, "AAPL", domain.ActionSell, 5, 110, base.Add(time.Minute)),
	}

	holdings, issues := BuildHoldings(txs, PriceMap{"AAPL": decimal.NewFromInt(110)}, fallback)
	assert.Empty(t, holdings)
	assert.Empty(t, issues)
}

func TestBuildHoldings_OversellFlagged(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "AAPL", domain.ActionBuy, 5, 100, base),
		tx(t, 2, "AAPL", domain.ActionSell, 8, 100, base.Add(time.Minute)),
	}

	holdings, issues := BuildHoldings(txs, PriceMap{"AAPL": decimal.NewFromInt(100)}, fallback)
	assert.Empty(t, holdings)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueNegativeQuantity, issues[0].Kind)
	assert.Equal(t, "AAPL", issues[0].Symbol)

	assert.Equal(t, int64(-3), NetQuantity(txs, "AAPL"))
}

func TestBuildHoldings_MissingPriceUsesFallback(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "UNKNOWN", domain.ActionBuy, 3, 50, base),
	}

	holdings, issues := BuildHoldings(txs, PriceMap{}, fallback)
	require.Empty(t, issues)
	require.Len(t, holdings, 1)

	h := holdings[0]
	assert.True(t, h.CurrentPrice.Equal(fallback))
	assert.True(t, h.MarketValue.Equal(decimal.NewFromInt(300)))
	// 3 shares at $50 basis marked at $100 is +100%
	assert.True(t, h.ReturnPercent.Equal(decimal.NewFromInt(100)), "return %s", h.ReturnPercent)
}

func TestBuildHoldings_FirstAppearanceOrder(t *testing.T) {
	base := time.Now()
	txs := []domain.Transaction{
		tx(t, 1, "MSFT", domain.ActionBuy, 1, 400, base),
		tx(t, 2, "AAPL", domain.ActionBuy, 1, 180, base.Add(time.Minute)),
		tx(t, 3, "MSFT", domain.ActionBuy, 1, 410, base.Add(2*time.Minute)),
	}

	holdings, _ := BuildHoldings(txs, PriceMap{}, fallback)
	require.Len(t, holdings, 2)
	assert.Equal(t, "MSFT", holdings[0].Symbol)
	assert.Equal(t, "AAPL", holdings[1].Symbol)
}

func TestBuildHoldings_MalformedRecordSkipped(t *testing.T) {
	base := time.Now()
	good := tx(t, 1, "AAPL", domain.ActionBuy, 10, 100, base)
	bad := good
	bad.Seq = 2
	bad.Quantity = 0 // corrupt record injected past constructor validation

	holdings, issues := BuildHoldings([]domain.Transaction{good, bad}, PriceMap{}, fallback)
	require.Len(t, holdings, 1)
	assert.Equal(t, int64(10), holdings[0].Quantity)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueMalformedRecord, issues[0].Kind)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, decimal.Zero)
	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.TotalCost.IsZero())
	assert.True(t, summary.TotalGainLoss.IsZero())
	assert.True(t, summary.TotalReturnPercent.IsZero())
	assert.Equal(t, 0, summary.HoldingsCount)
}
