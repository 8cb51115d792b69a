// Package ledger derives portfolio state from the append-only trade ledger.
//
// Holdings are a pure function of (transactions, current prices): every view
// in the application goes through this package instead of re-deriving cost
// basis on its own. The engine performs no I/O and never mutates its input.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/smartinvest/server/internal/domain"
)

// PriceSource resolves the current market price for a symbol. The second
// return value reports availability; an unavailable price must never be
// treated as zero.
type PriceSource interface {
	PriceFor(symbol string) (decimal.Decimal, bool)
}

// PriceMap is a snapshot price lookup taken before reconciliation.
type PriceMap map[string]decimal.Decimal

// PriceFor implements PriceSource.
func (m PriceMap) PriceFor(symbol string) (decimal.Decimal, bool) {
	price, ok := m[symbol]
	return price, ok
}

// IssueKind classifies a reconciliation problem.
type IssueKind string

const (
	// IssueNegativeQuantity marks a symbol whose recorded sells exceed its
	// recorded buys. This is ledger corruption or an upstream oversell bug,
	// never a valid short position.
	IssueNegativeQuantity IssueKind = "negative_quantity"
	// IssueMalformedRecord marks a transaction with a non-positive quantity
	// or price that was skipped during reconciliation.
	IssueMalformedRecord IssueKind = "malformed_record"
)

// Issue is a data-integrity problem surfaced alongside the holdings view.
// Issues are reported, never repaired: the engine does not clamp or drop
// ledger data silently.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Symbol string    `json:"symbol"`
	Detail string    `json:"detail"`
}

// AverageCost computes the weighted-average cost basis per currently-held
// share from the full transaction history of one symbol.
//
// Buys blend into the running average; a sell removes shares at the running
// average and therefore never changes the cost basis of the shares that
// remain. When no shares remain the average is undefined and the fallback
// (normally the current market price) is returned; callers must not treat it
// as a meaningful cost basis.
func AverageCost(txs []domain.Transaction, fallback decimal.Decimal) decimal.Decimal {
	shares, cost := replay(sortChronological(txs))
	if shares.IsPositive() {
		return cost.Div(shares)
	}
	return fallback
}

// replay runs the sequential weighted-average accounting over transactions
// that are already in chronological order. A sell larger than the running
// share count drives the count negative; callers surface that as an
// integrity issue. Malformed records must be filtered out beforehand.
func replay(txs []domain.Transaction) (shares, cost decimal.Decimal) {
	shares, cost = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		qty := tx.QuantityDecimal()
		switch tx.Action {
		case domain.ActionBuy:
			cost = cost.Add(qty.Mul(tx.Price))
			shares = shares.Add(qty)
		case domain.ActionSell:
			avg := decimal.Zero
			if shares.IsPositive() {
				avg = cost.Div(shares)
			}
			cost = cost.Sub(qty.Mul(avg))
			shares = shares.Sub(qty)
		}
	}
	return shares, cost
}

// NetQuantity returns the current net share count for one symbol. It runs the
// same replay as AverageCost so the two can never disagree.
func NetQuantity(txs []domain.Transaction, symbol string) int64 {
	var forSymbol []domain.Transaction
	for _, tx := range txs {
		if tx.Symbol == symbol && wellFormed(tx) {
			forSymbol = append(forSymbol, tx)
		}
	}
	shares, _ := replay(sortChronological(forSymbol))
	return shares.IntPart()
}

// BuildHoldings groups the transaction log by symbol and reconciles each
// group into a current holding. Output order is the symbol's first
// appearance in the log. Symbols with a zero net position are excluded from
// the view (their history stays in the ledger); symbols with a negative net
// position are excluded and reported as an integrity issue.
//
// A symbol missing from the price source uses fallbackPrice so one missing
// quote never breaks the rest of the view or produces a -100% return.
func BuildHoldings(txs []domain.Transaction, prices PriceSource, fallbackPrice decimal.Decimal) ([]domain.Holding, []Issue) {
	var issues []Issue

	grouped := make(map[string][]domain.Transaction)
	var order []string
	names := make(map[string]string)

	for _, tx := range txs {
		if !wellFormed(tx) {
			issues = append(issues, Issue{
				Kind:   IssueMalformedRecord,
				Symbol: tx.Symbol,
				Detail: fmt.Sprintf("skipped record %s: quantity=%d price=%s", tx.ID, tx.Quantity, tx.Price.String()),
			})
			continue
		}
		if _, seen := grouped[tx.Symbol]; !seen {
			order = append(order, tx.Symbol)
		}
		grouped[tx.Symbol] = append(grouped[tx.Symbol], tx)
		if tx.StockName != "" {
			names[tx.Symbol] = tx.StockName
		}
	}

	holdings := make([]domain.Holding, 0, len(order))

	for _, symbol := range order {
		forSymbol := sortChronological(grouped[symbol])
		shares, cost := replay(forSymbol)

		if shares.IsNegative() {
			issues = append(issues, Issue{
				Kind:   IssueNegativeQuantity,
				Symbol: symbol,
				Detail: fmt.Sprintf("net quantity %s: sells exceed recorded buys", shares.String()),
			})
			continue
		}
		if shares.IsZero() {
			continue
		}

		currentPrice, ok := prices.PriceFor(symbol)
		if !ok || currentPrice.LessThanOrEqual(decimal.Zero) {
			currentPrice = fallbackPrice
		}

		avgCost := cost.Div(shares)
		marketValue := shares.Mul(currentPrice)
		costBasis := shares.Mul(avgCost)
		gainLoss := marketValue.Sub(costBasis)

		returnPercent := decimal.Zero
		if costBasis.IsPositive() {
			returnPercent = gainLoss.Div(costBasis).Mul(decimal.NewFromInt(100))
		}

		holdings = append(holdings, domain.Holding{
			Symbol:             symbol,
			StockName:          names[symbol],
			Quantity:           shares.IntPart(),
			AverageCost:        avgCost,
			CurrentPrice:       currentPrice,
			MarketValue:        marketValue,
			UnrealizedGainLoss: gainLoss,
			ReturnPercent:      returnPercent,
		})
	}

	return holdings, issues
}

// Summarize aggregates a holdings view with the account cash balance. An
// empty view yields an all-zero summary; that is a normal outcome, not an
// error.
func Summarize(holdings []domain.Holding, balance decimal.Decimal) domain.Summary {
	totalValue, totalCost := decimal.Zero, decimal.Zero
	for _, h := range holdings {
		totalValue = totalValue.Add(h.MarketValue)
		totalCost = totalCost.Add(h.CostBasis())
	}

	totalGainLoss := totalValue.Sub(totalCost)
	totalReturnPercent := decimal.Zero
	if totalCost.IsPositive() {
		totalReturnPercent = totalGainLoss.Div(totalCost).Mul(decimal.NewFromInt(100))
	}

	return domain.Summary{
		TotalValue:         totalValue,
		TotalCost:          totalCost,
		TotalGainLoss:      totalGainLoss,
		TotalReturnPercent: totalReturnPercent,
		AvailableCash:      balance,
		HoldingsCount:      len(holdings),
	}
}

func wellFormed(tx domain.Transaction) bool {
	if tx.Action != domain.ActionBuy && tx.Action != domain.ActionSell {
		return false
	}
	return tx.Quantity > 0 && tx.Price.GreaterThan(decimal.Zero)
}

// sortChronological orders transactions by execution time, breaking ties on
// the ledger sequence number so reconciliation stays deterministic.
func sortChronological(txs []domain.Transaction) []domain.Transaction {
	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Seq < sorted[j].Seq
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
