package domain

import "github.com/shopspring/decimal"

// Holding is a derived position in one symbol: share count and cost basis as
// of the latest reconciliation. It is recomputed from the transaction ledger
// on every read and never persisted as authoritative state.
type Holding struct {
	Symbol             string          `json:"symbol"`
	StockName          string          `json:"stock_name,omitempty"`
	Quantity           int64           `json:"quantity"`
	AverageCost        decimal.Decimal `json:"average_cost"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	MarketValue        decimal.Decimal `json:"market_value"`
	UnrealizedGainLoss decimal.Decimal `json:"unrealized_gain_loss"`
	ReturnPercent      decimal.Decimal `json:"return_percent"`
}

// CostBasis returns the total amount paid for the shares still held.
func (h Holding) CostBasis() decimal.Decimal {
	return decimal.NewFromInt(h.Quantity).Mul(h.AverageCost)
}

// Summary aggregates a holdings view with the account cash balance.
type Summary struct {
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	TotalGainLoss      decimal.Decimal `json:"total_gain_loss"`
	TotalReturnPercent decimal.Decimal `json:"total_return_percent"`
	AvailableCash      decimal.Decimal `json:"available_cash"`
	HoldingsCount      int             `json:"holdings_count"`
}
