// Package domain defines core data structures used throughout the trading server.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Action is the side of an executed trade.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// ParseAction converts a string to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ActionBuy):
		return ActionBuy, nil
	case string(ActionSell):
		return ActionSell, nil
	}
	return "", fmt.Errorf("unknown trade action %q", s)
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// Transaction is a single executed trade. Records are immutable once appended
// to the ledger; holdings are always re-derived from them, never stored.
type Transaction struct {
	ID        string          `json:"id"`
	Seq       uint64          `json:"seq"`
	Username  string          `json:"username"`
	Symbol    string          `json:"symbol"`
	StockName string          `json:"stock_name,omitempty"`
	Action    Action          `json:"action"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	OrderType string          `json:"order_type,omitempty"`
	Duration  string          `json:"duration,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTransaction validates and builds a trade record. Total is derived from
// quantity and price; Seq is assigned by the ledger store on append.
func NewTransaction(id, username, symbol string, action Action, quantity int64, price decimal.Decimal, at time.Time) (Transaction, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if id == "" {
		return Transaction{}, fmt.Errorf("transaction id is required")
	}
	if username == "" {
		return Transaction{}, fmt.Errorf("transaction username is required")
	}
	if symbol == "" {
		return Transaction{}, fmt.Errorf("transaction symbol is required")
	}
	if action != ActionBuy && action != ActionSell {
		return Transaction{}, fmt.Errorf("unknown trade action %q", action)
	}
	if quantity <= 0 {
		return Transaction{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, fmt.Errorf("price must be positive, got %s", price.String())
	}

	qty := decimal.NewFromInt(quantity)

	return Transaction{
		ID:        id,
		Username:  username,
		Symbol:    symbol,
		Action:    action,
		Quantity:  quantity,
		Price:     price,
		Total:     qty.Mul(price),
		Timestamp: at,
	}, nil
}

// QuantityDecimal returns the share count as a decimal for cost arithmetic.
func (t Transaction) QuantityDecimal() decimal.Decimal {
	return decimal.NewFromInt(t.Quantity)
}

// String returns a human-readable string representation.
func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %d@%s", t.Action, t.Symbol, t.Quantity, t.Price.StringFixed(2))
}
