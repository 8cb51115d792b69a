// Package pricer provides current prices for ticker symbols.
package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable is returned for symbols the price source does not know.
// Callers substitute a defined fallback; they must never treat this as zero.
var ErrPriceUnavailable = errors.New("price unavailable")

// Pricer defines an interface for getting the current price of a symbol.
type Pricer interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
