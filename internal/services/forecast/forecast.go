// Package forecast produces pseudo price projections for the forecast view.
// The projection extrapolates the simulator's price history with moving
// averages; it is an educational visualization, not a trained model.
package forecast

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
	"github.com/smartinvest/server/pkg/indicators"
)

const (
	// forecastSteps is the number of projected points returned per request.
	forecastSteps = 7
	// minHistory is the smallest history the indicators need; shorter
	// histories are padded with the oldest observed price.
	minHistory = 15

	smaPeriod = 5
	emaPeriod = 10
	rsiPeriod = 14
)

// History provides recorded price ticks for a symbol, oldest first.
type History interface {
	History(symbol string) []decimal.Decimal
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Service builds forecasts from simulated price history.
type Service struct {
	history History
	logger  *zap.Logger
}

// NewService creates a forecast service.
func NewService(history History, logger *zap.Logger) (*Service, error) {
	if history == nil {
		return nil, errors.New("price history source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{history: history, logger: logger}, nil
}

// Forecast projects the symbol's price forecastSteps ticks ahead.
func (s *Service) Forecast(ctx context.Context, symbol string) (domain.Forecast, error) {
	current, err := s.history.GetPrice(ctx, symbol)
	if err != nil {
		return domain.Forecast{}, errors.Wrapf(err, "resolve price for %s", symbol)
	}

	closes := s.history.History(symbol)
	closes = padHistory(closes, current, minHistory)

	sma, err := indicators.CalculateSMA(closes, smaPeriod)
	if err != nil {
		return domain.Forecast{}, errors.Wrap(err, "compute SMA")
	}
	ema, err := indicators.CalculateEMA(closes, emaPeriod)
	if err != nil {
		return domain.Forecast{}, errors.Wrap(err, "compute EMA")
	}

	drift := trendDrift(sma, ema, current)
	predictions := project(current, drift)
	direction := direction(drift, current)
	confidence := confidence(closes)

	s.logger.Debug("forecast generated",
		zap.String("symbol", symbol),
		zap.String("direction", direction),
		zap.String("confidence", confidence.String()))

	return domain.Forecast{
		Symbol:      symbol,
		Predictions: predictions,
		Confidence:  confidence,
		Direction:   direction,
		GeneratedAt: time.Now(),
	}, nil
}

// padHistory front-fills short histories so the indicator windows are full.
func padHistory(closes []decimal.Decimal, current decimal.Decimal, min int) []decimal.Decimal {
	if len(closes) >= min {
		return closes
	}

	fill := current
	if len(closes) > 0 {
		fill = closes[0]
	}

	padded := make([]decimal.Decimal, 0, min)
	for i := len(closes); i < min; i++ {
		padded = append(padded, fill)
	}
	return append(padded, closes...)
}

// trendDrift estimates the per-step price drift from the gap between the
// short moving average and the long one.
func trendDrift(sma, ema []decimal.Decimal, current decimal.Decimal) decimal.Decimal {
	if len(sma) == 0 || len(ema) == 0 {
		return decimal.Zero
	}

	gap := sma[len(sma)-1].Sub(ema[len(ema)-1])
	if current.IsZero() {
		return decimal.Zero
	}

	// spread the gap over the projection horizon, capped at 1% per step
	drift := gap.Div(decimal.NewFromInt(forecastSteps))
	maxStep := current.Mul(decimal.NewFromFloat(0.01))
	if drift.Abs().GreaterThan(maxStep) {
		if drift.IsNegative() {
			return maxStep.Neg()
		}
		return maxStep
	}
	return drift
}

// project extends the current price by the drift with mild damping, so far
// steps move less than near ones.
func project(current, drift decimal.Decimal) []decimal.Decimal {
	predictions := make([]decimal.Decimal, 0, forecastSteps)
	price := current
	step := drift
	damping := decimal.NewFromFloat(0.9)

	for i := 0; i < forecastSteps; i++ {
		price = price.Add(step).Round(2)
		if price.LessThanOrEqual(decimal.Zero) {
			price = current
		}
		predictions = append(predictions, price)
		step = step.Mul(damping)
	}
	return predictions
}

func direction(drift, current decimal.Decimal) string {
	if current.IsZero() {
		return domain.DirectionSideways
	}

	// a drift under 0.05% per step reads as flat
	threshold := current.Mul(decimal.NewFromFloat(0.0005))
	switch {
	case drift.GreaterThan(threshold):
		return domain.DirectionUp
	case drift.LessThan(threshold.Neg()):
		return domain.DirectionDown
	default:
		return domain.DirectionSideways
	}
}

// confidence maps recent RSI distance from the neutral 50 line into a
// 0.50-0.90 score: the stronger the momentum reading, the more the
// projection commits to it.
func confidence(closes []decimal.Decimal) decimal.Decimal {
	base := decimal.NewFromFloat(0.50)

	rsi, err := indicators.CalculateRSI(closes, rsiPeriod)
	if err != nil || len(rsi) == 0 {
		return base
	}

	distance := rsi[len(rsi)-1].Sub(decimal.NewFromInt(50)).Abs()
	bonus := distance.Div(decimal.NewFromInt(125)) // 50 points from neutral adds 0.40
	score := base.Add(bonus)

	max := decimal.NewFromFloat(0.90)
	if score.GreaterThan(max) {
		return max
	}
	return score.Round(2)
}
