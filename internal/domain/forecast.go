package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Forecast direction labels.
const (
	DirectionUp       = "UP"
	DirectionDown     = "DOWN"
	DirectionSideways = "SIDEWAYS"
)

// Forecast is a multi-step price projection for one symbol. The projection is
// derived from simulated price history, not from a trained model.
type Forecast struct {
	Symbol      string            `json:"symbol"`
	Predictions []decimal.Decimal `json:"predictions"`
	Confidence  decimal.Decimal   `json:"confidence"`
	Direction   string            `json:"direction"`
	GeneratedAt time.Time         `json:"generated_at"`
}
