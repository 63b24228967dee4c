// Package interfaces defines service contracts for Tradedeck
package interfaces

import (
	"context"

	"github.com/mhollowell/tradedeck/internal/models"
)

// TradeSource loads normalized trade records from a journal backend.
// Implementations skip malformed rows and return an error only on total
// failure (unreachable service, bad credentials, misconfigured identifier).
type TradeSource interface {
	// FetchTrades returns all valid trade records from the journal.
	FetchTrades(ctx context.Context) ([]models.TradeRecord, error)

	// Key identifies the journal for caching (database ID or table address).
	Key() string

	// Describe returns a human-readable description of the backend.
	Describe() string
}

// InsightClient generates a natural-language recap of dashboard figures.
type InsightClient interface {
	GenerateRecap(ctx context.Context, prompt string) (string, error)
	Close() error
}
