package interfaces

import (
	"context"

	"github.com/mhollowell/tradedeck/internal/models"
)

// DashboardSnapshot is the full pipeline output for one render cycle.
type DashboardSnapshot struct {
	Summary models.DashboardSummary   `json:"summary"`
	Trades  []models.EnrichedTrade    `json:"trades"`
	Monthly []models.MonthlyAggregate `json:"monthly"`
}

// DashboardService runs the load → transform pipeline.
type DashboardService interface {
	// Snapshot returns the enriched table, monthly aggregates and summary.
	// force bypasses the record cache. Returns ErrNoTrades when the journal
	// yields no valid records.
	Snapshot(ctx context.Context, force bool) (*DashboardSnapshot, error)

	// Refresh invalidates the record cache and reloads immediately.
	Refresh(ctx context.Context) (*DashboardSnapshot, error)

	// ChartPNG renders the named view as a PNG image.
	ChartPNG(ctx context.Context, view string) ([]byte, error)
}

// InsightService produces the optional AI performance recap.
type InsightService interface {
	Recap(ctx context.Context, snap *DashboardSnapshot) (string, error)
}
