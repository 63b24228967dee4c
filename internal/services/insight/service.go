// Package insight generates an AI recap of dashboard performance figures.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mhollowell/tradedeck/internal/common"
	"github.com/mhollowell/tradedeck/internal/interfaces"
)

// ErrNotConfigured is returned when no AI client is available.
var ErrNotConfigured = errors.New("insight client not configured")

// Service wraps an InsightClient with prompt construction.
type Service struct {
	client interfaces.InsightClient
	logger *common.Logger
}

// NewService creates the insight service. client may be nil, in which case
// Recap returns ErrNotConfigured.
func NewService(client interfaces.InsightClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{client: client, logger: logger}
}

// Configured reports whether an AI client is wired.
func (s *Service) Configured() bool {
	return s.client != nil
}

// Recap produces a short natural-language summary of the snapshot.
func (s *Service) Recap(ctx context.Context, snap *interfaces.DashboardSnapshot) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}

	prompt := buildRecapPrompt(snap)
	s.logger.Debug().Int("trades", snap.Summary.TradeCount).Msg("Generating performance recap")

	text, err := s.client.GenerateRecap(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate recap: %w", err)
	}
	return text, nil
}

// buildRecapPrompt renders the summary and monthly table into a prompt.
func buildRecapPrompt(snap *interfaces.DashboardSnapshot) string {
	var sb strings.Builder

	sum := snap.Summary
	fmt.Fprintf(&sb, `You are reviewing a personal trading journal. Summarize the performance
below in 3-4 sentences: overall result, win rate, and the strongest and
weakest month. Plain prose, no bullet points, no advice.

Starting capital: $%.2f
Current equity: $%.2f
Total P&L: $%.2f (%.2f%%)
Trades: %d (%d wins, %d losses, %d break-even; win rate %.1f%%)

Monthly P&L:
`, sum.StartingCapital, sum.CurrentEquity, sum.TotalPnL, sum.TotalReturnPct,
		sum.TradeCount, sum.Wins, sum.Losses, sum.BreakEvens, sum.WinRatePct)

	for _, m := range snap.Monthly {
		fmt.Fprintf(&sb, "- %s: $%.2f (%.2f%%)\n", m.Month, m.TotalPnL, m.ReturnPercent)
	}

	return sb.String()
}

// Ensure Service implements InsightService
var _ interfaces.InsightService = (*Service)(nil)
