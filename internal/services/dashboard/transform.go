// Package dashboard runs the trade metrics pipeline: load, enrich, aggregate,
// select a view, render.
package dashboard

import (
	"sort"
	"time"

	"github.com/mhollowell/tradedeck/internal/models"
)

// monthKey formats a date as the YYYY-MM grouping key. Chronological and
// lexicographic order coincide for this shape.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Enrich sorts records ascending by date (stable, so source order breaks
// ties) and computes the running columns in a single left-to-right scan.
// The scan, not a batch formula, is what makes cumulative values reflect
// insertion order after the sort. Percentages are raw ratios times 100;
// rounding happens at display time only.
func Enrich(records []models.TradeRecord, startingCapital float64) []models.EnrichedTrade {
	sorted := make([]models.TradeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	enriched := make([]models.EnrichedTrade, len(sorted))
	cumulative := 0.0
	for i, r := range sorted {
		cumulative += r.ProfitAndLoss
		enriched[i] = models.EnrichedTrade{
			TradeRecord:        r,
			CumulativePnL:      cumulative,
			Equity:             startingCapital + cumulative,
			ReturnPercent:      cumulative / startingCapital * 100,
			DailyReturnPercent: r.ProfitAndLoss / startingCapital * 100,
			Month:              monthKey(r.Date),
		}
	}

	return enriched
}

// MonthlyAggregates groups enriched trades by calendar month, in
// chronological order.
func MonthlyAggregates(trades []models.EnrichedTrade, startingCapital float64) []models.MonthlyAggregate {
	totals := make(map[string]float64)
	var order []string
	for _, t := range trades {
		if _, seen := totals[t.Month]; !seen {
			order = append(order, t.Month)
		}
		totals[t.Month] += t.ProfitAndLoss
	}

	// Trades arrive date-sorted, so first-seen order is already
	// chronological; the sort guards against direct calls with
	// unsorted input.
	sort.Strings(order)

	monthly := make([]models.MonthlyAggregate, len(order))
	for i, month := range order {
		monthly[i] = models.MonthlyAggregate{
			Month:         month,
			TotalPnL:      totals[month],
			ReturnPercent: totals[month] / startingCapital * 100,
		}
	}

	return monthly
}

// Summarize derives the headline figures from the enriched sequence.
// Callers must not pass an empty slice; the service short-circuits to the
// empty state before transforming.
func Summarize(trades []models.EnrichedTrade, startingCapital float64) models.DashboardSummary {
	last := trades[len(trades)-1]

	summary := models.DashboardSummary{
		StartingCapital: startingCapital,
		CurrentEquity:   last.Equity,
		TotalPnL:        last.CumulativePnL,
		TotalReturnPct:  last.ReturnPercent,
		TradeCount:      len(trades),
		FirstTradeDate:  trades[0].Date,
		LastTradeDate:   last.Date,
		LoadedAt:        time.Now().UTC(),
	}

	for _, t := range trades {
		switch t.Outcome {
		case models.OutcomeWin:
			summary.Wins++
		case models.OutcomeLoss:
			summary.Losses++
		default:
			summary.BreakEvens++
		}
	}
	summary.WinRatePct = float64(summary.Wins) / float64(len(trades)) * 100

	return summary
}
