// Package models defines data structures for Tradedeck
package models

import "time"

// Trade outcomes, derived from the sign of the P&L. Never read from source.
const (
	OutcomeWin       = "Win"
	OutcomeLoss      = "Loss"
	OutcomeBreakEven = "Break Even"
)

// SymbolUnknown is the sentinel symbol for rows without a resolvable name.
const SymbolUnknown = "Unknown"

// ClassifyOutcome maps a P&L amount to its outcome label. Exactly zero is
// treated as break-even; fold it into OutcomeLoss here if a deployment wants
// a two-way split.
func ClassifyOutcome(pnl float64) string {
	switch {
	case pnl > 0:
		return OutcomeWin
	case pnl < 0:
		return OutcomeLoss
	default:
		return OutcomeBreakEven
	}
}

// TradeRecord is a normalized row from the journal source. Every record that
// survives loading has a resolvable date and a numeric P&L (possibly zero).
type TradeRecord struct {
	Symbol        string    `json:"symbol"`
	Date          time.Time `json:"date"`
	ProfitAndLoss float64   `json:"profit_and_loss"`
	Outcome       string    `json:"outcome"`
}

// EnrichedTrade is a TradeRecord with running metrics, computed over the
// date-sorted sequence.
type EnrichedTrade struct {
	TradeRecord

	CumulativePnL      float64 `json:"cumulative_pnl"`
	Equity             float64 `json:"equity"`
	ReturnPercent      float64 `json:"return_percent"`
	DailyReturnPercent float64 `json:"daily_return_percent"`
	Month              string  `json:"month"` // YYYY-MM grouping key
}

// MonthlyAggregate sums P&L for one calendar month.
type MonthlyAggregate struct {
	Month         string  `json:"month"`
	TotalPnL      float64 `json:"total_pnl"`
	ReturnPercent float64 `json:"return_percent"`
}

// DashboardSummary holds the headline figures shown above the chart.
type DashboardSummary struct {
	StartingCapital float64   `json:"starting_capital"`
	CurrentEquity   float64   `json:"current_equity"`
	TotalPnL        float64   `json:"total_pnl"`
	TotalReturnPct  float64   `json:"total_return_pct"`
	TradeCount      int       `json:"trade_count"`
	Wins            int       `json:"wins"`
	Losses          int       `json:"losses"`
	BreakEvens      int       `json:"break_evens"`
	WinRatePct      float64   `json:"win_rate_pct"`
	FirstTradeDate  time.Time `json:"first_trade_date"`
	LastTradeDate   time.Time `json:"last_trade_date"`
	LoadedAt        time.Time `json:"loaded_at"`
}

// Dashboard view names, matching the original page's selector.
const (
	ViewEquity   = "equity"   // account growth curve
	ViewDaily    = "daily"    // per-trade P&L bars
	ViewMonthly  = "monthly"  // per-month P&L bars
	ViewOutcomes = "outcomes" // win/loss/break-even share
)

// ViewNames lists the selectable views in display order.
var ViewNames = []string{ViewEquity, ViewDaily, ViewMonthly, ViewOutcomes}

// ViewTitles maps view names to their display titles.
var ViewTitles = map[string]string{
	ViewEquity:   "Account Growth",
	ViewDaily:    "Daily P&L",
	ViewMonthly:  "Monthly Returns",
	ViewOutcomes: "Win Rate",
}

// Fixed color policy: non-negative amounts in green, negative in red,
// break-even in neutral gray. Hex without the leading '#'.
const (
	ColorPositive = "00C805"
	ColorNegative = "FF3B30"
	ColorNeutral  = "9CA3AF"
)

// SeriesKind distinguishes how a chart series is drawn.
type SeriesKind string

const (
	SeriesLine  SeriesKind = "line"
	SeriesBars  SeriesKind = "bars"
	SeriesDonut SeriesKind = "donut"
)

// ChartPoint is one datum in a chart series. Bars and donut slices carry a
// per-point color; line series use the series color.
type ChartPoint struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date,omitempty"`
	Value float64   `json:"value"`
	Color string    `json:"color,omitempty"`
}

// ChartSeries is a named sequence of points with a draw style.
type ChartSeries struct {
	Name   string       `json:"name"`
	Kind   SeriesKind   `json:"kind"`
	Color  string       `json:"color,omitempty"`
	Points []ChartPoint `json:"points"`
}

// ChartSpec is the chart description produced by the view selector. It is a
// pure value: rendering (PNG or a future JS frontend) consumes it as-is.
type ChartSpec struct {
	View   string        `json:"view"`
	Title  string        `json:"title"`
	Series []ChartSeries `json:"series"`
}
