package dashboard

import (
	"errors"
	"fmt"

	"github.com/mhollowell/tradedeck/internal/models"
)

// ErrUnknownView is returned for a view name outside models.ViewNames.
var ErrUnknownView = errors.New("unknown view")

// signColor applies the fixed color policy: non-negative amounts green,
// negative red.
func signColor(v float64) string {
	if v < 0 {
		return models.ColorNegative
	}
	return models.ColorPositive
}

// BuildChartSpec maps a view name plus the transformed table to a chart
// description. Pure function: no I/O, no clock, deterministic for a given
// input. Rendering backends consume the spec as-is.
func BuildChartSpec(view string, trades []models.EnrichedTrade, monthly []models.MonthlyAggregate) (*models.ChartSpec, error) {
	title, ok := models.ViewTitles[view]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	spec := &models.ChartSpec{View: view, Title: title}

	switch view {
	case models.ViewEquity:
		points := make([]models.ChartPoint, len(trades))
		for i, t := range trades {
			points[i] = models.ChartPoint{
				Label: t.Symbol,
				Date:  t.Date,
				Value: t.Equity,
			}
		}
		spec.Series = []models.ChartSeries{{
			Name:   "Equity",
			Kind:   models.SeriesLine,
			Color:  models.ColorPositive,
			Points: points,
		}}

	case models.ViewDaily:
		points := make([]models.ChartPoint, len(trades))
		for i, t := range trades {
			points[i] = models.ChartPoint{
				Label: t.Symbol,
				Date:  t.Date,
				Value: t.ProfitAndLoss,
				Color: signColor(t.ProfitAndLoss),
			}
		}
		spec.Series = []models.ChartSeries{{
			Name:   "P&L",
			Kind:   models.SeriesBars,
			Points: points,
		}}

	case models.ViewMonthly:
		points := make([]models.ChartPoint, len(monthly))
		for i, m := range monthly {
			points[i] = models.ChartPoint{
				Label: m.Month,
				Value: m.TotalPnL,
				Color: signColor(m.TotalPnL),
			}
		}
		spec.Series = []models.ChartSeries{{
			Name:   "Monthly P&L",
			Kind:   models.SeriesBars,
			Points: points,
		}}

	case models.ViewOutcomes:
		counts := map[string]int{}
		for _, t := range trades {
			counts[t.Outcome]++
		}
		colors := map[string]string{
			models.OutcomeWin:       models.ColorPositive,
			models.OutcomeLoss:      models.ColorNegative,
			models.OutcomeBreakEven: models.ColorNeutral,
		}
		var points []models.ChartPoint
		for _, outcome := range []string{models.OutcomeWin, models.OutcomeLoss, models.OutcomeBreakEven} {
			if counts[outcome] == 0 {
				continue
			}
			points = append(points, models.ChartPoint{
				Label: outcome,
				Value: float64(counts[outcome]),
				Color: colors[outcome],
			})
		}
		spec.Series = []models.ChartSeries{{
			Name:   "Outcomes",
			Kind:   models.SeriesDonut,
			Points: points,
		}}
	}

	return spec, nil
}
