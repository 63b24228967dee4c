package notion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mhollowell/tradedeck/internal/models"
)

// Field resolution policy for journal rows. Each field resolves through an
// ordered chain of property names; the first successful extraction wins.
//
//	symbol: "Name" title, then "Symbol" title, else "Unknown"
//	p&l:    "P&L" number, missing or null treated as 0
//	date:   "Trade Date" date, then "Date" date; the range end is preferred
//	        over the start (closing date); neither present drops the row
//
// Outcome is never read from source. It is always recomputed from the sign
// of the resolved P&L.
var (
	symbolChain = []string{"Name", "Symbol"}
	dateChain   = []string{"Trade Date", "Date"}

	pnlProperty = "P&L"
)

// ErrNoDate marks a row without any resolvable date. Such rows are dropped
// entirely rather than defaulted.
var ErrNoDate = errors.New("no resolvable date")

// ParseTradeRecord normalizes one database page into a TradeRecord. It
// returns an error for rows that must be skipped; the caller counts and
// logs failures without surfacing them.
func ParseTradeRecord(page models.NotionPage) (models.TradeRecord, error) {
	date, err := resolveDate(page.Properties)
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("page %s: %w", page.ID, err)
	}

	pnl := resolveNumber(page.Properties, pnlProperty)

	return models.TradeRecord{
		Symbol:        resolveTitle(page.Properties, symbolChain),
		Date:          date,
		ProfitAndLoss: pnl,
		Outcome:       models.ClassifyOutcome(pnl),
	}, nil
}

// resolveTitle returns the first non-empty title text in the chain.
func resolveTitle(props map[string]models.NotionProperty, chain []string) string {
	for _, name := range chain {
		prop, ok := props[name]
		if !ok || len(prop.Title) == 0 {
			continue
		}
		text := strings.TrimSpace(prop.Title[0].PlainText)
		if text != "" {
			return text
		}
	}
	return models.SymbolUnknown
}

// resolveNumber returns the named number property, or 0 when missing or null.
func resolveNumber(props map[string]models.NotionProperty, name string) float64 {
	prop, ok := props[name]
	if !ok || prop.Number == nil {
		return 0
	}
	return *prop.Number
}

// resolveDate walks the date chain, preferring a range's end over its start.
func resolveDate(props map[string]models.NotionProperty) (time.Time, error) {
	for _, name := range dateChain {
		prop, ok := props[name]
		if !ok || prop.Date == nil {
			continue
		}

		raw := prop.Date.End
		if raw == "" {
			raw = prop.Date.Start
		}
		if raw == "" {
			continue
		}

		t, err := parseNotionTime(raw)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, ErrNoDate
}

// parseNotionTime accepts the two shapes Notion emits: a date-only string or
// an RFC 3339 datetime.
func parseNotionTime(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
