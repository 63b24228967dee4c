package notion

import (
	"context"
	"fmt"

	"github.com/mhollowell/tradedeck/internal/common"
	"github.com/mhollowell/tradedeck/internal/models"
)

// Source adapts the client into a trade source: query the database, parse
// each row best-effort, skip malformed rows silently.
type Source struct {
	client *Client
	logger *common.Logger
}

// NewSource creates a trade source backed by a Notion database.
func NewSource(client *Client, logger *common.Logger) *Source {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Source{client: client, logger: logger}
}

// FetchTrades queries the journal and returns the rows that parse. A nil
// error with zero records means the database is empty or nothing parsed;
// a non-nil error means the query itself failed.
func (s *Source) FetchTrades(ctx context.Context) ([]models.TradeRecord, error) {
	pages, err := s.client.QueryDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}

	records := make([]models.TradeRecord, 0, len(pages))
	skipped := 0
	for _, page := range pages {
		record, err := ParseTradeRecord(page)
		if err != nil {
			skipped++
			s.logger.Debug().Err(err).Msg("Skipping malformed journal row")
			continue
		}
		records = append(records, record)
	}

	if skipped > 0 {
		s.logger.Info().Int("loaded", len(records)).Int("skipped", skipped).Msg("Journal rows skipped during load")
	}

	return records, nil
}

// Key identifies the journal for caching.
func (s *Source) Key() string {
	return s.client.databaseID
}

// Describe returns a human-readable description of the backend.
func (s *Source) Describe() string {
	return fmt.Sprintf("notion database %s", maskID(s.client.databaseID))
}

func maskID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}
