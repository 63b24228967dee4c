// Package surreal provides a SurrealDB-backed trade journal source
package surreal

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/mhollowell/tradedeck/internal/common"
	"github.com/mhollowell/tradedeck/internal/interfaces"
	"github.com/mhollowell/tradedeck/internal/models"
)

// JournalRow is the raw shape of one trade row in the journal table.
// Pointer fields distinguish absent from zero; normalization applies the
// same rules as the Notion source (missing P&L is 0, missing date drops
// the row, outcome always recomputed).
type JournalRow struct {
	Symbol        string     `json:"symbol"`
	TradeDate     *time.Time `json:"trade_date"`
	ProfitAndLoss *float64   `json:"profit_and_loss"`
}

// Source implements interfaces.TradeSource against a SurrealDB table.
type Source struct {
	db     *surrealdb.DB
	table  string
	addr   string
	logger *common.Logger
}

// NewSource connects to SurrealDB and prepares the journal table.
func NewSource(logger *common.Logger, cfg common.SurrealConfig) (*Source, error) {
	ctx := context.Background()

	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" {
		if _, err := db.SignIn(ctx, map[string]interface{}{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = "trades"
	}

	// SurrealDB v3 errors on querying non-existent tables
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", table, err)
	}

	if logger == nil {
		logger = common.NewSilentLogger()
	}

	return &Source{
		db:     db,
		table:  table,
		addr:   cfg.Address,
		logger: logger,
	}, nil
}

// FetchTrades selects all journal rows and normalizes them. Rows without a
// trade date are skipped silently; a query failure is surfaced.
func (s *Source) FetchTrades(ctx context.Context) ([]models.TradeRecord, error) {
	sql := fmt.Sprintf("SELECT symbol, trade_date, profit_and_loss FROM %s", s.table)

	results, err := surrealdb.Query[[]JournalRow](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}

	var rows []JournalRow
	if results != nil && len(*results) > 0 {
		rows = (*results)[0].Result
	}

	records := make([]models.TradeRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		record, ok := normalizeRow(row)
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}

	if skipped > 0 {
		s.logger.Info().Int("loaded", len(records)).Int("skipped", skipped).Msg("Journal rows skipped during load")
	}

	return records, nil
}

// normalizeRow applies the loader's field policy to one raw row.
func normalizeRow(row JournalRow) (models.TradeRecord, bool) {
	if row.TradeDate == nil || row.TradeDate.IsZero() {
		return models.TradeRecord{}, false
	}

	symbol := row.Symbol
	if symbol == "" {
		symbol = models.SymbolUnknown
	}

	pnl := 0.0
	if row.ProfitAndLoss != nil {
		pnl = *row.ProfitAndLoss
	}

	return models.TradeRecord{
		Symbol:        symbol,
		Date:          *row.TradeDate,
		ProfitAndLoss: pnl,
		Outcome:       models.ClassifyOutcome(pnl),
	}, true
}

// Key identifies the journal for caching.
func (s *Source) Key() string {
	return s.addr + "/" + s.table
}

// Describe returns a human-readable description of the backend.
func (s *Source) Describe() string {
	return fmt.Sprintf("surrealdb table %s at %s", s.table, s.addr)
}

// Close closes the underlying connection.
func (s *Source) Close() error {
	return s.db.Close(context.Background())
}

// Ensure Source implements TradeSource
var _ interfaces.TradeSource = (*Source)(nil)
