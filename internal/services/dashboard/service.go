package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mhollowell/tradedeck/internal/common"
	"github.com/mhollowell/tradedeck/internal/interfaces"
	"github.com/mhollowell/tradedeck/internal/models"
)

// ErrNoTrades signals that the journal yielded no valid records. The
// presentation layer treats it like a connectivity failure: empty-state
// message plus a retry affordance.
var ErrNoTrades = errors.New("no valid trade records loaded")

// Service orchestrates the pipeline: TTL-cached load from the journal
// source, then the full transform on every snapshot. Nothing derived is
// persisted; each cycle recomputes from the raw records.
type Service struct {
	source  interfaces.TradeSource
	cache   *recordCache
	capital float64
	logger  *common.Logger
	hub     *Hub
}

// NewService creates the dashboard service.
func NewService(source interfaces.TradeSource, capital float64, cacheTTL time.Duration, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		source:  source,
		cache:   newRecordCache(cacheTTL),
		capital: capital,
		logger:  logger,
		hub:     NewHub(logger),
	}
}

// Hub exposes the WebSocket hub for the server to attach connections.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Source returns the configured journal source.
func (s *Service) Source() interfaces.TradeSource {
	return s.source
}

// StartingCapital returns the fixed capital constant.
func (s *Service) StartingCapital() float64 {
	return s.capital
}

// load returns journal records, honoring the cache unless force is set.
// On a fetch failure with stale records cached, it degrades to the stale
// data and logs a warning instead of failing the render.
func (s *Service) load(ctx context.Context, force bool) ([]models.TradeRecord, error) {
	key := s.source.Key()

	if !force {
		if records, fresh := s.cache.Get(key); fresh {
			s.logger.Debug().Int("records", len(records)).Msg("Journal cache hit")
			return records, nil
		}
	}

	records, err := s.source.FetchTrades(ctx)
	if err != nil {
		if stale, _ := s.cache.Get(key); stale != nil && !force {
			s.logger.Warn().Err(err).Msg("Journal fetch failed, serving stale records")
			return stale, nil
		}
		return nil, err
	}

	s.cache.Put(key, records)
	s.logger.Info().Int("records", len(records)).Msg("Journal loaded")
	return records, nil
}

// Snapshot runs the full pipeline. force bypasses the record cache.
func (s *Service) Snapshot(ctx context.Context, force bool) (*interfaces.DashboardSnapshot, error) {
	records, err := s.load(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoTrades
	}

	trades := Enrich(records, s.capital)
	monthly := MonthlyAggregates(trades, s.capital)

	return &interfaces.DashboardSnapshot{
		Summary: Summarize(trades, s.capital),
		Trades:  trades,
		Monthly: monthly,
	}, nil
}

// Refresh invalidates the cache and reloads immediately.
func (s *Service) Refresh(ctx context.Context) (*interfaces.DashboardSnapshot, error) {
	s.cache.Invalidate(s.source.Key())
	snap, err := s.Snapshot(ctx, true)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastRefresh(snap.Summary)
	return snap, nil
}

// ChartPNG renders the named view from a fresh-enough snapshot.
func (s *Service) ChartPNG(ctx context.Context, view string) ([]byte, error) {
	snap, err := s.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}

	spec, err := BuildChartSpec(view, snap.Trades, snap.Monthly)
	if err != nil {
		return nil, err
	}

	return RenderChart(spec)
}

// RunAutoRefresh re-runs the pipeline on a fixed interval until ctx is
// cancelled, pushing each successful refresh to WebSocket clients. The
// Go-native replacement for the original page's autorefresh timer.
func (s *Service) RunAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := s.Snapshot(ctx, true)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Auto-refresh failed")
				continue
			}
			s.hub.BroadcastRefresh(snap.Summary)
		}
	}
}

// Ensure Service implements DashboardService
var _ interfaces.DashboardService = (*Service)(nil)
