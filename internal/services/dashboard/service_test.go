package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mhollowell/tradedeck/internal/models"
)

// fakeSource counts fetches and can be switched to fail.
type fakeSource struct {
	records []models.TradeRecord
	err     error
	fetches int
}

func (f *fakeSource) FetchTrades(ctx context.Context) ([]models.TradeRecord, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeSource) Key() string      { return "fake" }
func (f *fakeSource) Describe() string { return "fake journal" }

func newTestService(source *fakeSource) *Service {
	return NewService(source, 1000, 60*time.Second, nil)
}

func TestSnapshot_ComputesPipeline(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{
		record("2024-01-01", 100),
		record("2024-01-03", -50),
		record("2024-02-01", 25),
	}}
	svc := newTestService(source)

	snap, err := svc.Snapshot(context.Background(), false)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if snap.Summary.CurrentEquity != 1075 {
		t.Errorf("CurrentEquity = %v, want 1075", snap.Summary.CurrentEquity)
	}
	if len(snap.Trades) != 3 || len(snap.Monthly) != 2 {
		t.Errorf("trades/monthly = %d/%d, want 3/2", len(snap.Trades), len(snap.Monthly))
	}
}

func TestSnapshot_UsesCacheWithinTTL(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{record("2024-01-01", 10)}}
	svc := newTestService(source)

	ctx := context.Background()
	if _, err := svc.Snapshot(ctx, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Snapshot(ctx, false); err != nil {
		t.Fatal(err)
	}

	if source.fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second snapshot served from cache)", source.fetches)
	}
}

func TestSnapshot_ForceBypassesCache(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{record("2024-01-01", 10)}}
	svc := newTestService(source)

	ctx := context.Background()
	svc.Snapshot(ctx, false)
	svc.Snapshot(ctx, true)

	if source.fetches != 2 {
		t.Errorf("fetches = %d, want 2", source.fetches)
	}
}

func TestSnapshot_EmptyJournalIsErrNoTrades(t *testing.T) {
	svc := newTestService(&fakeSource{})

	_, err := svc.Snapshot(context.Background(), false)
	if !errors.Is(err, ErrNoTrades) {
		t.Fatalf("expected ErrNoTrades, got %v", err)
	}
}

func TestSnapshot_ConnectivityErrorSurfaced(t *testing.T) {
	svc := newTestService(&fakeSource{err: errors.New("connection refused")})

	_, err := svc.Snapshot(context.Background(), false)
	if err == nil || errors.Is(err, ErrNoTrades) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestSnapshot_DegradesToStaleOnFetchFailure(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{record("2024-01-01", 10)}}
	svc := newTestService(source)
	svc.cache.ttl = 0 // every entry immediately stale

	ctx := context.Background()
	if _, err := svc.Snapshot(ctx, false); err != nil {
		t.Fatal(err)
	}

	source.err = errors.New("journal down")
	snap, err := svc.Snapshot(ctx, false)
	if err != nil {
		t.Fatalf("expected stale degrade, got error: %v", err)
	}
	if len(snap.Trades) != 1 {
		t.Errorf("stale snapshot trades = %d, want 1", len(snap.Trades))
	}
}

func TestRefresh_InvalidatesAndRefetches(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{record("2024-01-01", 10)}}
	svc := newTestService(source)

	ctx := context.Background()
	svc.Snapshot(ctx, false)

	source.records = append(source.records, record("2024-01-02", 20))
	snap, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if source.fetches != 2 {
		t.Errorf("fetches = %d, want 2", source.fetches)
	}
	if len(snap.Trades) != 2 {
		t.Errorf("trades after refresh = %d, want 2", len(snap.Trades))
	}
}

func TestRefresh_ErrorWhenSourceDown(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{record("2024-01-01", 10)}}
	svc := newTestService(source)

	ctx := context.Background()
	svc.Snapshot(ctx, false)

	// Manual refresh must not silently fall back to the cache.
	source.err = errors.New("journal down")
	if _, err := svc.Refresh(ctx); err == nil {
		t.Fatal("expected refresh error when source is down")
	}
}

func TestChartPNG_SingleTradeJournal(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{record("2024-06-01", 75)}}
	svc := newTestService(source)

	for _, view := range models.ViewNames {
		if _, err := svc.ChartPNG(context.Background(), view); err != nil {
			t.Errorf("ChartPNG(%s) with one trade: %v", view, err)
		}
	}
}

func TestChartPNG_RendersSelectedView(t *testing.T) {
	source := &fakeSource{records: []models.TradeRecord{
		record("2024-01-01", 100),
		record("2024-01-05", -30),
	}}
	svc := newTestService(source)

	png, err := svc.ChartPNG(context.Background(), models.ViewEquity)
	if err != nil {
		t.Fatalf("ChartPNG: %v", err)
	}
	if len(png) == 0 {
		t.Error("empty PNG")
	}

	if _, err := svc.ChartPNG(context.Background(), "bogus"); err == nil {
		t.Error("expected error for unknown view")
	}
}
