package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mhollowell/tradedeck/internal/interfaces"
	"github.com/mhollowell/tradedeck/internal/models"
)

type stubClient struct {
	recap  string
	err    error
	prompt string
}

func (s *stubClient) GenerateRecap(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.recap, nil
}

func (s *stubClient) Close() error { return nil }

func testSnapshot() *interfaces.DashboardSnapshot {
	return &interfaces.DashboardSnapshot{
		Summary: models.DashboardSummary{
			StartingCapital: 1000,
			CurrentEquity:   1075,
			TotalPnL:        75,
			TotalReturnPct:  7.5,
			TradeCount:      3,
			Wins:            2,
			Losses:          1,
			WinRatePct:      66.7,
		},
		Monthly: []models.MonthlyAggregate{
			{Month: "2024-01", TotalPnL: 50, ReturnPercent: 5},
			{Month: "2024-02", TotalPnL: 25, ReturnPercent: 2.5},
		},
	}
}

func TestRecap_NotConfigured(t *testing.T) {
	svc := NewService(nil, nil)

	if svc.Configured() {
		t.Error("Configured() = true with nil client")
	}

	_, err := svc.Recap(context.Background(), testSnapshot())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRecap_PromptCarriesFigures(t *testing.T) {
	client := &stubClient{recap: "Solid quarter."}
	svc := NewService(client, nil)

	recap, err := svc.Recap(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("Recap: %v", err)
	}
	if recap != "Solid quarter." {
		t.Errorf("recap = %q", recap)
	}

	for _, want := range []string{"$1075.00", "$75.00", "66.7%", "2024-01", "2024-02"} {
		if !strings.Contains(client.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, client.prompt)
		}
	}
}

func TestRecap_ClientErrorWrapped(t *testing.T) {
	client := &stubClient{err: errors.New("quota exceeded")}
	svc := NewService(client, nil)

	_, err := svc.Recap(context.Background(), testSnapshot())
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}
