package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollowell/tradedeck/internal/app"
	"github.com/mhollowell/tradedeck/internal/common"
	"github.com/mhollowell/tradedeck/internal/interfaces"
	"github.com/mhollowell/tradedeck/internal/models"
	"github.com/mhollowell/tradedeck/internal/services/dashboard"
	"github.com/mhollowell/tradedeck/internal/services/insight"
)

// fakeSource serves a fixed record set, or an error when down.
type fakeSource struct {
	records []models.TradeRecord
	err     error
}

func (f *fakeSource) FetchTrades(ctx context.Context) ([]models.TradeRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeSource) Key() string      { return "fake" }
func (f *fakeSource) Describe() string { return "fake journal" }

// fakeInsightClient returns a canned recap.
type fakeInsightClient struct {
	recap string
	err   error
}

func (f *fakeInsightClient) GenerateRecap(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.recap, nil
}

func (f *fakeInsightClient) Close() error { return nil }

func testRecord(date string, pnl float64) models.TradeRecord {
	d, _ := time.Parse("2006-01-02", date)
	return models.TradeRecord{
		Symbol:        "SPY",
		Date:          d,
		ProfitAndLoss: pnl,
		Outcome:       models.ClassifyOutcome(pnl),
	}
}

func defaultRecords() []models.TradeRecord {
	return []models.TradeRecord{
		testRecord("2024-01-01", 100),
		testRecord("2024-01-03", -50),
		testRecord("2024-02-01", 25),
	}
}

// newTestServer builds a Server over a fake journal. insightClient may be nil.
func newTestServer(t *testing.T, source interfaces.TradeSource, insightClient interfaces.InsightClient) *Server {
	t.Helper()

	config := common.NewDefaultConfig()
	logger := common.NewSilentLogger()

	a := &app.App{
		Config:      config,
		Logger:      logger,
		Source:      source,
		Dashboard:   dashboard.NewService(source, 1000, 60*time.Second, logger),
		Insights:    insight.NewService(insightClient, logger),
		StartupTime: time.Now(),
	}

	return NewServer(a)
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["version"])
}

func TestHandleConfig_MasksSecrets(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)
	s.app.Config.Source.Notion.Token = "secret_abcdefgh"

	rr := doRequest(t, s, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "secr****", resp["notion_token"])
	assert.Equal(t, false, resp["insights_available"])
	assert.Equal(t, float64(18600), resp["starting_capital"])
}

func TestHandleDashboard(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var snap interfaces.DashboardSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 3, snap.Summary.TradeCount)
	assert.Equal(t, float64(1075), snap.Summary.CurrentEquity)
	assert.Len(t, snap.Monthly, 2)
}

func TestHandleDashboard_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodPost, "/api/dashboard", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleDashboard_EmptyJournal(t *testing.T) {
	s := newTestServer(t, &fakeSource{}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "no_trades", resp.Code)
}

func TestHandleDashboard_SourceDown(t *testing.T) {
	s := newTestServer(t, &fakeSource{err: errors.New("connection refused")}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "source_error", resp.Code)
}

func TestHandleDashboardSummary(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var summary models.DashboardSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, float64(75), summary.TotalPnL)
	assert.Equal(t, 1, summary.Losses)
}

func TestHandleDashboardTrades_Limit(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/trades?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Trades []models.EnrichedTrade `json:"trades"`
		Total  int                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Trades, 2)
	assert.Equal(t, 3, resp.Total)
	// Most recent rows of the date-sorted table
	assert.Equal(t, "2024-02-01", resp.Trades[1].Date.Format("2006-01-02"))
}

func TestHandleDashboardTrades_BadLimit(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/trades?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleDashboardMonthly(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/monthly", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Monthly []models.MonthlyAggregate `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Monthly, 2)
	assert.Equal(t, "2024-01", resp.Monthly[0].Month)
	assert.Equal(t, float64(50), resp.Monthly[0].TotalPnL)
}

func TestHandleDashboardChart(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	for _, view := range models.ViewNames {
		rr := doRequest(t, s, http.MethodGet, "/api/dashboard/chart/"+view, nil)
		require.Equal(t, http.StatusOK, rr.Code, "view %s", view)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"), "view %s", view)
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}), "view %s", view)
	}
}

func TestHandleDashboardChart_UnknownView(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/chart/candles", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleDashboardRefresh(t *testing.T) {
	source := &fakeSource{records: defaultRecords()}
	s := newTestServer(t, source, nil)

	// Prime the cache, then change the journal. A plain GET keeps serving
	// the cached rows; refresh must see the new one.
	doRequest(t, s, http.MethodGet, "/api/dashboard", nil)
	source.records = append(source.records, testRecord("2024-02-02", 10))

	rr := doRequest(t, s, http.MethodPost, "/api/dashboard/refresh", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var snap interfaces.DashboardSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 4, snap.Summary.TradeCount)
}

func TestHandleDashboardInsights_NotConfigured(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/insights", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "insights_unavailable", resp.Code)
}

func TestHandleDashboardInsights_Configured(t *testing.T) {
	client := &fakeInsightClient{recap: "A strong month overall."}
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, client)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/insights", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "A strong month overall.", resp["recap"])
}

func TestHandleDashboardInsights_ClientError(t *testing.T) {
	client := &fakeInsightClient{err: errors.New("quota exceeded")}
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, client)

	rr := doRequest(t, s, http.MethodGet, "/api/dashboard/insights", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHandlePage_RendersFigures(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	body := rr.Body.String()
	assert.Contains(t, body, "$1075.00")
	assert.Contains(t, body, "Account Growth")
	assert.Contains(t, body, "/api/dashboard/chart/equity")
}

func TestHandlePage_ViewSelection(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/?view=monthly", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/dashboard/chart/monthly")

	// Unknown view falls back to the equity curve
	rr = doRequest(t, s, http.MethodGet, "/?view=candles", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/dashboard/chart/equity")
}

func TestHandlePage_EmptyState(t *testing.T) {
	s := newTestServer(t, &fakeSource{}, nil)

	rr := doRequest(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "No trades loaded yet")
	assert.Contains(t, body, "Retry")
	assert.False(t, strings.Contains(body, "Current Equity"))
}

func TestHandlePage_SourceDownState(t *testing.T) {
	s := newTestServer(t, &fakeSource{err: errors.New("connection refused")}, nil)

	rr := doRequest(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "unreachable")
}

func TestHandlePage_UnknownPathIs404(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
