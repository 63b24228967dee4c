package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mhollowell/tradedeck/internal/services/dashboard"
	"github.com/mhollowell/tradedeck/internal/services/insight"
)

// --- Dashboard handlers ---

// writeSnapshotError maps pipeline failures to HTTP statuses. An empty
// journal and an unreachable journal both render as an empty state with a
// retry affordance, so both surface the detail in the error body.
func (s *Server) writeSnapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrNoTrades) {
		WriteErrorWithCode(w, http.StatusNotFound, "No trade records loaded", "no_trades")
		return
	}
	WriteErrorWithCode(w, http.StatusBadGateway, fmt.Sprintf("Journal unavailable: %v", err), "source_error")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	force := r.URL.Query().Get("force") == "true"
	snap, err := s.app.Dashboard.Snapshot(r.Context(), force)
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snap, err := s.app.Dashboard.Snapshot(r.Context(), false)
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, snap.Summary)
}

func (s *Server) handleDashboardTrades(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snap, err := s.app.Dashboard.Snapshot(r.Context(), false)
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}

	trades := snap.Trades

	// Optional limit: most recent N rows of the date-sorted table.
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < len(trades) {
			trades = trades[len(trades)-n:]
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"total":  len(snap.Trades),
	})
}

func (s *Server) handleDashboardMonthly(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snap, err := s.app.Dashboard.Snapshot(r.Context(), false)
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"monthly": snap.Monthly,
	})
}

// handleDashboardChart renders GET /api/dashboard/chart/{view} as a PNG.
func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	view := PathParam(r, "/api/dashboard/chart/", "")
	if view == "" {
		WriteError(w, http.StatusBadRequest, "view is required in path")
		return
	}

	png, err := s.app.Dashboard.ChartPNG(r.Context(), view)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoTrades) {
			s.writeSnapshotError(w, err)
			return
		}
		if errors.Is(err, dashboard.ErrUnknownView) {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Unknown view: %s", view))
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Chart render failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleDashboardRefresh handles POST /api/dashboard/refresh — invalidate the
// record cache and reload immediately, pushing the result to WebSocket clients.
func (s *Server) handleDashboardRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snap, err := s.app.Dashboard.Refresh(r.Context())
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, snap)
}

// handleDashboardInsights handles GET /api/dashboard/insights — the optional
// AI recap. 503 when no AI client is configured.
func (s *Server) handleDashboardInsights(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if !s.app.Insights.Configured() {
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "AI recap not configured", "insights_unavailable")
		return
	}

	snap, err := s.app.Dashboard.Snapshot(r.Context(), false)
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}

	recap, err := s.app.Insights.Recap(r.Context(), snap)
	if err != nil {
		if errors.Is(err, insight.ErrNotConfigured) {
			WriteErrorWithCode(w, http.StatusServiceUnavailable, "AI recap not configured", "insights_unavailable")
			return
		}
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Recap failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recap":   recap,
		"summary": snap.Summary,
	})
}
