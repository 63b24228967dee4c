package server

import (
	"net/http"
	"time"

	"github.com/mhollowell/tradedeck/internal/common"
)

// registerRoutes sets up the dashboard page and REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Dashboard page
	mux.HandleFunc("/", s.handlePage)

	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Dashboard data
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/dashboard/summary", s.handleDashboardSummary)
	mux.HandleFunc("/api/dashboard/trades", s.handleDashboardTrades)
	mux.HandleFunc("/api/dashboard/monthly", s.handleDashboardMonthly)
	mux.HandleFunc("/api/dashboard/chart/", s.handleDashboardChart)
	mux.HandleFunc("/api/dashboard/refresh", s.handleDashboardRefresh)
	mux.HandleFunc("/api/dashboard/insights", s.handleDashboardInsights)

	// Auth
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)

	// Live refresh push
	mux.HandleFunc("/api/ws", s.handleWS)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":        cfg.Environment,
		"source_kind":        cfg.Source.Kind,
		"source":             s.app.Source.Describe(),
		"notion_token":       maskSecret(cfg.Source.Notion.Token),
		"starting_capital":   cfg.Dashboard.StartingCapital,
		"cache_ttl":          cfg.Dashboard.GetCacheTTL().String(),
		"refresh_interval":   cfg.Dashboard.GetRefreshInterval().String(),
		"auth_enabled":       cfg.Auth.Enabled(),
		"insights_available": s.app.Insights.Configured(),
		"logging_level":      cfg.Logging.Level,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// handleWS upgrades GET /api/ws to a WebSocket for refresh push.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.app.Dashboard.Hub().ServeWS(w, r)
}
