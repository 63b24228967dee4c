package server

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/mhollowell/tradedeck/internal/interfaces"
	"github.com/mhollowell/tradedeck/internal/models"
	"github.com/mhollowell/tradedeck/internal/services/dashboard"
)

// pageView is one selectable chart pill.
type pageView struct {
	Name     string
	Title    string
	Selected bool
}

// pageData holds the template data for the dashboard page.
type pageData struct {
	Snapshot *interfaces.DashboardSnapshot
	Views    []pageView
	View     string
	ViewURL  string
	Error    string
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Tradedeck</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;background:#0f1117;color:#e1e4e8;padding:2rem 1rem}
.wrap{max-width:960px;margin:0 auto}
h1{font-size:1.4rem;color:#f0f6fc;margin-bottom:1.5rem}
.figures{display:grid;grid-template-columns:repeat(auto-fit,minmax(160px,1fr));gap:.75rem;margin-bottom:1.5rem}
.figure{background:#161b22;border:1px solid #30363d;border-radius:12px;padding:1rem}
.figure .label{font-size:.75rem;color:#8b949e;text-transform:uppercase;letter-spacing:.05em}
.figure .value{font-size:1.3rem;margin-top:.25rem;color:#f0f6fc}
.figure .value.pos{color:#00C805}
.figure .value.neg{color:#FF3B30}
.pills{display:flex;gap:.5rem;margin-bottom:1rem;flex-wrap:wrap}
.pill{padding:.45rem .9rem;border:1px solid #30363d;border-radius:999px;color:#8b949e;text-decoration:none;font-size:.85rem}
.pill.active{background:#238636;border-color:#238636;color:#fff}
.pill:hover{border-color:#8b949e}
.chart{background:#161b22;border:1px solid #30363d;border-radius:12px;padding:1rem;margin-bottom:1.5rem;text-align:center}
.chart img{max-width:100%;border-radius:6px}
.actions{margin-bottom:1.5rem}
button{padding:.55rem 1.1rem;border:none;border-radius:6px;font-size:.9rem;cursor:pointer;background:#238636;color:#fff;font-weight:500}
button:hover{background:#2ea043}
table{width:100%;border-collapse:collapse;background:#161b22;border:1px solid #30363d;border-radius:12px;overflow:hidden;margin-bottom:1.5rem;font-size:.85rem}
th,td{padding:.5rem .75rem;text-align:right;border-bottom:1px solid #21262d}
th:first-child,td:first-child{text-align:left}
th{color:#8b949e;font-weight:500;font-size:.75rem;text-transform:uppercase}
td.pos{color:#00C805}
td.neg{color:#FF3B30}
.empty{background:#161b22;border:1px solid #30363d;border-radius:12px;padding:2.5rem;text-align:center;color:#8b949e}
.empty p{margin-bottom:1rem}
</style>
</head>
<body>
<div class="wrap">
<h1>Tradedeck</h1>
{{if .Error}}
<div class="empty">
<p>{{.Error}}</p>
<form method="POST" action="/api/dashboard/refresh" onsubmit="setTimeout(function(){location.reload()},500)">
<button type="submit">Retry</button>
</form>
</div>
{{else}}
{{with .Snapshot.Summary}}
<div class="figures">
<div class="figure"><div class="label">Current Equity</div><div class="value">${{printf "%.2f" .CurrentEquity}}</div></div>
<div class="figure"><div class="label">Total P&amp;L</div><div class="value {{if lt .TotalPnL 0.0}}neg{{else}}pos{{end}}">${{printf "%.2f" .TotalPnL}}</div></div>
<div class="figure"><div class="label">Total Return</div><div class="value {{if lt .TotalReturnPct 0.0}}neg{{else}}pos{{end}}">{{printf "%.2f" .TotalReturnPct}}%</div></div>
<div class="figure"><div class="label">Win Rate</div><div class="value">{{printf "%.1f" .WinRatePct}}%</div></div>
<div class="figure"><div class="label">Trades</div><div class="value">{{.TradeCount}}</div></div>
</div>
{{end}}
<div class="pills">
{{range .Views}}<a class="pill{{if .Selected}} active{{end}}" href="/?view={{.Name}}">{{.Title}}</a>
{{end}}</div>
<div class="chart"><img src="{{.ViewURL}}" alt="{{.View}} chart"></div>
<div class="actions">
<form method="POST" action="/api/dashboard/refresh" onsubmit="setTimeout(function(){location.reload()},500)">
<button type="submit">Refresh</button>
</form>
</div>
<table>
<thead><tr><th>Month</th><th>P&amp;L</th><th>Return</th></tr></thead>
<tbody>
{{range .Snapshot.Monthly}}<tr><td>{{.Month}}</td><td class="{{if lt .TotalPnL 0.0}}neg{{else}}pos{{end}}">${{printf "%.2f" .TotalPnL}}</td><td>{{printf "%.2f" .ReturnPercent}}%</td></tr>
{{end}}</tbody>
</table>
<table>
<thead><tr><th>Symbol</th><th>Date</th><th>P&amp;L</th><th>Outcome</th><th>Equity</th></tr></thead>
<tbody>
{{range .Snapshot.Trades}}<tr><td>{{.Symbol}}</td><td>{{.Date.Format "2006-01-02"}}</td><td class="{{if lt .ProfitAndLoss 0.0}}neg{{else}}pos{{end}}">${{printf "%.2f" .ProfitAndLoss}}</td><td>{{.Outcome}}</td><td>${{printf "%.2f" .Equity}}</td></tr>
{{end}}</tbody>
</table>
{{end}}
</div>
<script>
(function(){
var proto = location.protocol === "https:" ? "wss://" : "ws://";
var ws = new WebSocket(proto + location.host + "/api/ws");
ws.onmessage = function(){ location.reload(); };
})();
</script>
</body>
</html>`))

// handlePage renders GET / — the single dashboard page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	view := r.URL.Query().Get("view")
	if _, ok := models.ViewTitles[view]; !ok {
		view = models.ViewEquity
	}

	data := pageData{
		View:    view,
		ViewURL: "/api/dashboard/chart/" + view,
	}
	for _, name := range models.ViewNames {
		data.Views = append(data.Views, pageView{
			Name:     name,
			Title:    models.ViewTitles[name],
			Selected: name == view,
		})
	}

	snap, err := s.app.Dashboard.Snapshot(r.Context(), false)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoTrades) {
			data.Error = "No trades loaded yet. Add entries to the journal and retry."
		} else {
			data.Error = "The trade journal is unreachable. Check connectivity and retry."
			s.logger.Warn().Err(err).Msg("Dashboard page render degraded")
		}
	} else {
		data.Snapshot = snap
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("Dashboard template error")
	}
}
