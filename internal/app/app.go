// Package app wires configuration, the journal source, and services into a
// single application object shared by cmd/tradedeck-server and tests.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mhollowell/tradedeck/internal/clients/gemini"
	"github.com/mhollowell/tradedeck/internal/clients/notion"
	"github.com/mhollowell/tradedeck/internal/common"
	"github.com/mhollowell/tradedeck/internal/interfaces"
	"github.com/mhollowell/tradedeck/internal/services/dashboard"
	"github.com/mhollowell/tradedeck/internal/services/insight"
	"github.com/mhollowell/tradedeck/internal/storage/surreal"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Source      interfaces.TradeSource
	Dashboard   *dashboard.Service
	Insights    *insight.Service
	StartupTime time.Time

	geminiClient  *gemini.Client
	refreshCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, the journal source, and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Load configuration - check provided path, TRADEDECK_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("TRADEDECK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "tradedeck.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/tradedeck.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	source, err := newSource(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal source: %w", err)
	}

	dashboardService := dashboard.NewService(source,
		config.Dashboard.StartingCapital,
		config.Dashboard.GetCacheTTL(),
		logger,
	)

	// Optional AI recap client
	var geminiClient *gemini.Client
	if config.Clients.Gemini.APIKey != "" {
		geminiClient, err = gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client unavailable - AI recap disabled")
			geminiClient = nil
		}
	} else {
		logger.Info().Msg("Gemini API key not configured - AI recap disabled")
	}

	var insightClient interfaces.InsightClient
	if geminiClient != nil {
		insightClient = geminiClient
	}
	insightService := insight.NewService(insightClient, logger)

	a := &App{
		Config:       config,
		Logger:       logger,
		Source:       source,
		Dashboard:    dashboardService,
		Insights:     insightService,
		StartupTime:  startupStart,
		geminiClient: geminiClient,
	}

	logger.Info().
		Str("source", source.Describe()).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return a, nil
}

// newSource builds the trade journal backend selected by config.
func newSource(config *common.Config, logger *common.Logger) (interfaces.TradeSource, error) {
	switch config.Source.Kind {
	case common.SourceNotion:
		client := notion.NewClient(config.Source.Notion.Token, config.Source.Notion.DatabaseID,
			notion.WithBaseURL(config.Source.Notion.BaseURL),
			notion.WithLogger(logger),
			notion.WithRateLimit(config.Source.Notion.RateLimit),
			notion.WithTimeout(config.Source.Notion.GetTimeout()),
		)
		return notion.NewSource(client, logger), nil

	case common.SourceSurreal:
		return surreal.NewSource(logger, config.Source.Surreal)

	default:
		return nil, fmt.Errorf("unknown source kind %q", config.Source.Kind)
	}
}

// StartBackground launches the WebSocket hub and the periodic pipeline
// refresh. Both stop when Close is called.
func (a *App) StartBackground() {
	go a.Dashboard.Hub().Run()

	interval := a.Config.Dashboard.GetRefreshInterval()
	if interval <= 0 {
		a.Logger.Info().Msg("Background refresh disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.refreshCancel = cancel
	go a.Dashboard.RunAutoRefresh(ctx, interval)

	a.Logger.Info().Dur("interval", interval).Msg("Background refresh started")
}

// Close releases clients and stops background work.
func (a *App) Close() {
	if a.refreshCancel != nil {
		a.refreshCancel()
	}
	a.Dashboard.Hub().Stop()

	if closer, ok := a.Source.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close journal source")
		}
	}
	if a.geminiClient != nil {
		if err := a.geminiClient.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close Gemini client")
		}
	}
}
