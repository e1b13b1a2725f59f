// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/cense-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lakmalw/cense/internal/clients/gemini"
	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/services/advisor"
	"github.com/lakmalw/cense/internal/services/docs"
	"github.com/lakmalw/cense/internal/services/ledger"
	"github.com/lakmalw/cense/internal/services/watchlist"
	"github.com/lakmalw/cense/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	GenAIClient      interfaces.GenAIClient
	LedgerService    interfaces.LedgerService
	WatchlistService interfaces.WatchlistService
	DocumentService  interfaces.DocumentService
	AdvisorService   interfaces.AdvisorService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, the Gemini client, and all
// services. configPath may be empty, in which case CENSE_CONFIG, the binary
// directory, and config/cense.toml are tried in order.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("CENSE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "cense.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/cense.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths against the binary directory
	if config.Storage.Ledger.Path != "" && !filepath.IsAbs(config.Storage.Ledger.Path) {
		config.Storage.Ledger.Path = filepath.Join(binDir, config.Storage.Ledger.Path)
	}
	if config.Storage.History.Path != "" && !filepath.IsAbs(config.Storage.History.Path) {
		config.Storage.History.Path = filepath.Join(binDir, config.Storage.History.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var genaiClient interfaces.GenAIClient
	geminiKey, err := common.ResolveAPIKey(config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured, advisor panels will be unavailable")
	} else {
		client, err := gemini.NewClient(context.Background(), geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		genaiClient = client
	}

	ledgerService := ledger.NewService(storageManager, logger, config.Currency, config.InitialCash)
	watchlistService := watchlist.NewService(storageManager, logger)
	documentService := docs.NewService(logger)
	advisorService := advisor.NewService(genaiClient, ledgerService, watchlistService, documentService, logger)

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		GenAIClient:      genaiClient,
		LedgerService:    ledgerService,
		WatchlistService: watchlistService,
		DocumentService:  documentService,
		AdvisorService:   advisorService,
		StartupTime:      time.Now(),
	}, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
