package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/moverwatch/internal/cache"
	"github.com/bobmcallan/moverwatch/internal/clients/alphavantage"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/services/search"
	"github.com/bobmcallan/moverwatch/internal/services/stockdata"
	"github.com/bobmcallan/moverwatch/internal/services/wishlist"
	"github.com/bobmcallan/moverwatch/internal/storage"
)

// App holds all initialized storage, clients, and services.
// It is the shared core used by cmd/moverwatch-server and the REST layer.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            interfaces.KeyValueStore
	Cache            *cache.Cache
	Gateway          interfaces.MarketDataGateway
	StockDataService interfaces.StockDataService
	WishlistService  interfaces.WishlistService
	SearchService    interfaces.SearchService
	StartupTime      time.Time

	scheduler       *Scheduler
	warmCacheCancel context.CancelFunc
	warmCacheDone   chan struct{}
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes all services.
// configPath may be empty, in which case MOVERWATCH_CONFIG, the binary
// directory and config/moverwatch.toml are tried in that order.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("MOVERWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "moverwatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/moverwatch.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths against the binary directory
	config.Storage.Path = resolvePath(binDir, config.Storage.Path)
	config.Storage.SQLite.Path = resolvePath(binDir, config.Storage.SQLite.Path)
	config.Logging.FilePath = resolvePath(binDir, config.Logging.FilePath)

	return NewAppWithConfig(context.Background(), config, common.NewLoggerFromConfig(config.Logging))
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// NewAppWithConfig wires the store, cache, gateway and services from an already
// loaded configuration: store -> cache -> gateway -> wishlists -> stock data -> search.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	store, err := storage.NewKeyValueStore(ctx, logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	avConfig := config.Clients.AlphaVantage
	apiKey, err := common.ResolveAPIKey(ctx, store, "alphavantage_api_key", avConfig.APIKey)
	if err != nil {
		logger.Warn().Msg("Alpha Vantage API key not configured - market data will come from cache or fallback")
	}

	gateway := alphavantage.NewClient(apiKey,
		alphavantage.WithBaseURL(avConfig.BaseURL),
		alphavantage.WithLogger(logger),
		alphavantage.WithRateLimit(avConfig.RateLimit),
		alphavantage.WithTimeout(avConfig.GetTimeout()),
	)

	responseCache := cache.New(store, logger)
	wishlistService := wishlist.NewService(store, logger)
	stockDataService := stockdata.NewService(gateway, responseCache, wishlistService, logger)
	searchService := search.NewService(responseCache, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Store:            store,
		Cache:            responseCache,
		Gateway:          gateway,
		StockDataService: stockDataService,
		WishlistService:  wishlistService,
		SearchService:    searchService,
		StartupTime:      startupStart,
	}

	logger.Info().
		Str("storage", config.Storage.Backend).
		Str("version", common.GetFullVersion()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, cancel and wait for warm cache, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.warmCacheDone != nil {
		<-a.warmCacheDone
		a.warmCacheDone = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Store = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	if !a.Config.Cache.WarmOnStart {
		return
	}
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	done := make(chan struct{})
	a.warmCacheCancel = warmCancel
	a.warmCacheDone = done
	go func() {
		defer close(done)
		defer warmCancel()
		warmCache(warmCtx, a.StockDataService, a.Logger)
	}()
}

// StartScheduler registers the cache sweep and wishlist price refresh jobs
// on their configured cron schedules and starts the scheduler. An empty
// schedule disables the job.
func (a *App) StartScheduler() error {
	s := NewScheduler(a.Logger)

	if spec := a.Config.Cache.SweepSchedule; spec != "" {
		if err := s.AddJob(spec, cache.NewSweepJob(a.Cache, a.Logger)); err != nil {
			return fmt.Errorf("failed to schedule cache sweep: %w", err)
		}
	}

	if spec := a.Config.Wishlist.PriceRefreshSchedule; spec != "" {
		if err := s.AddJob(spec, newPriceRefreshJob(a.StockDataService, a.Logger)); err != nil {
			return fmt.Errorf("failed to schedule price refresh: %w", err)
		}
	}

	s.Start()
	a.scheduler = s
	return nil
}
