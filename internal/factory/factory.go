package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/rhale/trailtime/internal/dependencies/clock"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/recorder"
	"github.com/rhale/trailtime/internal/services/registry"
	"github.com/rhale/trailtime/internal/services/results"
	"github.com/rhale/trailtime/internal/services/station"
	"github.com/rhale/trailtime/internal/services/token"
	"github.com/rhale/trailtime/internal/storage"
	filestorage "github.com/rhale/trailtime/internal/storage/file"
	"github.com/rhale/trailtime/internal/storage/memory"
	redisstorage "github.com/rhale/trailtime/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	TokenCodec      *token.Codec
	RegistryService *registry.Service
	RecorderService *recorder.Service
	ResultsService  *results.Service
	AuthService     *auth.Service
	StationSession  *station.Session
}

// Config holds configuration for the application factory
type Config struct {
	// SecretKey signs checkpoint tokens (required)
	SecretKey string
	// StationConfig holds token issuance settings (optional)
	// If zero value, defaults to station.DefaultConfig()
	StationConfig station.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// DataDir is the directory for CSV files (required if StorageType is "file")
	DataDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		if cfg.DataDir == "" {
			return nil, errors.New("DataDir required when StorageType is file")
		}
		fileStore, err := filestorage.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	codec, err := token.New(cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	clk := clock.New()

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	stationCfg := cfg.StationConfig
	if stationCfg.BaseURL == "" {
		stationCfg.BaseURL = station.DefaultConfig().BaseURL
	}
	if stationCfg.TokenExpiry == 0 {
		stationCfg.TokenExpiry = station.DefaultConfig().TokenExpiry
	}

	return newWithDependencies(store, clk, codec, authCfg, stationCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	codec *token.Codec,
	authCfg auth.Config,
	stationCfg station.Config,
	logger *slog.Logger,
) *App {
	registryService := registry.New(store, clk, logger)
	recorderService := recorder.New(store, registryService, logger)
	resultsService := results.New(store, registryService, logger)
	authService := auth.New(store, clk, authCfg, logger)
	stationSession := station.NewSession(codec, clk, stationCfg, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		TokenCodec:      codec,
		RegistryService: registryService,
		RecorderService: recorderService,
		ResultsService:  resultsService,
		AuthService:     authService,
		StationSession:  stationSession,
	}
}

// TokenExpiry returns the validity window the station issues tokens with
func (a *App) TokenExpiry() time.Duration {
	return a.StationSession.TokenExpiry()
}
