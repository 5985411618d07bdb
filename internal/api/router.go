package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rhale/trailtime/internal/api/handler"
	"github.com/rhale/trailtime/internal/api/middleware"
	"github.com/rhale/trailtime/internal/dependencies/clock"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/recorder"
	"github.com/rhale/trailtime/internal/services/registry"
	"github.com/rhale/trailtime/internal/services/results"
	"github.com/rhale/trailtime/internal/services/station"
	"github.com/rhale/trailtime/internal/services/token"
	"github.com/rhale/trailtime/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Clock           clock.Clock
	Storage         storage.Storage
	TokenCodec      *token.Codec
	TokenExpiry     time.Duration
	AuthService     *auth.Service
	RegistryService *registry.Service
	RecorderService *recorder.Service
	ResultsService  *results.Service
	StationSession  *station.Session
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	participantHandler := handler.NewParticipantHandler(cfg.RegistryService, cfg.AuthService)
	checkpointHandler := handler.NewCheckpointHandler(cfg.TokenCodec, cfg.RecorderService, cfg.Clock, cfg.TokenExpiry, cfg.Logger)
	stationHandler := handler.NewStationHandler(cfg.StationSession)
	resultsHandler := handler.NewResultsHandler(cfg.ResultsService, cfg.Storage)
	adminHandler := handler.NewAdminHandler(cfg.Storage, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	staffMiddleware := middleware.StaffAuth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	metricsMiddleware := middleware.Metrics()

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(metricsMiddleware)

	// Login routes (no auth required)
	api.HandleFunc("/login", participantHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/staff/login", participantHandler.StaffLogin).Methods(http.MethodPost)

	// Public results
	api.HandleFunc("/results", resultsHandler.Individual).Methods(http.MethodGet)
	api.HandleFunc("/results/teams", resultsHandler.Teams).Methods(http.MethodGet)

	// Scan routes (athlete session; GET mirrors the QR link form)
	scan := api.PathPrefix("/scan").Subrouter()
	scan.Use(authMiddleware)
	scan.HandleFunc("", checkpointHandler.Scan).Methods(http.MethodGet, http.MethodPost)

	// Participant timing view (athlete's own, or staff)
	times := api.PathPrefix("/participants/{id}/times").Subrouter()
	times.Use(authMiddleware)
	times.HandleFunc("", resultsHandler.ParticipantTimes).Methods(http.MethodGet)

	// Staff routes
	staff := api.NewRoute().Subrouter()
	staff.Use(staffMiddleware)
	staff.HandleFunc("/participants", participantHandler.Register).Methods(http.MethodPost)
	staff.HandleFunc("/participants", participantHandler.List).Methods(http.MethodGet)
	staff.HandleFunc("/participants/import", participantHandler.Import).Methods(http.MethodPost)
	staff.HandleFunc("/participants/{id}", participantHandler.Get).Methods(http.MethodGet)
	staff.HandleFunc("/station/code", stationHandler.Code).Methods(http.MethodGet)
	staff.HandleFunc("/checkpoints", checkpointHandler.ManualEntry).Methods(http.MethodPost)
	staff.HandleFunc("/admin/archive", adminHandler.ArchiveEvents).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
