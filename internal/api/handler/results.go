package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rhale/trailtime/internal/api/middleware"
	"github.com/rhale/trailtime/internal/api/response"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/results"
	"github.com/rhale/trailtime/internal/storage"
)

// ResultsHandler handles ranking and timing view endpoints
type ResultsHandler struct {
	resultsService *results.Service
	storage        storage.Storage
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(resultsService *results.Service, store storage.Storage) *ResultsHandler {
	return &ResultsHandler{
		resultsService: resultsService,
		storage:        store,
	}
}

// Individual handles GET /api/v1/results
func (h *ResultsHandler) Individual(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.resultsService.ComputeResults(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.TimingResult, 0, len(ranked))
	for _, res := range ranked {
		out = append(out, response.TimingResultFromModel(res))
	}
	response.JSON(w, http.StatusOK, out)
}

// Teams handles GET /api/v1/results/teams
func (h *ResultsHandler) Teams(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.resultsService.ComputeTeamResults(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.TeamResult, 0, len(ranked))
	for _, res := range ranked {
		out = append(out, response.TeamResultFromModel(res))
	}
	response.JSON(w, http.StatusOK, out)
}

// ParticipantTimes handles GET /api/v1/participants/{id}/times.
// Athletes can view their own times; staff can view anyone's.
func (h *ResultsHandler) ParticipantTimes(w http.ResponseWriter, r *http.Request) {
	id := model.ParticipantID(mux.Vars(r)["id"])

	session := middleware.MustGetSession(r.Context())
	if session.Role != auth.RoleStaff && session.ParticipantID != id {
		WriteError(w, NewUnauthorizedError())
		return
	}

	events, err := h.resultsService.ParticipantTimes(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantTimesFromEvents(events))
}
