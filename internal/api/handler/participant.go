package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rhale/trailtime/internal/api/request"
	"github.com/rhale/trailtime/internal/api/response"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/registry"
)

// ParticipantHandler handles roster and login endpoints
type ParticipantHandler struct {
	registryService *registry.Service
	authService     *auth.Service
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(registryService *registry.Service, authService *auth.Service) *ParticipantHandler {
	return &ParticipantHandler{
		registryService: registryService,
		authService:     authService,
	}
}

// Register handles POST /api/v1/participants
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.ParticipantID == "" {
		WriteError(w, NewInvalidRequestError("participant_id is required"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	participant, err := h.registryService.Register(r.Context(),
		model.ParticipantID(req.ParticipantID), req.DisplayName, req.Team, req.Passcode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ParticipantFromModel(participant))
}

// List handles GET /api/v1/participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.registryService.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.Participant, 0, len(participants))
	for _, p := range participants {
		out = append(out, response.ParticipantFromModel(p))
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/participants/{id}
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ParticipantID(mux.Vars(r)["id"])

	participant, err := h.registryService.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantFromModel(participant))
}

// Import handles POST /api/v1/participants/import with a CSV request body
func (h *ParticipantHandler) Import(w http.ResponseWriter, r *http.Request) {
	imported, err := h.registryService.ImportCSV(r.Context(), r.Body)
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	response.JSON(w, http.StatusOK, response.ImportResponse{Imported: imported})
}

// Login handles POST /api/v1/login
func (h *ParticipantHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.ParticipantID == "" {
		WriteError(w, NewInvalidRequestError("participant_id is required"))
		return
	}
	if req.Passcode == "" {
		WriteError(w, NewInvalidRequestError("passcode is required"))
		return
	}

	session, err := h.authService.LoginAthlete(r.Context(),
		model.ParticipantID(req.ParticipantID), req.Passcode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// StaffLogin handles POST /api/v1/staff/login
func (h *ParticipantHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req request.StaffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Key == "" {
		WriteError(w, NewInvalidRequestError("key is required"))
		return
	}

	session, err := h.authService.LoginStaff(req.Key)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}
