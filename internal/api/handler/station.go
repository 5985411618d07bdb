package handler

import (
	"net/http"

	"github.com/rhale/trailtime/internal/api/response"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/station"
)

// StationHandler exposes the issuance session to the staff display surface
type StationHandler struct {
	session *station.Session
}

// NewStationHandler creates a new station handler
func NewStationHandler(session *station.Session) *StationHandler {
	return &StationHandler{session: session}
}

// Code handles GET /api/v1/station/code?checkpoint=START.
// The display polls this endpoint; the session rotates the token on
// checkpoint change or expiry and the countdown is rendered next to the QR.
func (h *StationHandler) Code(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseCheckpointKind(r.URL.Query().Get("checkpoint"))
	if err != nil {
		WriteError(w, err)
		return
	}

	code, err := h.session.GetOrRotate(kind)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StationCodeFromCode(code))
}
