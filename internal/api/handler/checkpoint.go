package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rhale/trailtime/internal/api/middleware"
	"github.com/rhale/trailtime/internal/api/request"
	"github.com/rhale/trailtime/internal/api/response"
	"github.com/rhale/trailtime/internal/dependencies/clock"
	"github.com/rhale/trailtime/internal/metrics"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/recorder"
	"github.com/rhale/trailtime/internal/services/token"
)

// CheckpointHandler handles scan and manual checkpoint entry endpoints
type CheckpointHandler struct {
	codec           *token.Codec
	recorderService *recorder.Service
	clock           clock.Clock
	tokenExpiry     time.Duration
	logger          *slog.Logger
}

// NewCheckpointHandler creates a new checkpoint handler
func NewCheckpointHandler(codec *token.Codec, recorderService *recorder.Service, clk clock.Clock, tokenExpiry time.Duration, logger *slog.Logger) *CheckpointHandler {
	return &CheckpointHandler{
		codec:           codec,
		recorderService: recorderService,
		clock:           clk,
		tokenExpiry:     tokenExpiry,
		logger:          logger,
	}
}

// Scan handles GET and POST /api/v1/scan for a logged-in athlete.
// GET carries the token as the ?token= query parameter (the QR link form);
// POST carries it in the JSON body.
func (h *CheckpointHandler) Scan(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	if session.Role != auth.RoleAthlete {
		WriteError(w, NewInvalidRequestError("scan requires an athlete session"))
		return
	}

	raw := r.URL.Query().Get("token")
	if raw == "" && r.Method == http.MethodPost {
		var req request.ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			raw = req.Token
		}
	}
	if raw == "" {
		WriteError(w, NewInvalidRequestError("token is required"))
		return
	}

	now := h.clock.Now()
	kind, err := h.codec.Verify(raw, now, h.tokenExpiry)
	if err != nil {
		result := "invalid"
		if errors.Is(err, model.ErrTokenExpired) {
			result = "expired"
		}
		metrics.RecordTokenVerification(result)
		h.logger.Warn("token verification failed",
			slog.String("participant_id", string(session.ParticipantID)),
			slog.String("result", result))
		WriteError(w, err)
		return
	}
	metrics.RecordTokenVerification("ok")

	record, err := h.recorderService.Record(r.Context(), session.ParticipantID, kind, now)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScanResponseFromRecord(record))
}

// ManualEntry handles POST /api/v1/checkpoints (staff manual entry)
func (h *CheckpointHandler) ManualEntry(w http.ResponseWriter, r *http.Request) {
	var req request.ManualCheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.ParticipantID == "" {
		WriteError(w, NewInvalidRequestError("participant_id is required"))
		return
	}
	kind, err := model.ParseCheckpointKind(req.Checkpoint)
	if err != nil {
		WriteError(w, err)
		return
	}

	at := h.clock.Now()
	if req.Timestamp != "" {
		at, err = time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			WriteError(w, NewInvalidRequestError("timestamp must be RFC3339"))
			return
		}
	}

	record, err := h.recorderService.Record(r.Context(), model.ParticipantID(req.ParticipantID), kind, at)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScanResponseFromRecord(record))
}
