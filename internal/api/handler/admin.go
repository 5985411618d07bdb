package handler

import (
	"log/slog"
	"net/http"

	"github.com/rhale/trailtime/internal/api/response"
	"github.com/rhale/trailtime/internal/storage"
)

// AdminHandler handles staff maintenance endpoints
type AdminHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Storage, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		storage: store,
		logger:  logger,
	}
}

// ArchiveEvents handles POST /api/v1/admin/archive, moving all recorded
// timing events into the archive and starting a fresh dataset
func (h *AdminHandler) ArchiveEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.ArchiveEvents(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info("timing events archived")
	response.NoContent(w)
}
