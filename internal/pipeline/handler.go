package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beespeak/honeypot/pkg/logging"
)

// Handler wires HTTP requests to the pipeline service.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a pipeline handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Process handles POST /api/v1/honeypot/process.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode process request", "error", err)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Process(r.Context(), req)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Error()})
			return
		}
		h.logger.Error("failed to process message", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to process message"})
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
