package company

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solviatours/extranet-wizard/pkg/logging"
)

// Handler exposes company profiles over HTTP.
type Handler struct {
	lookup *Lookup
	logger *logging.Logger
}

// NewHandler creates the company HTTP handler.
func NewHandler(lookup *Lookup, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{lookup: lookup, logger: logger}
}

// Routes returns the company route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{businessID}", h.GetProfile)
	return r
}

// GetProfile returns a company's public profile.
// GET /companies/{businessID}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")
	if businessID == "" {
		http.Error(w, `{"error": "business id required"}`, http.StatusBadRequest)
		return
	}
	profile, err := h.lookup.Get(r.Context(), businessID)
	if err != nil {
		h.logger.Error("failed to load company profile", "business_id", businessID, "error", err)
		http.Error(w, `{"error": "company profile unavailable"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		h.logger.Error("failed to encode company profile", "business_id", businessID, "error", err)
	}
}
