package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solviatours/extranet-wizard/pkg/logging"
)

// Handler exposes login and logout.
type Handler struct {
	client   *Client
	sessions *Sessions
	logger   *logging.Logger
}

// NewHandler creates the auth HTTP handler.
func NewHandler(client *Client, sessions *Sessions, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, sessions: sessions, logger: logger}
}

// Routes returns the auth route tree. Login is public; logout requires a
// session.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.With(h.sessions.Middleware()).Post("/logout", h.Logout)
	return r
}

type loginResponse struct {
	Token      string `json:"token"`
	BusinessID string `json:"businessId"`
	Name       string `json:"name"`
}

// Login forwards credentials upstream and issues a session token.
// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		http.Error(w, `{"error": "email and password are required"}`, http.StatusBadRequest)
		return
	}

	identity, err := h.client.Login(r.Context(), creds)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed upstream", "error", err)
		http.Error(w, `{"error": "login unavailable"}`, http.StatusBadGateway)
		return
	}

	token, err := h.sessions.Issue(identity)
	if err != nil {
		h.logger.Error("session issue failed", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("operator logged in", "business_id", identity.BusinessID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{
		Token:      token,
		BusinessID: identity.BusinessID,
		Name:       identity.Name,
	})
}

// Logout revokes the current session token.
// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "missing session"}`, http.StatusUnauthorized)
		return
	}
	if err := h.sessions.Revoke(r.Context(), claims); err != nil {
		h.logger.Error("session revoke failed", "business_id", claims.BusinessID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.logger.Info("operator logged out", "business_id", claims.BusinessID)
	w.WriteHeader(http.StatusNoContent)
}
