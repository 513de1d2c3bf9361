package wizard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solviatours/extranet-wizard/internal/auth"
	"github.com/solviatours/extranet-wizard/pkg/logging"
)

// Handler exposes the wizard over HTTP. All routes expect an authenticated
// session; the business id comes from the session claims.
type Handler struct {
	svc    *Service
	nav    Navigator
	logger *logging.Logger
}

// NewHandler creates the wizard HTTP handler.
func NewHandler(svc *Service, nav Navigator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, nav: nav, logger: logger}
}

// Routes returns the wizard route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{optionID}", h.GetState)
	r.Post("/{optionID}/steps/{step}", h.SubmitStep)
	r.Post("/{optionID}/back", h.Back)
	r.Put("/{optionID}/mode", h.SetMode)
	r.Put("/{optionID}/capacity", h.SetCapacity)
	r.Post("/{optionID}/age-groups", h.AddAgeGroup)
	r.Delete("/{optionID}/age-groups/{name}", h.RemoveAgeGroup)
	r.Put("/{optionID}/age-groups/{groupID}/max-age", h.SetAgeGroupMaxAge)
	r.Post("/{optionID}/tiers", h.AddPriceTier)
	r.Delete("/{optionID}/tiers/{tierID}", h.RemovePriceTier)
	return r
}

func (h *Handler) navContext(r *http.Request, optionID string) NavContext {
	q := r.URL.Query()
	return NavContext{
		OptionID:   optionID,
		ActivityID: q.Get("activityId"),
		Lang:       q.Get("lang"),
		Currency:   q.Get("currency"),
	}
}

func (h *Handler) loadState(w http.ResponseWriter, r *http.Request, step Step) (*State, bool) {
	businessID, ok := auth.BusinessIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "missing session"}`, http.StatusUnauthorized)
		return nil, false
	}
	optionID := chi.URLParam(r, "optionID")
	if optionID == "" {
		http.Error(w, `{"error": "option id required"}`, http.StatusBadRequest)
		return nil, false
	}
	st, err := h.svc.LoadState(r.Context(), businessID, optionID, step)
	if err != nil {
		h.logger.Error("failed to load wizard state", "option_id", optionID, "error", err)
		http.Error(w, `{"error": "failed to load wizard state"}`, http.StatusInternalServerError)
		return nil, false
	}
	return st, true
}

// GetState returns the merged wizard state for the requested step.
// GET /wizard/{optionID}?step=N
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r, StepFromQuery(r.URL.Query()))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// submitStepRequest carries the step-specific form fields. Only the fields
// belonging to the submitted step are consulted.
type submitStepRequest struct {
	Schedule        *ScheduleData `json:"schedule,omitempty"`
	PricingType     PricingType   `json:"pricingType,omitempty"`
	AgeGroups       []AgeGroup    `json:"ageGroups,omitempty"`
	MinParticipants *int          `json:"minParticipants,omitempty"`
	MaxParticipants *int          `json:"maxParticipants,omitempty"`
	Tiers           []PriceTier   `json:"tiers,omitempty"`
}

// SubmitStep runs save-and-continue for one step.
// POST /wizard/{optionID}/steps/{step}
func (h *Handler) SubmitStep(w http.ResponseWriter, r *http.Request) {
	// The path step governs the load: a step-4 submission needs the
	// dedicated capacity bounds, which are only fetched from that step on.
	step := StepFromQuery(urlValues("step", chi.URLParam(r, "step")))
	st, ok := h.loadState(w, r, step)
	if !ok {
		return
	}

	var req submitStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	h.applyStepRequest(st, step, &req)

	nav := h.navContext(r, st.OptionID)
	result, err := h.svc.SubmitStep(r.Context(), st, nav)
	if err != nil {
		h.writeStepError(w, st, err)
		return
	}
	if !result.Done {
		result.SummaryURL = ""
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) applyStepRequest(st *State, step Step, req *submitStepRequest) {
	switch step {
	case StepSchedule:
		if req.Schedule != nil {
			st.Schedule = *req.Schedule
		}
	case StepPricingCategory:
		if req.PricingType != "" {
			st.PricingType = req.PricingType
		}
		if len(req.AgeGroups) > 0 {
			st.AgeGroups = ConnectAgeGroups(req.AgeGroups)
		}
	case StepCapacity:
		if req.MinParticipants != nil {
			st.Capacity.GroupMinSize = *req.MinParticipants
		}
		if req.MaxParticipants != nil {
			st.Capacity.GroupMaxSize = BoundFromWire(*req.MaxParticipants)
		}
	case StepPriceTiers:
		if len(req.Tiers) > 0 {
			st.Tiers = ConnectPriceTiers(req.Tiers, st.Capacity)
		}
	}
}

func (h *Handler) writeStepError(w http.ResponseWriter, st *State, err error) {
	var vErr *ValidationError
	var uErr *UpstreamError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": vErr.Message,
			"field": vErr.Field,
		})
	case errors.Is(err, ErrSaveInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a save is already in progress"})
	case errors.As(err, &uErr):
		h.logger.Error("wizard step submission failed upstream",
			"option_id", st.OptionID, "step", st.Step.String(), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": uErr.Message})
	default:
		h.logger.Error("wizard step submission failed",
			"option_id", st.OptionID, "step", st.Step.String(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// Back resolves the back-navigation target for the current step.
// POST /wizard/{optionID}/back?step=N
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	optionID := chi.URLParam(r, "optionID")
	step := StepFromQuery(r.URL.Query())
	nav := h.navContext(r, optionID)
	writeJSON(w, http.StatusOK, map[string]string{"backUrl": h.nav.BackURL(nav, step)})
}

// SetMode stores the availability/pricing mode for the option. The mode is
// normally chosen once, before the wizard is entered.
// PUT /wizard/{optionID}/mode
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	businessID, ok := auth.BusinessIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "missing session"}`, http.StatusUnauthorized)
		return
	}
	optionID := chi.URLParam(r, "optionID")
	var mode Mode
	if err := json.NewDecoder(r.Body).Decode(&mode); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if mode.AvailabilityMode != AvailabilityTimeSlots && mode.AvailabilityMode != AvailabilityOpeningHours {
		h.writeStepError(w, &State{OptionID: optionID}, validationErr("availabilityMode", "unknown availability mode"))
		return
	}
	if mode.PricingMode != PricingPerPerson && mode.PricingMode != PricingPerGroup {
		h.writeStepError(w, &State{OptionID: optionID}, validationErr("pricingMode", "unknown pricing mode"))
		return
	}
	if err := h.svc.client.CreateMode(r.Context(), businessID, optionID, mode); err != nil {
		h.writeStepError(w, &State{OptionID: optionID}, err)
		return
	}
	writeJSON(w, http.StatusOK, mode)
}

// SetCapacity updates the draft capacity and reconnects the drafted tier
// table under the new bounds. maxParticipants -1 means no maximum.
// PUT /wizard/{optionID}/capacity
func (h *Handler) SetCapacity(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r, StepPriceTiers)
	if !ok {
		return
	}
	var req struct {
		MinParticipants int `json:"minParticipants"`
		MaxParticipants int `json:"maxParticipants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	capacity := Capacity{
		GroupMinSize: req.MinParticipants,
		GroupMaxSize: BoundFromWire(req.MaxParticipants),
	}
	maxP := capacity.GroupMinSize
	if !capacity.GroupMaxSize.IsUnbounded() {
		maxP = capacity.GroupMaxSize.Value()
	}
	if err := ValidateCapacity(capacity.GroupMinSize, maxP); err != nil {
		h.writeStepError(w, st, err)
		return
	}
	tiers := ConnectPriceTiers(st.Tiers, capacity)
	if err := h.svc.drafts.SetPriceTiers(r.Context(), st.OptionID, tiers); err != nil {
		h.logger.Warn("draft price tiers write failed", "option_id", st.OptionID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"capacity": capacity, "tiers": tiers})
}

// AddAgeGroup adds an optional age group to the draft.
// POST /wizard/{optionID}/age-groups {"name": "Infante"}
func (h *Handler) AddAgeGroup(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r, StepPricingCategory)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	groups, err := AddAgeGroup(st.AgeGroups, req.Name)
	if err != nil {
		h.writeStepError(w, st, err)
		return
	}
	h.saveAgeGroups(w, r, st, groups)
}

// RemoveAgeGroup removes an optional age group from the draft.
// DELETE /wizard/{optionID}/age-groups/{name}
func (h *Handler) RemoveAgeGroup(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r, StepPricingCategory)
	if !ok {
		return
	}
	groups, err := RemoveAgeGroup(st.AgeGroups, chi.URLParam(r, "name"))
	if err != nil {
		h.writeStepError(w, st, err)
		return
	}
	h.saveAgeGroups(w, r, st, groups)
}

// SetAgeGroupMaxAge edits a group's upper bound and reconnects the table.
// PUT /wizard/{optionID}/age-groups/{groupID}/max-age {"maxAge": 15}
func (h *Handler) SetAgeGroupMaxAge(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r, StepPricingCategory)
	if !ok {
		return
	}
	var req struct {
		MaxAge int `json:"maxAge"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	groups, err := SetAgeGroupMaxAge(st.AgeGroups, chi.URLParam(r, "groupID"), req.MaxAge)
	if err != nil {
		h.writeStepError(w, st, err)
		return
	}
	h.saveAgeGroups(w, r, st, groups)
}

func (h *Handler) saveAgeGroups(w http.ResponseWriter, r *http.Request, st *State, groups []AgeGroup) {
	if err := h.svc.drafts.SetAgeGroups(r.Context(), st.OptionID, groups); err != nil {
		h.logger.Warn("draft age groups write failed", "option_id", st.OptionID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ageGroups": groups})
}

// AddPriceTier appends a tier to the draft under the current capacity.
// POST /wizard/{optionID}/tiers
func (h *Handler) AddPriceTier(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r, StepPriceTiers)
	if !ok {
		return
	}
	tiers, err := AddPriceTier(st.Tiers, st.Capacity)
	if err != nil {
		h.writeStepError(w, st, err)
		return
	}
	h.savePriceTiers(w, r, st, tiers)
}

// RemovePriceTier deletes a tier from the draft.
// DELETE /wizard/{optionID}/tiers/{tierID}
func (h *Handler) RemovePriceTier(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r, StepPriceTiers)
	if !ok {
		return
	}
	tiers, err := RemovePriceTier(st.Tiers, chi.URLParam(r, "tierID"), st.Capacity)
	if err != nil {
		h.writeStepError(w, st, err)
		return
	}
	h.savePriceTiers(w, r, st, tiers)
}

func (h *Handler) savePriceTiers(w http.ResponseWriter, r *http.Request, st *State, tiers []PriceTier) {
	if err := h.svc.drafts.SetPriceTiers(r.Context(), st.OptionID, tiers); err != nil {
		h.logger.Warn("draft price tiers write failed", "option_id", st.OptionID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiers": tiers})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func urlValues(key, value string) map[string][]string {
	return map[string][]string{key: {value}}
}
