package wizard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/solviatours/extranet-wizard/internal/observability/metrics"
	"github.com/solviatours/extranet-wizard/pkg/logging"
)

var wizardTracer = otel.Tracer("extranet.internal.wizard")

// session tracks the per-option mutable bits the state machine needs across
// requests: the merge generation counter and the saving flag that
// serializes submissions.
type session struct {
	mu         sync.Mutex
	generation uint64
	saving     bool
}

func (s *session) beginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

func (s *session) beginSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return false
	}
	s.saving = true
	return true
}

func (s *session) endSave() {
	s.mu.Lock()
	s.saving = false
	s.mu.Unlock()
}

// Service orchestrates the wizard: loading and merging state, per-step
// validation, upstream submission and step advancement.
type Service struct {
	client  *Client
	drafts  *DraftStore
	nav     Navigator
	logger  *logging.Logger
	metrics *metrics.WizardMetrics

	commissionPercent float64
	defaultCurrency   string

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService constructs the wizard service.
func NewService(client *Client, drafts *DraftStore, nav Navigator, commissionPercent float64, defaultCurrency string, m *metrics.WizardMetrics, logger *logging.Logger) *Service {
	if client == nil {
		panic("wizard: client required")
	}
	if drafts == nil {
		panic("wizard: draft store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:            client,
		drafts:            drafts,
		nav:               nav,
		logger:            logger,
		metrics:           m,
		commissionPercent: commissionPercent,
		defaultCurrency:   defaultCurrency,
		sessions:          make(map[string]*session),
	}
}

func (s *Service) sessionFor(businessID, optionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := businessID + "/" + optionID
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := &session{}
	s.sessions[key] = sess
	return sess
}

// LoadState rebuilds the merged wizard state for one option and step. The
// draft cache, the mode, the booking option and (in per-person mode) the
// capacity are fetched and reconciled in one deterministic pass. A
// generation counter discards merges that belong to an abandoned load.
func (s *Service) LoadState(ctx context.Context, businessID, optionID string, step Step) (*State, error) {
	ctx, span := wizardTracer.Start(ctx, "wizard.load_state")
	defer span.End()
	span.SetAttributes(
		attribute.String("extranet.option_id", optionID),
		attribute.Int("extranet.step", int(step)),
	)

	sess := s.sessionFor(businessID, optionID)
	gen := sess.beginLoad()

	if !step.Valid() {
		step = StepSchedule
	}
	st := &State{
		BusinessID:        businessID,
		OptionID:          optionID,
		Step:              step,
		Mode:              DefaultMode(),
		CommissionPercent: s.commissionPercent,
		Currency:          s.defaultCurrency,
		StepApplicable:    true,
	}

	// Draft cache first; failures are logged and ignored, the form starts
	// from in-memory defaults.
	s.mergeDraft(ctx, st)

	// Mode is authoritative for gating; failure falls back to defaults.
	if mode, err := s.client.GetMode(ctx, businessID, optionID); err != nil {
		s.logger.Warn("mode fetch failed, using default", "option_id", optionID, "error", err)
	} else {
		st.Mode = *mode
	}

	option, err := s.client.GetBookingOption(ctx, businessID, optionID)
	if err != nil {
		s.logger.Warn("booking option fetch failed", "option_id", optionID, "error", err)
	}

	// Previously saved backend state seeds the form when no draft exists.
	if st.Schedule.ScheduleName == "" {
		if dt, err := s.client.GetDepartureTime(ctx, businessID, optionID); err != nil {
			s.logger.Debug("no stored departure time", "option_id", optionID, "error", err)
		} else if dt != nil {
			st.Schedule = scheduleFromDeparture(dt)
		}
	}
	if len(st.Tiers) == 0 && st.Mode.PerPerson() && step >= StepPriceTiers {
		if wire, err := s.client.GetPriceTiers(ctx, businessID, optionID); err != nil {
			s.logger.Debug("no stored price tiers", "option_id", optionID, "error", err)
		} else if len(wire) > 0 {
			st.Tiers = tiersFromWire(wire)
		}
	}

	var capacity *Capacity
	if st.Mode.PerPerson() && step >= StepCapacity {
		if c, err := s.client.GetCapacity(ctx, businessID, optionID); err != nil {
			s.logger.Warn("capacity fetch failed", "option_id", optionID, "error", err)
		} else {
			capacity = c
		}
	}

	// Late merges from an abandoned load must not clobber newer state.
	if !sess.current(gen) {
		s.logger.Debug("discarding stale wizard load", "option_id", optionID, "generation", gen)
		return nil, context.Canceled
	}

	s.reconcile(st, option, capacity)
	return st, nil
}

func (s *Service) mergeDraft(ctx context.Context, st *State) {
	if sched, err := s.drafts.GetSchedule(ctx, st.OptionID); err != nil {
		s.logger.Warn("draft schedule read failed", "option_id", st.OptionID, "error", err)
		s.metrics.ObserveDraftCache("read", "error")
	} else if sched != nil {
		st.Schedule = *sched
		s.metrics.ObserveDraftCache("read", "hit")
	} else {
		s.metrics.ObserveDraftCache("read", "miss")
	}
	if pt, err := s.drafts.GetPricingType(ctx, st.OptionID); err != nil {
		s.logger.Warn("draft pricing type read failed", "option_id", st.OptionID, "error", err)
	} else if pt != "" {
		st.PricingType = pt
	}
	if groups, err := s.drafts.GetAgeGroups(ctx, st.OptionID); err != nil {
		s.logger.Warn("draft age groups read failed", "option_id", st.OptionID, "error", err)
	} else if len(groups) > 0 {
		st.AgeGroups = groups
	}
	if tiers, err := s.drafts.GetPriceTiers(ctx, st.OptionID); err != nil {
		s.logger.Warn("draft price tiers read failed", "option_id", st.OptionID, "error", err)
	} else if len(tiers) > 0 {
		st.Tiers = tiers
	}
}

func (s *Service) cacheDraft(op string, err error) {
	if err != nil {
		s.metrics.ObserveDraftCache(op, "error")
		return
	}
	s.metrics.ObserveDraftCache(op, "ok")
}

// reconcile folds the fetched sources into the state and re-derives every
// computed field, so the result does not depend on fetch arrival order.
func (s *Service) reconcile(st *State, option *BookingOption, capacity *Capacity) {
	if option != nil {
		st.OptionTitle = option.Title
		if option.Currency != "" {
			st.Currency = option.Currency
		}
		// Capacity falls back to the option's own group bounds when the
		// dedicated endpoint did not supply it.
		st.Capacity = Capacity{
			GroupMinSize: option.MinGroupSize,
			GroupMaxSize: option.MaxGroupSize,
		}
	}
	if capacity != nil {
		st.Capacity = *capacity
	}
	if st.Capacity.GroupMinSize < 1 {
		st.Capacity.GroupMinSize = 1
	}
	// A maximum below the minimum means no source supplied one; treat the
	// ceiling as open-ended.
	if !st.Capacity.GroupMaxSize.IsUnbounded() && st.Capacity.GroupMaxSize.Value() < st.Capacity.GroupMinSize {
		st.Capacity.GroupMaxSize = Unbounded()
	}

	st.StepApplicable = st.Step < StepCapacity || st.Mode.PerPerson()

	if st.Schedule.TimeSlots == nil {
		st.Schedule.TimeSlots = make(map[Weekday][]TimeSlot)
	}
	if st.PricingType == "" {
		st.PricingType = PricingTypeSame
	}
	if len(st.AgeGroups) == 0 {
		st.AgeGroups = DefaultAgeGroups()
	}
	st.AgeGroups = ConnectAgeGroups(st.AgeGroups)

	if st.Mode.PerPerson() {
		if len(st.Tiers) == 0 {
			st.Tiers = DefaultPriceTiers(st.Capacity)
		}
		st.Tiers = ConnectPriceTiers(st.Tiers, st.Capacity)
		for i := range st.Tiers {
			st.Tiers[i].ClientPays = StripCurrencySuffix(st.Tiers[i].ClientPays)
			st.Tiers[i].PricePerPerson = CalculatePricePerPerson(st.Tiers[i].ClientPays, st.CommissionPercent)
		}
	}
}

// SubmitStep validates and persists the current step, returning where the
// wizard goes next. Validation failures abort before any upstream call.
// Concurrent submissions for the same option are refused while one is in
// flight.
func (s *Service) SubmitStep(ctx context.Context, st *State, nav NavContext) (*StepResult, error) {
	ctx, span := wizardTracer.Start(ctx, "wizard.submit_step")
	defer span.End()
	span.SetAttributes(
		attribute.String("extranet.option_id", st.OptionID),
		attribute.Int("extranet.step", int(st.Step)),
	)

	sess := s.sessionFor(st.BusinessID, st.OptionID)
	if !sess.beginSave() {
		s.observeStep(st.Step, "rejected")
		return nil, ErrSaveInProgress
	}
	defer sess.endSave()

	result, err := s.submit(ctx, st, nav)
	if err != nil {
		span.RecordError(err)
		s.observeStep(st.Step, statusFor(err))
		return nil, err
	}
	s.observeStep(st.Step, "success")
	s.logger.Info("wizard step saved", "option_id", st.OptionID, "step", st.Step.String())
	return result, nil
}

func (s *Service) submit(ctx context.Context, st *State, nav NavContext) (*StepResult, error) {
	switch st.Step {
	case StepSchedule:
		return s.submitSchedule(ctx, st)
	case StepPricingCategory:
		return s.submitPricingCategory(ctx, st)
	case StepCapacity:
		return s.submitCapacity(ctx, st)
	case StepPriceTiers:
		return s.submitPriceTiers(ctx, st, nav)
	default:
		return nil, validationErr("step", "unknown step %d", int(st.Step))
	}
}

func (s *Service) submitSchedule(ctx context.Context, st *State) (*StepResult, error) {
	if err := st.Schedule.Validate(st.Mode); err != nil {
		return nil, err
	}
	req, err := st.Schedule.BuildDepartureTimeRequest(st.BusinessID, st.OptionID)
	if err != nil {
		return nil, err
	}
	if err := s.callUpstream(ctx, "departure-time", func() error {
		return s.client.CreateDepartureTime(ctx, req)
	}); err != nil {
		return nil, err
	}
	if err := s.drafts.SetSchedule(ctx, st.OptionID, &st.Schedule); err != nil {
		s.logger.Warn("draft schedule write failed", "option_id", st.OptionID, "error", err)
		s.cacheDraft("write", err)
	} else {
		s.cacheDraft("write", nil)
	}
	return &StepResult{NextStep: StepPricingCategory}, nil
}

func (s *Service) submitPricingCategory(ctx context.Context, st *State) (*StepResult, error) {
	switch st.PricingType {
	case PricingTypeSame:
		// No remote call for this step; the choice is only cached.
	case PricingTypeAgeBased:
		if err := ValidateAgeGroups(st.AgeGroups); err != nil {
			return nil, err
		}
	default:
		return nil, validationErr("pricingType", "choose a pricing category")
	}
	if err := s.drafts.SetPricingType(ctx, st.OptionID, st.PricingType); err != nil {
		s.logger.Warn("draft pricing type write failed", "option_id", st.OptionID, "error", err)
	}
	if st.PricingType == PricingTypeAgeBased {
		if err := s.drafts.SetAgeGroups(ctx, st.OptionID, st.AgeGroups); err != nil {
			s.logger.Warn("draft age groups write failed", "option_id", st.OptionID, "error", err)
		}
	}
	return &StepResult{NextStep: StepCapacity}, nil
}

func (s *Service) submitCapacity(ctx context.Context, st *State) (*StepResult, error) {
	if !st.Mode.PerPerson() {
		return nil, validationErr("step", "capacity does not apply to per-group pricing")
	}
	minP := st.Capacity.GroupMinSize
	maxP := minP
	if !st.Capacity.GroupMaxSize.IsUnbounded() {
		maxP = st.Capacity.GroupMaxSize.Value()
	}
	if err := ValidateCapacity(minP, maxP); err != nil {
		return nil, err
	}
	if err := s.callUpstream(ctx, "capacity", func() error {
		return s.client.CreateCapacity(ctx, CapacityRequest{
			BusinessID:   st.BusinessID,
			OptionID:     st.OptionID,
			GroupMinSize: minP,
		})
	}); err != nil {
		return nil, err
	}
	return &StepResult{NextStep: StepPriceTiers}, nil
}

func (s *Service) submitPriceTiers(ctx context.Context, st *State, nav NavContext) (*StepResult, error) {
	if !st.Mode.PerPerson() {
		return nil, validationErr("step", "price tiers do not apply to per-group pricing")
	}
	if err := ValidatePriceTiers(st.Tiers, st.Capacity); err != nil {
		return nil, err
	}
	req := PriceTiersRequest{
		BusinessID: st.BusinessID,
		OptionID:   st.OptionID,
		Tiers:      make([]PriceTierWire, 0, len(st.Tiers)),
	}
	for _, t := range st.Tiers {
		clientPays := StripCurrencySuffix(t.ClientPays)
		total, err := parsePrice(clientPays)
		if err != nil {
			return nil, validationErr("tiers", "price %q is not a number", t.ClientPays)
		}
		perPerson, _ := parsePrice(CalculatePricePerPerson(clientPays, st.CommissionPercent))
		wire := PriceTierWire{
			MinParticipants:     t.MinPeople,
			TotalPrice:          total,
			CommissionPercent:   st.CommissionPercent,
			PricePerParticipant: perPerson,
			Currency:            st.Currency,
		}
		if !t.MaxPeople.IsUnbounded() {
			maxPeople := t.MaxPeople.Value()
			wire.MaxParticipants = &maxPeople
		}
		req.Tiers = append(req.Tiers, wire)
	}
	if err := s.callUpstream(ctx, "price-tiers", func() error {
		return s.client.CreatePriceTiers(ctx, req)
	}); err != nil {
		return nil, err
	}
	if err := s.drafts.SetPriceTiers(ctx, st.OptionID, st.Tiers); err != nil {
		s.logger.Warn("draft price tiers write failed", "option_id", st.OptionID, "error", err)
		s.cacheDraft("write", err)
	} else {
		s.cacheDraft("write", nil)
	}
	return &StepResult{Done: true, SummaryURL: s.nav.SummaryURL(nav)}, nil
}

func (s *Service) callUpstream(ctx context.Context, endpoint string, call func() error) error {
	start := time.Now()
	err := call()
	s.metrics.ObserveUpstream(endpoint, time.Since(start).Seconds(), err == nil)
	return err
}

func (s *Service) observeStep(step Step, status string) {
	s.metrics.ObserveStepSubmission(step.String(), status)
}

func statusFor(err error) string {
	switch err.(type) {
	case *ValidationError:
		return "validation_failed"
	case *UpstreamError:
		return "upstream_failed"
	default:
		return "error"
	}
}

// scheduleFromDeparture rebuilds the step-1 view model from the stored
// backend payload.
func scheduleFromDeparture(dt *DepartureTimeRequest) ScheduleData {
	sched := ScheduleData{
		ScheduleName: dt.Title,
		StartDate:    dt.StartDate,
		TimeSlots:    make(map[Weekday][]TimeSlot),
		Exceptions:   append([]ScheduleException(nil), dt.Exceptions...),
	}
	if dt.EndDate != nil {
		sched.HasEndDate = true
		sched.EndDate = *dt.EndDate
	}
	for _, slot := range dt.Slots {
		day := Weekday(slot.Day)
		if day < Monday || day > Sunday {
			continue
		}
		sched.TimeSlots[day] = append(sched.TimeSlots[day], TimeSlot{
			ID:        uuid.NewString(),
			Hour:      slot.Hour,
			Minute:    slot.Minute,
			EndHour:   slot.EndHour,
			EndMinute: slot.EndMinute,
		})
	}
	return sched
}

// tiersFromWire rebuilds the step-4 table from the stored backend payload.
// Derived fields are filled in by reconcile.
func tiersFromWire(wire []PriceTierWire) []PriceTier {
	tiers := make([]PriceTier, 0, len(wire))
	for _, w := range wire {
		t := PriceTier{
			ID:         uuid.NewString(),
			MinPeople:  w.MinParticipants,
			MaxPeople:  Unbounded(),
			ClientPays: strconv.FormatFloat(w.TotalPrice, 'f', -1, 64),
		}
		if w.MaxParticipants != nil {
			t.MaxPeople = Bounded(*w.MaxParticipants)
		}
		tiers = append(tiers, t)
	}
	return tiers
}

func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
