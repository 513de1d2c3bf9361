package wizard

import (
	"net/url"
	"strconv"
)

// Step identifies the wizard step. The flow is linear:
// schedule, pricing category, capacity, price tiers.
type Step int

const (
	StepSchedule Step = iota + 1
	StepPricingCategory
	StepCapacity
	StepPriceTiers
)

func (s Step) Valid() bool { return s >= StepSchedule && s <= StepPriceTiers }

func (s Step) String() string {
	switch s {
	case StepSchedule:
		return "schedule"
	case StepPricingCategory:
		return "pricing-category"
	case StepCapacity:
		return "capacity"
	case StepPriceTiers:
		return "price-tiers"
	default:
		return "step(" + strconv.Itoa(int(s)) + ")"
	}
}

// StepFromQuery reads the current step from URL query parameters. "step" is
// canonical; "currentStep" is an alias kept for older extranet links and is
// only consulted when "step" is absent. Missing or invalid values default
// to the first step.
func StepFromQuery(q url.Values) Step {
	raw := q.Get("step")
	if raw == "" {
		raw = q.Get("currentStep")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return StepSchedule
	}
	s := Step(n)
	if !s.Valid() {
		return StepSchedule
	}
	return s
}

// State is the merged wizard view model for one booking option session.
// It is reconstructed on every load from the draft store and the upstream
// backend; the client never owns it long-term.
type State struct {
	BusinessID string `json:"businessId"`
	OptionID   string `json:"optionId"`
	Step       Step   `json:"step"`

	Mode     Mode     `json:"mode"`
	Capacity Capacity `json:"capacity"`

	Schedule    ScheduleData `json:"schedule"`
	PricingType PricingType  `json:"pricingType"`
	AgeGroups   []AgeGroup   `json:"ageGroups"`
	Tiers       []PriceTier  `json:"tiers"`

	CommissionPercent float64 `json:"commissionPercent"`
	Currency          string  `json:"currency"`
	OptionTitle       string  `json:"optionTitle"`

	// StepApplicable is false on steps 3 and 4 when pricing is per group;
	// the UI shows a neutral placeholder instead of the form.
	StepApplicable bool `json:"stepApplicable"`
}

// StepResult reports where the wizard goes after a successful submission.
type StepResult struct {
	NextStep   Step   `json:"nextStep,omitempty"`
	SummaryURL string `json:"summaryUrl,omitempty"`
	Done       bool   `json:"done"`
}
