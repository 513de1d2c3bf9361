package wizard

// AvailabilityMode selects which schedule sub-form applies.
type AvailabilityMode string

const (
	AvailabilityTimeSlots    AvailabilityMode = "TIME_SLOTS"
	AvailabilityOpeningHours AvailabilityMode = "OPENING_HOURS"
)

// PricingMode selects whether prices are quoted per person or per group.
// Steps 3 and 4 only apply in PER_PERSON mode.
type PricingMode string

const (
	PricingPerPerson PricingMode = "PER_PERSON"
	PricingPerGroup  PricingMode = "PER_GROUP"
)

// Mode is fetched from the backend once per wizard session and is immutable
// for the session's lifetime. It decides which sub-forms render and which
// validations apply.
type Mode struct {
	AvailabilityMode AvailabilityMode `json:"availabilityMode"`
	PricingMode      PricingMode      `json:"pricingMode"`
}

// DefaultMode is the fallback applied when the mode fetch fails.
func DefaultMode() Mode {
	return Mode{
		AvailabilityMode: AvailabilityTimeSlots,
		PricingMode:      PricingPerPerson,
	}
}

// PerPerson reports whether the capacity and price-tier steps apply.
func (m Mode) PerPerson() bool {
	return m.PricingMode == PricingPerPerson
}

// OpeningHours reports whether slots carry end times.
func (m Mode) OpeningHours() bool {
	return m.AvailabilityMode == AvailabilityOpeningHours
}
