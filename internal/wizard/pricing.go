package wizard

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// provisionalTierWidth is the range given to a tier that loses its
// unlimited tail under an unbounded capacity ceiling.
const provisionalTierWidth = 10

// PeopleBound is a participant count that is either a concrete number or
// unbounded. On the upstream wire and in stored drafts an unbounded value
// serializes as -1, but code never compares against the sentinel directly.
type PeopleBound struct {
	n         int
	unbounded bool
}

// Bounded returns a concrete participant bound.
func Bounded(n int) PeopleBound { return PeopleBound{n: n} }

// Unbounded returns the open-ended participant bound.
func Unbounded() PeopleBound { return PeopleBound{unbounded: true} }

// IsUnbounded reports whether the bound is open-ended.
func (b PeopleBound) IsUnbounded() bool { return b.unbounded }

// Value returns the concrete count. Only meaningful when bounded.
func (b PeopleBound) Value() int { return b.n }

// Wire renders the upstream representation: -1 when unbounded.
func (b PeopleBound) Wire() int {
	if b.unbounded {
		return -1
	}
	return b.n
}

// BoundFromWire parses the upstream representation.
func BoundFromWire(n int) PeopleBound {
	if n < 0 {
		return Unbounded()
	}
	return Bounded(n)
}

func (b PeopleBound) String() string {
	if b.unbounded {
		return "unlimited"
	}
	return strconv.Itoa(b.n)
}

// MarshalJSON keeps drafts and wire payloads on the same encoding.
func (b PeopleBound) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Wire())
}

func (b *PeopleBound) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("wizard: people bound: %w", err)
	}
	*b = BoundFromWire(n)
	return nil
}

// Capacity is the participant ceiling for a booking option. GroupMaxSize is
// unbounded when the option has no configured maximum.
type Capacity struct {
	GroupMinSize int         `json:"groupMinSize"`
	GroupMaxSize PeopleBound `json:"groupMaxSize"`
}

// ValidateCapacity enforces the step-3 rules before any upstream call.
func ValidateCapacity(minParticipants, maxParticipants int) error {
	if minParticipants < 1 {
		return validationErr("minParticipants", "minimum participants must be at least 1")
	}
	if maxParticipants < minParticipants {
		return validationErr("maxParticipants", "maximum participants must not be below the minimum")
	}
	return nil
}

// PriceTier is one row of the step-4 price table. ClientPays is kept as the
// operator typed it (minus any trailing currency token); PricePerPerson is
// derived.
type PriceTier struct {
	ID             string      `json:"id"`
	MinPeople      int         `json:"minPeople"`
	MaxPeople      PeopleBound `json:"maxPeople"`
	ClientPays     string      `json:"clientPays"`
	PricePerPerson string      `json:"pricePerPerson"`
}

// DefaultPriceTiers seeds the table with a single tier spanning the whole
// capacity range.
func DefaultPriceTiers(capacity Capacity) []PriceTier {
	return []PriceTier{{
		ID:        uuid.NewString(),
		MinPeople: capacity.GroupMinSize,
		MaxPeople: capacity.GroupMaxSize,
	}}
}

// ConnectPriceTiers returns a new, contiguous, capacity-clamped tier list:
// tiers are sorted by MinPeople, the first starts at GroupMinSize and each
// later tier starts one past its predecessor's end (or one past the
// predecessor's start when the predecessor is unlimited). Bounded ends are
// clamped to the ceiling. Under an unbounded ceiling, tiers that are
// unlimited or collapsed to a single count get a provisional range of
// provisionalTierWidth, and afterwards the last tier is unconditionally
// made unlimited. The input is not mutated.
func ConnectPriceTiers(tiers []PriceTier, capacity Capacity) []PriceTier {
	if len(tiers) == 0 {
		return nil
	}
	out := make([]PriceTier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinPeople < out[j].MinPeople })

	for i := range out {
		if i == 0 {
			out[i].MinPeople = capacity.GroupMinSize
		} else if out[i-1].MaxPeople.IsUnbounded() {
			out[i].MinPeople = out[i-1].MinPeople + 1
		} else {
			out[i].MinPeople = out[i-1].MaxPeople.Value() + 1
		}
		if out[i].MinPeople < capacity.GroupMinSize {
			out[i].MinPeople = capacity.GroupMinSize
		}
		if !capacity.GroupMaxSize.IsUnbounded() && !out[i].MaxPeople.IsUnbounded() &&
			out[i].MaxPeople.Value() > capacity.GroupMaxSize.Value() {
			out[i].MaxPeople = capacity.GroupMaxSize
		}
	}

	if capacity.GroupMaxSize.IsUnbounded() {
		for i := range out {
			if out[i].MaxPeople.IsUnbounded() || out[i].MaxPeople.Value() == out[i].MinPeople {
				out[i].MaxPeople = Bounded(out[i].MinPeople + provisionalTierWidth - 1)
			}
		}
		out[len(out)-1].MaxPeople = Unbounded()
	}
	return out
}

// AddPriceTier appends a tier after the current last one and reconnects.
// Under a bounded ceiling the add is refused when the existing tiers
// already cover the ceiling or the new tier would start past it.
func AddPriceTier(tiers []PriceTier, capacity Capacity) ([]PriceTier, error) {
	if len(tiers) == 0 {
		return ConnectPriceTiers(DefaultPriceTiers(capacity), capacity), nil
	}
	out := make([]PriceTier, len(tiers))
	copy(out, tiers)
	last := &out[len(out)-1]

	if capacity.GroupMaxSize.IsUnbounded() {
		if last.MaxPeople.IsUnbounded() {
			last.MaxPeople = Bounded(last.MinPeople + provisionalTierWidth - 1)
		}
		out = append(out, PriceTier{
			ID:        uuid.NewString(),
			MinPeople: last.MaxPeople.Value() + 1,
			MaxPeople: Unbounded(),
		})
		return ConnectPriceTiers(out, capacity), nil
	}

	ceiling := capacity.GroupMaxSize.Value()
	if last.MaxPeople.IsUnbounded() || last.MaxPeople.Value() >= ceiling {
		return nil, validationErr("tiers", "the existing tiers already cover the maximum group size")
	}
	start := last.MaxPeople.Value() + 1
	if start > ceiling {
		return nil, validationErr("tiers", "a new tier would start past the maximum group size")
	}
	out = append(out, PriceTier{
		ID:        uuid.NewString(),
		MinPeople: start,
		MaxPeople: Bounded(ceiling),
	})
	return ConnectPriceTiers(out, capacity), nil
}

// RemovePriceTier deletes a tier by id and reconnects the remainder.
func RemovePriceTier(tiers []PriceTier, id string, capacity Capacity) ([]PriceTier, error) {
	out := make([]PriceTier, 0, len(tiers))
	found := false
	for _, t := range tiers {
		if t.ID == id {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		return nil, validationErr("tiers", "price tier not found")
	}
	if len(out) == 0 {
		return nil, validationErr("tiers", "at least one price tier is required")
	}
	return ConnectPriceTiers(out, capacity), nil
}

// ValidatePriceTiers enforces the step-4 rules: at least one tier, every
// tier priced, and every range inside the capacity ceiling.
func ValidatePriceTiers(tiers []PriceTier, capacity Capacity) error {
	if len(tiers) == 0 {
		return validationErr("tiers", "at least one price tier is required")
	}
	for _, t := range tiers {
		if strings.TrimSpace(t.ClientPays) == "" {
			return validationErr("tiers", "every price tier needs a client price")
		}
		if t.MinPeople < capacity.GroupMinSize {
			return validationErr("tiers", "tier starting at %d is below the minimum group size", t.MinPeople)
		}
		if !capacity.GroupMaxSize.IsUnbounded() {
			ceiling := capacity.GroupMaxSize.Value()
			if t.MinPeople > ceiling {
				return validationErr("tiers", "tier starting at %d exceeds the maximum group size", t.MinPeople)
			}
			if t.MaxPeople.IsUnbounded() || t.MaxPeople.Value() > ceiling {
				return validationErr("tiers", "tier ending at %s exceeds the maximum group size", t.MaxPeople)
			}
		}
	}
	return nil
}

var trailingCurrencyRe = regexp.MustCompile(`(?i)\s*[a-z]{3}\s*$`)

// StripCurrencySuffix removes a trailing 3-letter currency token such as
// "USD" before numeric parsing.
func StripCurrencySuffix(s string) string {
	return strings.TrimSpace(trailingCurrencyRe.ReplaceAllString(s, ""))
}

// CalculatePricePerPerson derives the operator's net price after commission,
// rendered with two decimals. Non-numeric input yields an empty string.
func CalculatePricePerPerson(clientPays string, commissionPercent float64) string {
	raw := StripCurrencySuffix(clientPays)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ""
	}
	net := v - v*commissionPercent/100
	return fmt.Sprintf("%.2f", math.Round(net*100)/100)
}
