package wizard

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Canonical age group names. Niños and Adultos always exist; Infante and
// Adulto mayor are optional and unique.
const (
	AgeGroupInfant   = "Infante"
	AgeGroupChildren = "Niños"
	AgeGroupAdults   = "Adultos"
	AgeGroupSenior   = "Adulto mayor"
)

// AgeGroup is one row of the age-based pricing table. MaxAge is the only
// user-editable bound; MinAge is always derived by ConnectAgeGroups.
type AgeGroup struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	MinAge int    `json:"minAge"`
	MaxAge int    `json:"maxAge"`
}

var ageGroupRank = map[string]int{
	AgeGroupInfant:   0,
	AgeGroupChildren: 1,
	AgeGroupAdults:   2,
	AgeGroupSenior:   3,
}

// DefaultAgeGroups returns the two protected groups with their default bounds.
func DefaultAgeGroups() []AgeGroup {
	return []AgeGroup{
		{ID: uuid.NewString(), Name: AgeGroupChildren, MinAge: 4, MaxAge: 12},
		{ID: uuid.NewString(), Name: AgeGroupAdults, MinAge: 13, MaxAge: 64},
	}
}

// ConnectAgeGroups returns a new slice in canonical order with MinAge values
// recomputed: the first group starts at 0 and every later group starts one
// year past its predecessor's MaxAge. MaxAge values are never altered.
// A second pass re-asserts the protected names on groups whose bounds are
// exactly 4-12 and 13-64. The input is not mutated.
func ConnectAgeGroups(groups []AgeGroup) []AgeGroup {
	out := make([]AgeGroup, len(groups))
	copy(out, groups)

	// Stable sort by canonical rank; unranked names keep their relative
	// order after the ranked ones.
	sort.SliceStable(out, func(i, j int) bool {
		ra, oka := ageGroupRank[out[i].Name]
		rb, okb := ageGroupRank[out[j].Name]
		switch {
		case oka && okb:
			return ra < rb
		case oka:
			return true
		default:
			return false
		}
	})

	for i := range out {
		if i == 0 {
			out[i].MinAge = 0
		} else {
			out[i].MinAge = out[i-1].MaxAge + 1
		}
	}

	for i := range out {
		switch {
		case out[i].MinAge == 4 && out[i].MaxAge == 12:
			out[i].Name = AgeGroupChildren
		case out[i].MinAge == 13 && out[i].MaxAge == 64:
			out[i].Name = AgeGroupAdults
		}
	}
	return out
}

// ValidateAgeGroups enforces the step-2 rules for the age-based choice:
// every group needs a non-empty name and MinAge strictly below MaxAge.
func ValidateAgeGroups(groups []AgeGroup) error {
	if len(groups) == 0 {
		return validationErr("ageGroups", "at least one age group is required")
	}
	for _, g := range groups {
		if strings.TrimSpace(g.Name) == "" {
			return validationErr("ageGroups", "every age group needs a name")
		}
		if g.MinAge >= g.MaxAge {
			return validationErr("ageGroups", "group %q must have min age below max age", g.Name)
		}
	}
	return nil
}

// AddAgeGroup appends an optional group. Only Infante and Adulto mayor may
// be added, and each at most once. The result is reconnected.
func AddAgeGroup(groups []AgeGroup, name string) ([]AgeGroup, error) {
	if name != AgeGroupInfant && name != AgeGroupSenior {
		return nil, validationErr("ageGroups", "group %q cannot be added", name)
	}
	for _, g := range groups {
		if g.Name == name {
			return nil, validationErr("ageGroups", "group %q already exists", name)
		}
	}
	added := AgeGroup{ID: uuid.NewString(), Name: name}
	switch name {
	case AgeGroupInfant:
		added.MaxAge = 3
	case AgeGroupSenior:
		// Open-ended by convention; the operator adjusts the bound.
		added.MaxAge = 100
		if len(groups) > 0 {
			added.MaxAge = groups[len(groups)-1].MaxAge + 36
		}
	}
	return ConnectAgeGroups(append(append([]AgeGroup(nil), groups...), added)), nil
}

// RemoveAgeGroup deletes an optional group by name. Niños and Adultos are
// protected and cannot be removed.
func RemoveAgeGroup(groups []AgeGroup, name string) ([]AgeGroup, error) {
	if name == AgeGroupChildren || name == AgeGroupAdults {
		return nil, validationErr("ageGroups", "group %q is required and cannot be removed", name)
	}
	out := make([]AgeGroup, 0, len(groups))
	found := false
	for _, g := range groups {
		if g.Name == name {
			found = true
			continue
		}
		out = append(out, g)
	}
	if !found {
		return nil, validationErr("ageGroups", "group %q not found", name)
	}
	return ConnectAgeGroups(out), nil
}

// SetAgeGroupMaxAge edits the only user-editable bound and reconnects.
func SetAgeGroupMaxAge(groups []AgeGroup, id string, maxAge int) ([]AgeGroup, error) {
	out := make([]AgeGroup, len(groups))
	copy(out, groups)
	found := false
	for i := range out {
		if out[i].ID == id {
			out[i].MaxAge = maxAge
			found = true
			break
		}
	}
	if !found {
		return nil, validationErr("ageGroups", "age group not found")
	}
	return ConnectAgeGroups(out), nil
}
