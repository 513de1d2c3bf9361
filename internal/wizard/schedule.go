package wizard

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxScheduleNameLen = 50

// TimeSlot is a single departure (or opening-hours window) within a weekday.
// EndHour/EndMinute are populated only in opening-hours mode.
type TimeSlot struct {
	ID        string `json:"id"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	EndHour   *int   `json:"endHour,omitempty"`
	EndMinute *int   `json:"endMinute,omitempty"`
}

// NewTimeSlot creates a slot with a fresh identifier.
func NewTimeSlot(hour, minute int) TimeSlot {
	return TimeSlot{ID: uuid.NewString(), Hour: hour, Minute: minute}
}

// ScheduleException is a calendar override for a single date.
type ScheduleException struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ScheduleData is the step-1 view model for one booking option.
// WeeklySchedule is the legacy per-weekday flag map superseded by TimeSlots;
// it is kept so older drafts still load.
type ScheduleData struct {
	ScheduleName   string                 `json:"scheduleName"`
	StartDate      string                 `json:"startDate"`
	HasEndDate     bool                   `json:"hasEndDate"`
	EndDate        string                 `json:"endDate,omitempty"`
	WeeklySchedule map[Weekday]bool       `json:"weeklySchedule,omitempty"`
	TimeSlots      map[Weekday][]TimeSlot `json:"timeSlots"`
	Exceptions     []ScheduleException    `json:"exceptions,omitempty"`
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"02/01/2006",
	time.RFC3339,
}

// NormalizeDate parses the accepted date formats and renders YYYY-MM-DD.
// Malformed input is an error, never silently coerced.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", validationErr("date", "invalid date %q, expected YYYY-MM-DD", s)
}

// HasAnySlot reports whether at least one weekday carries a time slot.
func (s *ScheduleData) HasAnySlot() bool {
	for _, slots := range s.TimeSlots {
		if len(slots) > 0 {
			return true
		}
	}
	return false
}

// Validate enforces the step-1 rules. In opening-hours mode, a slot whose
// start equals its end is rejected.
func (s *ScheduleData) Validate(mode Mode) error {
	name := strings.TrimSpace(s.ScheduleName)
	if name == "" {
		return validationErr("scheduleName", "schedule name is required")
	}
	if len([]rune(name)) > maxScheduleNameLen {
		return validationErr("scheduleName", "schedule name exceeds %d characters", maxScheduleNameLen)
	}
	if _, err := NormalizeDate(s.StartDate); err != nil {
		return validationErr("startDate", "start date is invalid")
	}
	if s.HasEndDate {
		if _, err := NormalizeDate(s.EndDate); err != nil {
			return validationErr("endDate", "end date is invalid")
		}
	}
	if !s.HasAnySlot() {
		return validationErr("timeSlots", "at least one weekly time slot is required")
	}
	if mode.OpeningHours() {
		for _, day := range Weekdays() {
			for _, slot := range s.TimeSlots[day] {
				if slot.EndHour == nil || slot.EndMinute == nil {
					return validationErr("timeSlots", "opening hours require an end time on %s", day)
				}
				if slot.Hour == *slot.EndHour && slot.Minute == *slot.EndMinute {
					return validationErr("timeSlots", "start and end time must differ on %s", day)
				}
			}
		}
	}
	return nil
}

// DepartureSlot is the flattened wire form of a weekly slot. Day index 0 is
// Monday, matching the Weekday enumeration.
type DepartureSlot struct {
	Day       int  `json:"day"`
	Hour      int  `json:"hour"`
	Minute    int  `json:"minute"`
	EndHour   *int `json:"endHour,omitempty"`
	EndMinute *int `json:"endMinute,omitempty"`
}

// DepartureTimeRequest is the step-1 submission payload.
type DepartureTimeRequest struct {
	BusinessID string              `json:"businessId"`
	OptionID   string              `json:"optionId"`
	Title      string              `json:"title"`
	StartDate  string              `json:"startDate"`
	EndDate    *string             `json:"endDate,omitempty"`
	Slots      []DepartureSlot     `json:"slots"`
	Exceptions []ScheduleException `json:"exceptions"`
}

// BuildDepartureTimeRequest normalizes dates and flattens the weekday map
// into the ordered slot list the backend expects. Validate must have passed.
func (s *ScheduleData) BuildDepartureTimeRequest(businessID, optionID string) (*DepartureTimeRequest, error) {
	start, err := NormalizeDate(s.StartDate)
	if err != nil {
		return nil, err
	}
	req := &DepartureTimeRequest{
		BusinessID: businessID,
		OptionID:   optionID,
		Title:      strings.TrimSpace(s.ScheduleName),
		StartDate:  start,
		Exceptions: append([]ScheduleException(nil), s.Exceptions...),
	}
	if req.Exceptions == nil {
		req.Exceptions = []ScheduleException{}
	}
	if s.HasEndDate {
		end, err := NormalizeDate(s.EndDate)
		if err != nil {
			return nil, err
		}
		req.EndDate = &end
	}
	req.Slots = make([]DepartureSlot, 0)
	for _, day := range Weekdays() {
		for _, slot := range s.TimeSlots[day] {
			req.Slots = append(req.Slots, DepartureSlot{
				Day:       int(day),
				Hour:      slot.Hour,
				Minute:    slot.Minute,
				EndHour:   slot.EndHour,
				EndMinute: slot.EndMinute,
			})
		}
	}
	return req, nil
}
