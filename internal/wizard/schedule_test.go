package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchedule() *ScheduleData {
	return &ScheduleData{
		ScheduleName: "Temporada alta",
		StartDate:    "2026-06-01",
		TimeSlots: map[Weekday][]TimeSlot{
			Monday: {NewTimeSlot(9, 0)},
		},
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"iso", "2026-06-01", "2026-06-01", false},
		{"iso unpadded", "2026-6-1", "2026-06-01", false},
		{"day first", "01/06/2026", "2026-06-01", false},
		{"rfc3339", "2026-06-01T00:00:00Z", "2026-06-01", false},
		{"whitespace", " 2026-06-01 ", "2026-06-01", false},
		{"garbage", "junio", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScheduleValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validSchedule().Validate(DefaultMode()))
	})

	t.Run("missing name", func(t *testing.T) {
		s := validSchedule()
		s.ScheduleName = "  "
		err := s.Validate(DefaultMode())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "scheduleName", verr.Field)
	})

	t.Run("name too long", func(t *testing.T) {
		s := validSchedule()
		for len([]rune(s.ScheduleName)) <= maxScheduleNameLen {
			s.ScheduleName += "x"
		}
		assert.Error(t, s.Validate(DefaultMode()))
	})

	t.Run("bad start date", func(t *testing.T) {
		s := validSchedule()
		s.StartDate = "not a date"
		assert.Error(t, s.Validate(DefaultMode()))
	})

	t.Run("end date required when flagged", func(t *testing.T) {
		s := validSchedule()
		s.HasEndDate = true
		assert.Error(t, s.Validate(DefaultMode()))
		s.EndDate = "2026-09-30"
		assert.NoError(t, s.Validate(DefaultMode()))
	})

	t.Run("no slots", func(t *testing.T) {
		s := validSchedule()
		s.TimeSlots = map[Weekday][]TimeSlot{Monday: {}}
		err := s.Validate(DefaultMode())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "timeSlots", verr.Field)
	})

	t.Run("opening hours need distinct end", func(t *testing.T) {
		mode := Mode{AvailabilityMode: AvailabilityOpeningHours, PricingMode: PricingPerPerson}
		s := validSchedule()
		assert.Error(t, s.Validate(mode), "missing end time")

		end := 9
		endMin := 0
		s.TimeSlots[Monday][0].EndHour = &end
		s.TimeSlots[Monday][0].EndMinute = &endMin
		assert.Error(t, s.Validate(mode), "start equals end")

		later := 13
		s.TimeSlots[Monday][0].EndHour = &later
		assert.NoError(t, s.Validate(mode))
	})
}

func TestBuildDepartureTimeRequest(t *testing.T) {
	s := validSchedule()
	s.TimeSlots[Friday] = []TimeSlot{NewTimeSlot(18, 30)}
	s.Exceptions = []ScheduleException{{Date: "2026-12-25", Description: "Navidad"}}

	req, err := s.BuildDepartureTimeRequest("biz-1", "opt-1")
	require.NoError(t, err)

	assert.Equal(t, "biz-1", req.BusinessID)
	assert.Equal(t, "opt-1", req.OptionID)
	assert.Equal(t, "Temporada alta", req.Title)
	assert.Equal(t, "2026-06-01", req.StartDate)
	assert.Nil(t, req.EndDate)

	// Slots flatten in weekday order, Monday first as day 0.
	require.Len(t, req.Slots, 2)
	assert.Equal(t, 0, req.Slots[0].Day)
	assert.Equal(t, 9, req.Slots[0].Hour)
	assert.Equal(t, 4, req.Slots[1].Day)
	assert.Equal(t, 18, req.Slots[1].Hour)
	assert.Equal(t, 30, req.Slots[1].Minute)

	require.Len(t, req.Exceptions, 1)
	assert.Equal(t, "2026-12-25", req.Exceptions[0].Date)
}

func TestBuildDepartureTimeRequestNormalizesDates(t *testing.T) {
	s := validSchedule()
	s.StartDate = "01/06/2026"
	s.HasEndDate = true
	s.EndDate = "2026-9-30"

	req, err := s.BuildDepartureTimeRequest("biz-1", "opt-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", req.StartDate)
	require.NotNil(t, req.EndDate)
	assert.Equal(t, "2026-09-30", *req.EndDate)
}

func TestBuildDepartureTimeRequestEmptyExceptions(t *testing.T) {
	req, err := validSchedule().BuildDepartureTimeRequest("biz-1", "opt-1")
	require.NoError(t, err)
	assert.NotNil(t, req.Exceptions, "exceptions serialize as an empty array, not null")
}
