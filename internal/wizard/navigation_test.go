package wizard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNav() (Navigator, NavContext) {
	return Navigator{BasePath: "/extranet"},
		NavContext{OptionID: "opt-1", ActivityID: "act-9", Lang: "es", Currency: "USD"}
}

func TestStepURLPreservesContext(t *testing.T) {
	nav, ctx := testNav()

	raw := nav.StepURL(ctx, StepPricingCategory)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/extranet/availability-pricing", u.Path)
	q := u.Query()
	assert.Equal(t, "2", q.Get("step"))
	assert.Equal(t, "opt-1", q.Get("optionId"))
	assert.Equal(t, "act-9", q.Get("activityId"))
	assert.Equal(t, "es", q.Get("lang"))
	assert.Equal(t, "USD", q.Get("currency"))
	assert.Empty(t, q.Get("currentStep"), "the legacy parameter is never emitted")
}

func TestStepURLClampsBelowFirst(t *testing.T) {
	nav, ctx := testNav()
	u, err := url.Parse(nav.StepURL(ctx, 0))
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("step"))
}

func TestStepURLPastLastGoesToSummary(t *testing.T) {
	nav, ctx := testNav()
	u, err := url.Parse(nav.StepURL(ctx, StepPriceTiers+1))
	require.NoError(t, err)
	assert.Equal(t, "/extranet/option-summary", u.Path)
	assert.Empty(t, u.Query().Get("step"))
	assert.Equal(t, "opt-1", u.Query().Get("optionId"))
}

func TestListingURLDropsOption(t *testing.T) {
	nav, ctx := testNav()
	u, err := url.Parse(nav.ListingURL(ctx))
	require.NoError(t, err)
	assert.Equal(t, "/extranet/options", u.Path)
	assert.Empty(t, u.Query().Get("optionId"))
	assert.Equal(t, "act-9", u.Query().Get("activityId"))
}

func TestBackURL(t *testing.T) {
	nav, ctx := testNav()

	u, err := url.Parse(nav.BackURL(ctx, StepSchedule))
	require.NoError(t, err)
	assert.Equal(t, "/extranet/options", u.Path)

	u, err = url.Parse(nav.BackURL(ctx, StepCapacity))
	require.NoError(t, err)
	assert.Equal(t, "/extranet/availability-pricing", u.Path)
	assert.Equal(t, "2", u.Query().Get("step"))
}

func TestStepFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  Step
	}{
		{"canonical", url.Values{"step": {"3"}}, StepCapacity},
		{"legacy alias", url.Values{"currentStep": {"4"}}, StepPriceTiers},
		{"canonical wins", url.Values{"step": {"2"}, "currentStep": {"4"}}, StepPricingCategory},
		{"missing", url.Values{}, StepSchedule},
		{"garbage", url.Values{"step": {"nine"}}, StepSchedule},
		{"out of range", url.Values{"step": {"7"}}, StepSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepFromQuery(tt.query))
		})
	}
}
