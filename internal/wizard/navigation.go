package wizard

import (
	"net/url"
	"strconv"
)

// NavContext is the query context carried between wizard pages.
type NavContext struct {
	OptionID   string
	ActivityID string
	Lang       string
	Currency   string
}

// Navigator builds extranet URLs for step transitions, always preserving
// the query context. The canonical step parameter is "step"; "currentStep"
// is accepted as a read alias elsewhere but never emitted.
type Navigator struct {
	BasePath string
}

func (n Navigator) values(nav NavContext) url.Values {
	v := url.Values{}
	if nav.OptionID != "" {
		v.Set("optionId", nav.OptionID)
	}
	if nav.ActivityID != "" {
		v.Set("activityId", nav.ActivityID)
	}
	if nav.Lang != "" {
		v.Set("lang", nav.Lang)
	}
	if nav.Currency != "" {
		v.Set("currency", nav.Currency)
	}
	return v
}

func (n Navigator) build(path string, v url.Values) string {
	u := url.URL{Path: n.BasePath + path, RawQuery: v.Encode()}
	return u.String()
}

// StepURL returns the URL for a wizard step. Steps past the last one
// resolve to the option summary page.
func (n Navigator) StepURL(nav NavContext, step Step) string {
	if step > StepPriceTiers {
		return n.SummaryURL(nav)
	}
	if step < StepSchedule {
		step = StepSchedule
	}
	v := n.values(nav)
	v.Set("step", strconv.Itoa(int(step)))
	return n.build("/availability-pricing", v)
}

// SummaryURL returns the non-stepped option summary page.
func (n Navigator) SummaryURL(nav NavContext) string {
	return n.build("/option-summary", n.values(nav))
}

// ListingURL returns the parent option listing reached by going back from
// the first step.
func (n Navigator) ListingURL(nav NavContext) string {
	v := n.values(nav)
	v.Del("optionId")
	return n.build("/options", v)
}

// BackURL returns the destination for the back control on the given step.
func (n Navigator) BackURL(nav NavContext, current Step) string {
	if current <= StepSchedule {
		return n.ListingURL(nav)
	}
	return n.StepURL(nav, current-1)
}
