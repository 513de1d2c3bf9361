package wizard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PricingType is the step-2 binary choice.
type PricingType string

const (
	PricingTypeSame     PricingType = "same"
	PricingTypeAgeBased PricingType = "ageBased"
)

// DraftStore persists in-progress wizard drafts in Redis, keyed per booking
// option the same way the extranet front end keys its local storage:
// schedule_<optionID> for the schedule, plus _pricingType and _ageGroups
// companions. Writes are last-write-wins.
type DraftStore struct {
	client *redis.Client
}

// NewDraftStore creates a draft store.
func NewDraftStore(client *redis.Client) *DraftStore {
	return &DraftStore{client: client}
}

func draftKey(optionID string) string {
	if optionID == "" {
		optionID = "default"
	}
	return "schedule_" + optionID
}

// GetSchedule loads the cached schedule draft. A missing key yields nil.
func (s *DraftStore) GetSchedule(ctx context.Context, optionID string) (*ScheduleData, error) {
	data, err := s.client.Get(ctx, draftKey(optionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft store: get schedule: %w", err)
	}
	var sched ScheduleData
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, fmt.Errorf("draft store: unmarshal schedule: %w", err)
	}
	return &sched, nil
}

// SetSchedule saves the schedule draft.
func (s *DraftStore) SetSchedule(ctx context.Context, optionID string, sched *ScheduleData) error {
	data, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("draft store: marshal schedule: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(optionID), data, 0).Err(); err != nil {
		return fmt.Errorf("draft store: set schedule: %w", err)
	}
	return nil
}

// GetPricingType loads the cached step-2 choice. Missing yields "".
func (s *DraftStore) GetPricingType(ctx context.Context, optionID string) (PricingType, error) {
	v, err := s.client.Get(ctx, draftKey(optionID)+"_pricingType").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("draft store: get pricing type: %w", err)
	}
	return PricingType(v), nil
}

// SetPricingType saves the step-2 choice.
func (s *DraftStore) SetPricingType(ctx context.Context, optionID string, pt PricingType) error {
	if err := s.client.Set(ctx, draftKey(optionID)+"_pricingType", string(pt), 0).Err(); err != nil {
		return fmt.Errorf("draft store: set pricing type: %w", err)
	}
	return nil
}

// GetAgeGroups loads the cached age-group table. Missing yields nil.
func (s *DraftStore) GetAgeGroups(ctx context.Context, optionID string) ([]AgeGroup, error) {
	data, err := s.client.Get(ctx, draftKey(optionID)+"_ageGroups").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft store: get age groups: %w", err)
	}
	var groups []AgeGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("draft store: unmarshal age groups: %w", err)
	}
	return groups, nil
}

// SetAgeGroups saves the age-group table.
func (s *DraftStore) SetAgeGroups(ctx context.Context, optionID string, groups []AgeGroup) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("draft store: marshal age groups: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(optionID)+"_ageGroups", data, 0).Err(); err != nil {
		return fmt.Errorf("draft store: set age groups: %w", err)
	}
	return nil
}

// GetPriceTiers loads the cached step-4 table. Missing yields nil.
func (s *DraftStore) GetPriceTiers(ctx context.Context, optionID string) ([]PriceTier, error) {
	data, err := s.client.Get(ctx, draftKey(optionID)+"_priceTiers").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft store: get price tiers: %w", err)
	}
	var tiers []PriceTier
	if err := json.Unmarshal(data, &tiers); err != nil {
		return nil, fmt.Errorf("draft store: unmarshal price tiers: %w", err)
	}
	return tiers, nil
}

// SetPriceTiers saves the step-4 table.
func (s *DraftStore) SetPriceTiers(ctx context.Context, optionID string, tiers []PriceTier) error {
	data, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("draft store: marshal price tiers: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(optionID)+"_priceTiers", data, 0).Err(); err != nil {
		return fmt.Errorf("draft store: set price tiers: %w", err)
	}
	return nil
}
