package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundedCapacity(min, max int) Capacity {
	return Capacity{GroupMinSize: min, GroupMaxSize: Bounded(max)}
}

func unboundedCapacity(min int) Capacity {
	return Capacity{GroupMinSize: min, GroupMaxSize: Unbounded()}
}

func TestPeopleBoundWire(t *testing.T) {
	assert.Equal(t, -1, Unbounded().Wire())
	assert.Equal(t, 8, Bounded(8).Wire())
	assert.True(t, BoundFromWire(-1).IsUnbounded())
	assert.Equal(t, 8, BoundFromWire(8).Value())
}

func TestPeopleBoundJSON(t *testing.T) {
	raw, err := json.Marshal(Unbounded())
	require.NoError(t, err)
	assert.Equal(t, "-1", string(raw))

	raw, err = json.Marshal(Bounded(12))
	require.NoError(t, err)
	assert.Equal(t, "12", string(raw))

	var b PeopleBound
	require.NoError(t, json.Unmarshal([]byte("-1"), &b))
	assert.True(t, b.IsUnbounded())
	require.NoError(t, json.Unmarshal([]byte("5"), &b))
	assert.Equal(t, 5, b.Value())
}

func TestValidateCapacity(t *testing.T) {
	assert.NoError(t, ValidateCapacity(1, 10))
	assert.NoError(t, ValidateCapacity(4, 4))
	assert.Error(t, ValidateCapacity(0, 10))
	assert.Error(t, ValidateCapacity(5, 4))
}

func TestConnectPriceTiersBoundedCeiling(t *testing.T) {
	capacity := boundedCapacity(2, 20)
	tiers := []PriceTier{
		{ID: "b", MinPeople: 9, MaxPeople: Bounded(30)},
		{ID: "a", MinPeople: 5, MaxPeople: Bounded(8)},
	}

	connected := ConnectPriceTiers(tiers, capacity)

	require.Len(t, connected, 2)
	assert.Equal(t, "a", connected[0].ID)
	assert.Equal(t, 2, connected[0].MinPeople, "first tier starts at the group minimum")
	assert.Equal(t, 8, connected[0].MaxPeople.Value())
	assert.Equal(t, 9, connected[1].MinPeople, "later tiers start one past the predecessor")
	assert.Equal(t, 20, connected[1].MaxPeople.Value(), "ends are clamped to the ceiling")
}

func TestConnectPriceTiersUnboundedCeiling(t *testing.T) {
	capacity := unboundedCapacity(1)
	tiers := []PriceTier{
		{ID: "a", MinPeople: 1, MaxPeople: Unbounded()},
		{ID: "b", MinPeople: 2, MaxPeople: Unbounded()},
	}

	connected := ConnectPriceTiers(tiers, capacity)

	require.Len(t, connected, 2)
	// A non-last unlimited tier gets a provisional ten-wide range; the
	// successor of an unlimited tier chains from the predecessor's start.
	assert.Equal(t, 1, connected[0].MinPeople)
	assert.Equal(t, 10, connected[0].MaxPeople.Value())
	assert.Equal(t, 2, connected[1].MinPeople)
	assert.True(t, connected[1].MaxPeople.IsUnbounded(), "last tier is always unlimited under an open ceiling")
}

func TestConnectPriceTiersLastTierReassertedUnlimited(t *testing.T) {
	capacity := unboundedCapacity(1)
	tiers := []PriceTier{
		{ID: "a", MinPeople: 1, MaxPeople: Bounded(5)},
		{ID: "b", MinPeople: 6, MaxPeople: Bounded(9)},
	}
	connected := ConnectPriceTiers(tiers, capacity)
	assert.True(t, connected[len(connected)-1].MaxPeople.IsUnbounded())
}

func TestConnectPriceTiersDoesNotMutateInput(t *testing.T) {
	tiers := []PriceTier{{ID: "a", MinPeople: 7, MaxPeople: Bounded(9)}}
	_ = ConnectPriceTiers(tiers, boundedCapacity(1, 5))
	assert.Equal(t, 7, tiers[0].MinPeople)
	assert.Equal(t, 9, tiers[0].MaxPeople.Value())
}

func TestAddPriceTierBounded(t *testing.T) {
	capacity := boundedCapacity(1, 10)
	tiers := []PriceTier{{ID: "a", MinPeople: 1, MaxPeople: Bounded(4)}}

	out, err := AddPriceTier(tiers, capacity)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 5, out[1].MinPeople)
	assert.Equal(t, 10, out[1].MaxPeople.Value())

	// The table now covers the ceiling; another add must be refused.
	_, err = AddPriceTier(out, capacity)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAddPriceTierUnbounded(t *testing.T) {
	capacity := unboundedCapacity(1)
	tiers := ConnectPriceTiers(DefaultPriceTiers(capacity), capacity)
	require.True(t, tiers[0].MaxPeople.IsUnbounded())

	out, err := AddPriceTier(tiers, capacity)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 10, out[0].MaxPeople.Value(), "former last tier is concretized")
	assert.Equal(t, 11, out[1].MinPeople)
	assert.True(t, out[1].MaxPeople.IsUnbounded())
}

func TestAddPriceTierSeedsEmptyTable(t *testing.T) {
	capacity := boundedCapacity(2, 8)
	out, err := AddPriceTier(nil, capacity)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].MinPeople)
	assert.Equal(t, 8, out[0].MaxPeople.Value())
}

func TestRemovePriceTier(t *testing.T) {
	capacity := boundedCapacity(1, 20)
	tiers := []PriceTier{
		{ID: "a", MinPeople: 1, MaxPeople: Bounded(5)},
		{ID: "b", MinPeople: 6, MaxPeople: Bounded(20)},
	}

	out, err := RemovePriceTier(tiers, "a", capacity)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].MinPeople, "the survivor reconnects to the group minimum")

	_, err = RemovePriceTier(out, "b", capacity)
	assert.Error(t, err, "the last tier cannot be removed")

	_, err = RemovePriceTier(tiers, "nope", capacity)
	assert.Error(t, err)
}

func TestValidatePriceTiers(t *testing.T) {
	capacity := boundedCapacity(1, 10)
	tests := []struct {
		name    string
		tiers   []PriceTier
		wantErr bool
	}{
		{"valid", []PriceTier{{MinPeople: 1, MaxPeople: Bounded(10), ClientPays: "100"}}, false},
		{"empty", nil, true},
		{"unpriced", []PriceTier{{MinPeople: 1, MaxPeople: Bounded(10), ClientPays: "  "}}, true},
		{"below minimum", []PriceTier{{MinPeople: 0, MaxPeople: Bounded(10), ClientPays: "100"}}, true},
		{"past ceiling", []PriceTier{{MinPeople: 11, MaxPeople: Bounded(12), ClientPays: "100"}}, true},
		{"unlimited under bounded ceiling", []PriceTier{{MinPeople: 1, MaxPeople: Unbounded(), ClientPays: "100"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePriceTiers(tt.tiers, capacity)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripCurrencySuffix(t *testing.T) {
	assert.Equal(t, "50", StripCurrencySuffix("50 USD"))
	assert.Equal(t, "50", StripCurrencySuffix("50 usd"))
	assert.Equal(t, "50.25", StripCurrencySuffix("50.25 EUR "))
	assert.Equal(t, "100", StripCurrencySuffix("100"))
}

func TestCalculatePricePerPerson(t *testing.T) {
	tests := []struct {
		name       string
		clientPays string
		commission float64
		want       string
	}{
		{"ten percent", "100", 10, "90.00"},
		{"zero commission", "100", 0, "100.00"},
		{"currency suffix", "50 USD", 10, "45.00"},
		{"decimal input", "99.99", 15, "84.99"},
		{"non-numeric", "abc", 10, ""},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculatePricePerPerson(tt.clientPays, tt.commission))
		})
	}
}
