package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

func TestResolveOptionPrice(t *testing.T) {
	pinned := 99.0
	cases := []struct {
		name     string
		delta    model.Delta
		override *float64
		want     float64
	}{
		{"percent", model.Percent(10), nil, 132},
		{"fixed", model.Fixed(10), nil, 130},
		{"zero value delta", model.Delta{}, nil, 120},
		{"override", model.Percent(10), &pinned, 99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ResolveOptionPrice(120, tc.delta, tc.override), 1e-9)
		})
	}
}

func TestGetRestriction(t *testing.T) {
	rate := &model.RatePlan{ID: "A", Restrictions: map[string]model.Restriction{
		"d1": {StopSell: true, CTA: true, MinLOS: 3},
		"d2": {CTD: true},
	}}

	assert.Equal(t, model.Restriction{MinLOS: 1}, GetRestriction(rate, "none"))
	assert.Equal(t, model.Restriction{StopSell: true, CTA: true, MinLOS: 3}, GetRestriction(rate, "d1"))
	assert.Equal(t, model.Restriction{CTD: true, MinLOS: 1}, GetRestriction(rate, "d2"))
	assert.Equal(t, model.Restriction{MinLOS: 1}, GetRestriction(nil, "d1"))
}

func TestGetRestriction_NotInherited(t *testing.T) {
	child := model.RatePlan{ID: "B", Type: model.RateDerived, ParentID: "A"}
	assert.Equal(t, model.DefaultRestriction(), GetRestriction(&child, "d1"))
}

func TestExactPricing(t *testing.T) {
	rate := &model.RatePlan{
		ID:         "X",
		BasePrices: map[string]float64{"r1": 140},
		Overrides:  map[model.OverrideKey]float64{{RoomID: "r1", Date: "d2"}: 170},
		OptionPrices: map[model.OptionKey]float64{
			{RoomID: "r1", OptionID: "o1"}: 155,
		},
		OptionOverrides: map[model.OptionOverrideKey]float64{
			{RoomID: "r1", OptionID: "o1", Date: "d2"}: 190,
		},
	}

	assert.Equal(t, 140.0, ResolveExactPrice(rate, "r1", "d1"))
	assert.Equal(t, 170.0, ResolveExactPrice(rate, "r1", "d2"))
	assert.Equal(t, 0.0, ResolveExactPrice(rate, "r9", "d1"))

	assert.Equal(t, 155.0, ResolveExactOptionPrice(rate, "r1", "o1", "d1"))
	assert.Equal(t, 190.0, ResolveExactOptionPrice(rate, "r1", "o1", "d2"))
	assert.Equal(t, 0.0, ResolveExactOptionPrice(rate, "r1", "o2", "d1"))
}
