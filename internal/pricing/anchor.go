package pricing

import "github.com/iliyamo/hotel-rate-configurator/internal/model"

// AnchorValue returns the anchor price of date: the explicit anchor rate
// when one is stored, else the base rate of that calendar day, else 0.
func AnchorValue(s *model.Store, date string) float64 {
	if s == nil {
		return 0
	}
	if v, ok := s.AnchorRate(date); ok {
		return v
	}
	if d, ok := s.Day(date); ok {
		return d.BaseRate
	}
	return 0
}

// EffectivePolicy returns the cancellation policy that applies to rate on
// date: the per-date override if any, else the rate's default.  ok is false
// when neither names a known policy.
func EffectivePolicy(s *model.Store, rate *model.RatePlan, date string) (model.CancellationPolicy, bool) {
	if s == nil || rate == nil {
		return model.CancellationPolicy{}, false
	}
	id := rate.PolicyID
	if v, ok := rate.PolicyOverrides[date]; ok {
		id = v
	}
	if id == "" {
		return model.CancellationPolicy{}, false
	}
	cp, ok := s.Policy(id)
	if !ok {
		return model.CancellationPolicy{}, false
	}
	return *cp, true
}
