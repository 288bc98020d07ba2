package pricing

import "github.com/iliyamo/hotel-rate-configurator/internal/model"

// GetRestriction returns the stay controls of rate for date.  Nothing is
// inherited from parent rates.  An unset date reports no restriction and a
// one night minimum stay.  Stored flags are returned even when StopSell is
// set.
func GetRestriction(rate *model.RatePlan, date string) model.Restriction {
	if rate == nil {
		return model.DefaultRestriction()
	}
	r, ok := rate.Restrictions[date]
	if !ok {
		return model.DefaultRestriction()
	}
	return r.Normalize()
}
