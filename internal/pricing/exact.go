package pricing

import "github.com/iliyamo/hotel-rate-configurator/internal/model"

// Exact pricing skips derivation entirely: every price is either pinned for
// the date or taken from the rate's configured price list.  Prices that are
// not configured read as 0.

// ResolveExactPrice returns the exact-model room price of a cell.
func ResolveExactPrice(rate *model.RatePlan, roomID, date string) float64 {
	if rate == nil {
		return 0
	}
	if date != "" {
		if v, ok := rate.Override(roomID, date); ok {
			return v
		}
	}
	return rate.BasePrices[roomID]
}

// ResolveExactOptionPrice returns the exact-model option price of a cell.
func ResolveExactOptionPrice(rate *model.RatePlan, roomID, optionID, date string) float64 {
	if v := optionOverride(rate, roomID, optionID, date); v != nil {
		return *v
	}
	if rate == nil {
		return 0
	}
	return rate.OptionPrices[model.OptionKey{RoomID: roomID, OptionID: optionID}]
}
