package pricing

import "github.com/iliyamo/hotel-rate-configurator/internal/model"

// ResolveOptionPrice returns the price of a room option.  basePrice must be
// the resolved room price of the same rate, room and date.  A non-nil
// override is returned as is; otherwise delta is stacked on basePrice.
func ResolveOptionPrice(basePrice float64, delta model.Delta, override *float64) float64 {
	if override != nil {
		return *override
	}
	return delta.Apply(basePrice)
}

// optionOverride reads the pinned option price of a cell.
func optionOverride(rate *model.RatePlan, roomID, optionID, date string) *float64 {
	if rate == nil || date == "" {
		return nil
	}
	if v, ok := rate.OptionOverride(roomID, optionID, date); ok {
		return &v
	}
	return nil
}
