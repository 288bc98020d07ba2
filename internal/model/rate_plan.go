package model

import "maps"

// RateType distinguishes independent rates from rates computed off a parent.
type RateType string

const (
	RateSource  RateType = "source"  // priced from the anchor plus a per-room supplement
	RateDerived RateType = "derived" // priced from the parent rate through Rule
)

// OverrideKey addresses one room price cell of a rate plan.
type OverrideKey struct {
	RoomID string
	Date   string
}

// OptionOverrideKey addresses one option price cell of a rate plan.
type OptionOverrideKey struct {
	RoomID   string
	OptionID string
	Date     string
}

// OptionKey addresses an option of a room regardless of date.  It keys the
// configured option prices of the exact pricing model.
type OptionKey struct {
	RoomID   string
	OptionID string
}

// Restriction holds the stay controls of a rate plan for one date.  When
// StopSell is set the other fields have no meaning for sales, but they are
// kept as stored.
type Restriction struct {
	StopSell bool `json:"stopSell"`
	CTA      bool `json:"cta"`
	CTD      bool `json:"ctd"`
	MinLOS   int  `json:"minLos"`
}

// DefaultRestriction is what a rate plan reports for a date without a
// stored restriction.
func DefaultRestriction() Restriction {
	return Restriction{MinLOS: 1}
}

// Normalize clamps MinLOS to at least one night.
func (r Restriction) Normalize() Restriction {
	if r.MinLOS < 1 {
		r.MinLOS = 1
	}
	return r
}

// RatePlan is a sellable price product.
//
// A source rate prices every room from the anchor value of the date plus the
// room's entry in Supplements; the anchor room itself always sells at the
// anchor value.  A derived rate prices every room from its parent's price
// for that room and date through Rule.
//
// The maps hold explicit operator input only.  A missing entry means the
// value is computed; a present entry pins it.
type RatePlan struct {
	ID       string
	Code     string
	Name     string
	Type     RateType
	ParentID string
	Rule     Delta

	Supplements     map[string]Delta
	Overrides       map[OverrideKey]float64
	OptionOverrides map[OptionOverrideKey]float64
	Restrictions    map[string]Restriction

	PolicyID        string
	PolicyOverrides map[string]string

	// Used by the exact pricing model only.
	BasePrices   map[string]float64
	OptionPrices map[OptionKey]float64
}

// IsSource reports whether the rate is priced directly from the anchor.
func (p *RatePlan) IsSource() bool { return p.Type != RateDerived }

// Supplement returns the supplement configured for room, {fixed, 0} when
// none is stored.
func (p *RatePlan) Supplement(roomID string) Delta {
	if d, ok := p.Supplements[roomID]; ok {
		return d.Normalize()
	}
	return Fixed(0)
}

// Override returns the pinned room price for the cell, if any.
func (p *RatePlan) Override(roomID, date string) (float64, bool) {
	v, ok := p.Overrides[OverrideKey{RoomID: roomID, Date: date}]
	return v, ok
}

// OptionOverride returns the pinned option price for the cell, if any.
func (p *RatePlan) OptionOverride(roomID, optionID, date string) (float64, bool) {
	v, ok := p.OptionOverrides[OptionOverrideKey{RoomID: roomID, OptionID: optionID, Date: date}]
	return v, ok
}

// initMaps makes every map writable.  Mutators call it before writing.
func (p *RatePlan) initMaps() {
	if p.Supplements == nil {
		p.Supplements = map[string]Delta{}
	}
	if p.Overrides == nil {
		p.Overrides = map[OverrideKey]float64{}
	}
	if p.OptionOverrides == nil {
		p.OptionOverrides = map[OptionOverrideKey]float64{}
	}
	if p.Restrictions == nil {
		p.Restrictions = map[string]Restriction{}
	}
	if p.PolicyOverrides == nil {
		p.PolicyOverrides = map[string]string{}
	}
	if p.BasePrices == nil {
		p.BasePrices = map[string]float64{}
	}
	if p.OptionPrices == nil {
		p.OptionPrices = map[OptionKey]float64{}
	}
}

// clone returns a deep copy of the rate plan.
func (p RatePlan) clone() RatePlan {
	out := p
	out.Supplements = maps.Clone(p.Supplements)
	out.Overrides = maps.Clone(p.Overrides)
	out.OptionOverrides = maps.Clone(p.OptionOverrides)
	out.Restrictions = maps.Clone(p.Restrictions)
	out.PolicyOverrides = maps.Clone(p.PolicyOverrides)
	out.BasePrices = maps.Clone(p.BasePrices)
	out.OptionPrices = maps.Clone(p.OptionPrices)
	return out
}
