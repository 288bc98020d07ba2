package model

import (
	"fmt"
	"maps"
	"strings"
)

// PricingModel selects how the grid computes room prices.
type PricingModel string

const (
	// PricingStandard is the historical default; it prices like
	// PricingDerivation.
	PricingStandard   PricingModel = "standard"
	PricingExact      PricingModel = "exact"
	PricingDerivation PricingModel = "derivation"
)

// ParsePricingModel validates a pricing model name.
func ParsePricingModel(s string) (PricingModel, error) {
	switch m := PricingModel(strings.ToLower(strings.TrimSpace(s))); m {
	case PricingStandard, PricingExact, PricingDerivation:
		return m, nil
	}
	return "", fmt.Errorf("%w: pricing model %q", ErrInvalidInput, s)
}

// Store is the whole configuration of a property: calendar, catalogue and
// every rate plan.  It is owned by whoever loaded it; the pricing code only
// reads it and the mutators in this package are the only writers.
type Store struct {
	Days         []CalendarDay        `json:"days"`
	BarRoomID    string               `json:"barRoomId"`
	PricingModel PricingModel         `json:"pricingModel"`
	Clusters     []Cluster            `json:"clusters"`
	Rooms        []RoomType           `json:"rooms"`
	Rates        []RatePlan           `json:"rates"`
	Policies     []CancellationPolicy `json:"policies"`
	AnchorRates  map[string]float64   `json:"anchorRates"`
}

// Rate looks up a rate plan by id.
func (s *Store) Rate(id string) (*RatePlan, bool) {
	for i := range s.Rates {
		if s.Rates[i].ID == id {
			return &s.Rates[i], true
		}
	}
	return nil, false
}

// Room looks up a room type by id.
func (s *Store) Room(id string) (*RoomType, bool) {
	for i := range s.Rooms {
		if s.Rooms[i].ID == id {
			return &s.Rooms[i], true
		}
	}
	return nil, false
}

// Cluster looks up a cluster by id.
func (s *Store) Cluster(id string) (*Cluster, bool) {
	for i := range s.Clusters {
		if s.Clusters[i].ID == id {
			return &s.Clusters[i], true
		}
	}
	return nil, false
}

// Policy looks up a cancellation policy by id.
func (s *Store) Policy(id string) (*CancellationPolicy, bool) {
	for i := range s.Policies {
		if s.Policies[i].ID == id {
			return &s.Policies[i], true
		}
	}
	return nil, false
}

// Day returns the calendar day labelled date.
func (s *Store) Day(date string) (*CalendarDay, bool) {
	for i := range s.Days {
		if s.Days[i].Date == date {
			return &s.Days[i], true
		}
	}
	return nil, false
}

// AnchorRate returns the explicit anchor price stored for date.
func (s *Store) AnchorRate(date string) (float64, bool) {
	v, ok := s.AnchorRates[date]
	return v, ok
}

// Clone returns a deep copy that shares no maps or slices with s.
func (s *Store) Clone() *Store {
	out := &Store{
		Days:         append([]CalendarDay(nil), s.Days...),
		BarRoomID:    s.BarRoomID,
		PricingModel: s.PricingModel,
		Clusters:     append([]Cluster(nil), s.Clusters...),
		Policies:     append([]CancellationPolicy(nil), s.Policies...),
		AnchorRates:  maps.Clone(s.AnchorRates),
	}
	out.Rooms = make([]RoomType, len(s.Rooms))
	for i, r := range s.Rooms {
		r.Options = append([]RoomOption(nil), r.Options...)
		out.Rooms[i] = r
	}
	out.Rates = make([]RatePlan, len(s.Rates))
	for i := range s.Rates {
		out.Rates[i] = s.Rates[i].clone()
	}
	return out
}

// Normalize brings a freshly decoded store into canonical shape: missing
// pricing model, nil maps, option deltas and supplements with an unknown
// type.  It is applied once on load so the engine never sees legacy shapes.
func (s *Store) Normalize() {
	if s.PricingModel == "" {
		s.PricingModel = PricingStandard
	}
	if s.AnchorRates == nil {
		s.AnchorRates = map[string]float64{}
	}
	for i := range s.Rooms {
		for j := range s.Rooms[i].Options {
			s.Rooms[i].Options[j].Delta = s.Rooms[i].Options[j].Delta.Normalize()
		}
	}
	for i := range s.Rates {
		p := &s.Rates[i]
		if p.Type != RateDerived {
			p.Type = RateSource
		}
		p.Rule = p.Rule.Normalize()
		p.initMaps()
		for room, d := range p.Supplements {
			p.Supplements[room] = d.Normalize()
		}
		for date, r := range p.Restrictions {
			p.Restrictions[date] = r.Normalize()
		}
	}
}
