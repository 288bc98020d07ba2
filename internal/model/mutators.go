package model

import "fmt"

// Every mutator validates all ids before writing and touches exactly one
// entry.  Clear* mutators delete the entry so the cell goes back to its
// computed value; clearing an entry that does not exist is not an error.

func (s *Store) rateForWrite(rateID string) (*RatePlan, error) {
	if !validID(rateID) {
		return nil, fmt.Errorf("%w: empty rate id", ErrInvalidInput)
	}
	p, ok := s.Rate(rateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRateNotFound, rateID)
	}
	p.initMaps()
	return p, nil
}

func (s *Store) requireRoom(roomID string) (*RoomType, error) {
	if !validID(roomID) {
		return nil, fmt.Errorf("%w: empty room id", ErrInvalidInput)
	}
	r, ok := s.Room(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return r, nil
}

func (s *Store) requireOption(roomID, optionID string) (*RoomOption, error) {
	r, err := s.requireRoom(roomID)
	if err != nil {
		return nil, err
	}
	o, ok := r.Option(optionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrOptionNotFound, roomID, optionID)
	}
	return o, nil
}

func (s *Store) requireDay(date string) (*CalendarDay, error) {
	if !validID(date) {
		return nil, fmt.Errorf("%w: empty date", ErrInvalidInput)
	}
	d, ok := s.Day(date)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDateNotFound, date)
	}
	return d, nil
}

// SetOverride pins the room price of a rate plan for one date.
func (s *Store) SetOverride(rateID, roomID, date string, price float64) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	if _, err := s.requireRoom(roomID); err != nil {
		return err
	}
	if _, err := s.requireDay(date); err != nil {
		return err
	}
	p.Overrides[OverrideKey{RoomID: roomID, Date: date}] = price
	return nil
}

// ClearOverride removes a pinned room price.
func (s *Store) ClearOverride(rateID, roomID, date string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	delete(p.Overrides, OverrideKey{RoomID: roomID, Date: date})
	return nil
}

// SetOptionOverride pins the option price of a rate plan for one date.
func (s *Store) SetOptionOverride(rateID, roomID, optionID, date string, price float64) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	if _, err := s.requireOption(roomID, optionID); err != nil {
		return err
	}
	if _, err := s.requireDay(date); err != nil {
		return err
	}
	p.OptionOverrides[OptionOverrideKey{RoomID: roomID, OptionID: optionID, Date: date}] = price
	return nil
}

// ClearOptionOverride removes a pinned option price.
func (s *Store) ClearOptionOverride(rateID, roomID, optionID, date string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	delete(p.OptionOverrides, OptionOverrideKey{RoomID: roomID, OptionID: optionID, Date: date})
	return nil
}

func (s *Store) sourceRateRoom(rateID, roomID string) (*RatePlan, error) {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return nil, err
	}
	if !p.IsSource() {
		return nil, fmt.Errorf("%w: %s", ErrNotSourceRate, rateID)
	}
	if _, err := s.requireRoom(roomID); err != nil {
		return nil, err
	}
	return p, nil
}

// SetSupplement replaces the supplement of a room on a source rate.
func (s *Store) SetSupplement(rateID, roomID string, d Delta) error {
	p, err := s.sourceRateRoom(rateID, roomID)
	if err != nil {
		return err
	}
	p.Supplements[roomID] = d.Normalize()
	return nil
}

// SetSupplementValue changes the amount of a supplement and keeps its type.
func (s *Store) SetSupplementValue(rateID, roomID string, v float64) error {
	p, err := s.sourceRateRoom(rateID, roomID)
	if err != nil {
		return err
	}
	d := p.Supplement(roomID)
	d.Value = v
	p.Supplements[roomID] = d
	return nil
}

// SetSupplementType changes the type of a supplement and keeps its amount.
func (s *Store) SetSupplementType(rateID, roomID string, t DeltaType) error {
	p, err := s.sourceRateRoom(rateID, roomID)
	if err != nil {
		return err
	}
	d := p.Supplement(roomID)
	d.Type = t
	p.Supplements[roomID] = d.Normalize()
	return nil
}

// ClearSupplement removes a supplement; the room then sells at the anchor.
func (s *Store) ClearSupplement(rateID, roomID string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	delete(p.Supplements, roomID)
	return nil
}

// SetOptionDelta replaces the delta of a room option.
func (s *Store) SetOptionDelta(roomID, optionID string, d Delta) error {
	o, err := s.requireOption(roomID, optionID)
	if err != nil {
		return err
	}
	o.Delta = d.Normalize()
	return nil
}

// SetOptionDeltaValue changes the amount of an option delta.
func (s *Store) SetOptionDeltaValue(roomID, optionID string, v float64) error {
	o, err := s.requireOption(roomID, optionID)
	if err != nil {
		return err
	}
	o.Delta = Delta{Type: o.Delta.Type, Value: v}.Normalize()
	return nil
}

// SetOptionDeltaType changes the type of an option delta.
func (s *Store) SetOptionDeltaType(roomID, optionID string, t DeltaType) error {
	o, err := s.requireOption(roomID, optionID)
	if err != nil {
		return err
	}
	o.Delta = Delta{Type: t, Value: o.Delta.Value}.Normalize()
	return nil
}

// SetRestriction stores the stay controls of a rate plan for a date.
// MinLOS below one night is stored as one.
func (s *Store) SetRestriction(rateID, date string, r Restriction) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	if _, err := s.requireDay(date); err != nil {
		return err
	}
	p.Restrictions[date] = r.Normalize()
	return nil
}

// ClearRestriction removes the stay controls of a date.
func (s *Store) ClearRestriction(rateID, date string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	delete(p.Restrictions, date)
	return nil
}

// SetAnchorRate stores an explicit anchor price for a date.  It wins over
// the day's base rate, even when it is 0.
func (s *Store) SetAnchorRate(date string, v float64) error {
	if _, err := s.requireDay(date); err != nil {
		return err
	}
	if s.AnchorRates == nil {
		s.AnchorRates = map[string]float64{}
	}
	s.AnchorRates[date] = v
	return nil
}

// ClearAnchorRate drops the explicit anchor so the base rate applies again.
func (s *Store) ClearAnchorRate(date string) error {
	if !validID(date) {
		return fmt.Errorf("%w: empty date", ErrInvalidInput)
	}
	delete(s.AnchorRates, date)
	return nil
}

// SetDailyBase changes the default anchor price of one day.
func (s *Store) SetDailyBase(date string, v float64) error {
	d, err := s.requireDay(date)
	if err != nil {
		return err
	}
	d.BaseRate = v
	return nil
}

// SetGlobalBase sets the default anchor price of every day.
func (s *Store) SetGlobalBase(v float64) {
	for i := range s.Days {
		s.Days[i].BaseRate = v
	}
}

// SetBarRoom designates the anchor room.
func (s *Store) SetBarRoom(roomID string) error {
	if _, err := s.requireRoom(roomID); err != nil {
		return err
	}
	s.BarRoomID = roomID
	return nil
}

// SetPricingModel switches between derivation and exact pricing.
func (s *Store) SetPricingModel(m PricingModel) error {
	m, err := ParsePricingModel(string(m))
	if err != nil {
		return err
	}
	s.PricingModel = m
	return nil
}

// SetBasePrice stores the exact-model default price of a room.
func (s *Store) SetBasePrice(rateID, roomID string, v float64) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	if _, err := s.requireRoom(roomID); err != nil {
		return err
	}
	p.BasePrices[roomID] = v
	return nil
}

// ClearBasePrice removes the exact-model default price of a room.
func (s *Store) ClearBasePrice(rateID, roomID string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	delete(p.BasePrices, roomID)
	return nil
}

// SetOptionPrice stores the exact-model price of a room option.
func (s *Store) SetOptionPrice(rateID, roomID, optionID string, v float64) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	if _, err := s.requireOption(roomID, optionID); err != nil {
		return err
	}
	p.OptionPrices[OptionKey{RoomID: roomID, OptionID: optionID}] = v
	return nil
}

// ClearOptionPrice removes the exact-model price of a room option.
func (s *Store) ClearOptionPrice(rateID, roomID, optionID string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	delete(p.OptionPrices, OptionKey{RoomID: roomID, OptionID: optionID})
	return nil
}

// SetRatePolicy assigns the default cancellation policy of a rate plan.
// An empty policy id unassigns it.
func (s *Store) SetRatePolicy(rateID, policyID string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	if policyID != "" {
		if _, ok := s.Policy(policyID); !ok {
			return fmt.Errorf("%w: %s", ErrPolicyNotFound, policyID)
		}
	}
	p.PolicyID = policyID
	return nil
}

// SetPolicyOverride assigns a different policy to one date of a rate plan.
func (s *Store) SetPolicyOverride(rateID, date, policyID string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	if _, err := s.requireDay(date); err != nil {
		return err
	}
	if _, ok := s.Policy(policyID); !ok {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, policyID)
	}
	p.PolicyOverrides[date] = policyID
	return nil
}

// ClearPolicyOverride reverts a date to the rate's default policy.
func (s *Store) ClearPolicyOverride(rateID, date string) error {
	p, err := s.rateForWrite(rateID)
	if err != nil {
		return err
	}
	delete(p.PolicyOverrides, date)
	return nil
}
