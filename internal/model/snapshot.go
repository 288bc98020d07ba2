package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// The persisted snapshot writes composite-keyed maps as lists of entries so
// ids and date labels never need to be split out of a string.  Older
// snapshots stored them as objects keyed "roomId_date",
// "roomId_optionId_date" and "roomId_optionId"; those are still read.

type overrideEntry struct {
	RoomID string  `json:"roomId"`
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
}

type optionOverrideEntry struct {
	RoomID   string  `json:"roomId"`
	OptionID string  `json:"optionId"`
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
}

type optionPriceEntry struct {
	RoomID   string  `json:"roomId"`
	OptionID string  `json:"optionId"`
	Price    float64 `json:"price"`
}

type ratePlanJSON struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Type     RateType `json:"type"`
	ParentID string   `json:"parentId,omitempty"`
	Parent   string   `json:"parent,omitempty"` // legacy name of parentId
	Rule     string   `json:"rule,omitempty"`
	Value    *float64 `json:"value,omitempty"`

	Supplements     map[string]Delta       `json:"supplements"`
	Overrides       json.RawMessage        `json:"overrides,omitempty"`
	OptionOverrides json.RawMessage        `json:"optionOverrides,omitempty"`
	Restrictions    map[string]Restriction `json:"restrictions,omitempty"`
	PolicyID        string                 `json:"policyId,omitempty"`
	PolicyOverrides map[string]string      `json:"policyOverrides,omitempty"`
	BasePrices      map[string]float64     `json:"basePrices,omitempty"`
	OptionPrices    json.RawMessage        `json:"optionPrices,omitempty"`
}

// MarshalJSON writes the canonical snapshot form of the rate plan.
func (p RatePlan) MarshalJSON() ([]byte, error) {
	w := ratePlanJSON{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Type:            p.Type,
		Supplements:     p.Supplements,
		Restrictions:    p.Restrictions,
		PolicyID:        p.PolicyID,
		PolicyOverrides: p.PolicyOverrides,
		BasePrices:      p.BasePrices,
	}
	if w.Supplements == nil {
		w.Supplements = map[string]Delta{}
	}
	if p.Type == RateDerived {
		w.ParentID = p.ParentID
		rule := p.Rule.Normalize()
		w.Rule = string(rule.Type)
		w.Value = &rule.Value
	}
	var err error
	if w.Overrides, err = encodeOverrides(p.Overrides); err != nil {
		return nil, err
	}
	if w.OptionOverrides, err = encodeOptionOverrides(p.OptionOverrides); err != nil {
		return nil, err
	}
	if w.OptionPrices, err = encodeOptionPrices(p.OptionPrices); err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads either the canonical or the legacy layout.
func (p *RatePlan) UnmarshalJSON(b []byte) error {
	var w ratePlanJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := RatePlan{
		ID:              w.ID,
		Code:            w.Code,
		Name:            w.Name,
		Type:            w.Type,
		ParentID:        w.ParentID,
		Supplements:     w.Supplements,
		Restrictions:    w.Restrictions,
		PolicyID:        w.PolicyID,
		PolicyOverrides: w.PolicyOverrides,
		BasePrices:      w.BasePrices,
	}
	if out.ParentID == "" {
		out.ParentID = w.Parent
	}
	out.Rule = Delta{Type: DeltaType(strings.ToLower(w.Rule))}
	if w.Value != nil {
		out.Rule.Value = *w.Value
	}
	out.Rule = out.Rule.Normalize()

	var err error
	if out.Overrides, err = decodeOverrides(w.Overrides); err != nil {
		return fmt.Errorf("rate %s overrides: %w", w.ID, err)
	}
	if out.OptionOverrides, err = decodeOptionOverrides(w.OptionOverrides); err != nil {
		return fmt.Errorf("rate %s option overrides: %w", w.ID, err)
	}
	if out.OptionPrices, err = decodeOptionPrices(w.OptionPrices); err != nil {
		return fmt.Errorf("rate %s option prices: %w", w.ID, err)
	}
	*p = out
	return nil
}

type roomTypeJSON struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	ClusterID string       `json:"clusterId,omitempty"`
	Cluster   string       `json:"cluster,omitempty"` // legacy name of clusterId
	Options   []RoomOption `json:"options"`
}

// UnmarshalJSON accepts the legacy "cluster" field as clusterId.
func (r *RoomType) UnmarshalJSON(b []byte) error {
	var w roomTypeJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = RoomType{ID: w.ID, Code: w.Code, Name: w.Name, ClusterID: w.ClusterID, Options: w.Options}
	if r.ClusterID == "" {
		r.ClusterID = w.Cluster
	}
	return nil
}

// DecodeSnapshot parses a persisted store and normalizes it.  Legacy bare
// number deltas, string keyed override maps and the old field names are all
// converted here.
func DecodeSnapshot(b []byte) (*Store, error) {
	var s Store
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	s.Normalize()
	return &s, nil
}

// EncodeSnapshot serializes the store in canonical form.
func EncodeSnapshot(s *Store) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

func isLegacyObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// Legacy keys never had underscores in room ids or date labels, but option
// ids did ("o_def_1").  The room id therefore ends at the first underscore
// and the date starts after the last one.

func splitRoomDate(key string) (OverrideKey, bool) {
	room, date, ok := strings.Cut(key, "_")
	if !ok || room == "" || date == "" {
		return OverrideKey{}, false
	}
	return OverrideKey{RoomID: room, Date: date}, true
}

func splitRoomOptionDate(key string) (OptionOverrideKey, bool) {
	first := strings.Index(key, "_")
	last := strings.LastIndex(key, "_")
	if first < 1 || last <= first+1 || last == len(key)-1 {
		return OptionOverrideKey{}, false
	}
	return OptionOverrideKey{RoomID: key[:first], OptionID: key[first+1 : last], Date: key[last+1:]}, true
}

func splitRoomOption(key string) (OptionKey, bool) {
	room, opt, ok := strings.Cut(key, "_")
	if !ok || room == "" || opt == "" {
		return OptionKey{}, false
	}
	return OptionKey{RoomID: room, OptionID: opt}, true
}

func decodeLegacyPrices(raw json.RawMessage) (map[string]float64, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		n, err := decodeNumber(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func decodeOverrides(raw json.RawMessage) (map[OverrideKey]float64, error) {
	out := map[OverrideKey]float64{}
	if isNull(raw) {
		return out, nil
	}
	if isLegacyObject(raw) {
		m, err := decodeLegacyPrices(raw)
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			key, ok := splitRoomDate(k)
			if !ok {
				return nil, fmt.Errorf("%w: override key %q", ErrInvalidInput, k)
			}
			out[key] = v
		}
		return out, nil
	}
	var entries []overrideEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[OverrideKey{RoomID: e.RoomID, Date: e.Date}] = e.Price
	}
	return out, nil
}

func decodeOptionOverrides(raw json.RawMessage) (map[OptionOverrideKey]float64, error) {
	out := map[OptionOverrideKey]float64{}
	if isNull(raw) {
		return out, nil
	}
	if isLegacyObject(raw) {
		m, err := decodeLegacyPrices(raw)
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			key, ok := splitRoomOptionDate(k)
			if !ok {
				return nil, fmt.Errorf("%w: option override key %q", ErrInvalidInput, k)
			}
			out[key] = v
		}
		return out, nil
	}
	var entries []optionOverrideEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[OptionOverrideKey{RoomID: e.RoomID, OptionID: e.OptionID, Date: e.Date}] = e.Price
	}
	return out, nil
}

func decodeOptionPrices(raw json.RawMessage) (map[OptionKey]float64, error) {
	out := map[OptionKey]float64{}
	if isNull(raw) {
		return out, nil
	}
	if isLegacyObject(raw) {
		m, err := decodeLegacyPrices(raw)
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			key, ok := splitRoomOption(k)
			if !ok {
				return nil, fmt.Errorf("%w: option price key %q", ErrInvalidInput, k)
			}
			out[key] = v
		}
		return out, nil
	}
	var entries []optionPriceEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[OptionKey{RoomID: e.RoomID, OptionID: e.OptionID}] = e.Price
	}
	return out, nil
}

// Entries are sorted so two encodings of the same store are byte equal.

func encodeOverrides(m map[OverrideKey]float64) (json.RawMessage, error) {
	entries := make([]overrideEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, overrideEntry{RoomID: k.RoomID, Date: k.Date, Price: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RoomID != entries[j].RoomID {
			return entries[i].RoomID < entries[j].RoomID
		}
		return entries[i].Date < entries[j].Date
	})
	return json.Marshal(entries)
}

func encodeOptionOverrides(m map[OptionOverrideKey]float64) (json.RawMessage, error) {
	entries := make([]optionOverrideEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, optionOverrideEntry{RoomID: k.RoomID, OptionID: k.OptionID, Date: k.Date, Price: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.RoomID != b.RoomID {
			return a.RoomID < b.RoomID
		}
		if a.OptionID != b.OptionID {
			return a.OptionID < b.OptionID
		}
		return a.Date < b.Date
	})
	return json.Marshal(entries)
}

func encodeOptionPrices(m map[OptionKey]float64) (json.RawMessage, error) {
	entries := make([]optionPriceEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, optionPriceEntry{RoomID: k.RoomID, OptionID: k.OptionID, Price: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RoomID != entries[j].RoomID {
			return entries[i].RoomID < entries[j].RoomID
		}
		return entries[i].OptionID < entries[j].OptionID
	})
	return json.Marshal(entries)
}
