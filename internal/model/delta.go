package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DeltaType tells how an adjustment is applied to the price it stacks on.
type DeltaType string

const (
	DeltaFixed   DeltaType = "fixed"   // add Value to the base
	DeltaPercent DeltaType = "percent" // multiply the base by 1 + Value/100
)

// Delta is a fixed or percent adjustment.  It is used for room supplements
// on source rates, for option deltas and for the derivation rule of derived
// rates.  The zero value behaves like {fixed, 0}.
type Delta struct {
	Type  DeltaType `json:"type"`
	Value float64   `json:"value"`
}

// Fixed builds a fixed delta.
func Fixed(v float64) Delta { return Delta{Type: DeltaFixed, Value: v} }

// Percent builds a percent delta.
func Percent(v float64) Delta { return Delta{Type: DeltaPercent, Value: v} }

// IsPercent reports whether the delta multiplies instead of adds.
func (d Delta) IsPercent() bool { return d.Type == DeltaPercent }

// Apply stacks the delta on top of base.  Anything that is not a percent
// delta is treated as fixed, which also covers the zero value.
func (d Delta) Apply(base float64) float64 {
	if d.IsPercent() {
		return base * (1 + d.Value/100)
	}
	return base + d.Value
}

// Normalize returns the canonical form of the delta: an unknown or empty
// type becomes fixed.
func (d Delta) Normalize() Delta {
	if d.Type != DeltaPercent {
		d.Type = DeltaFixed
	}
	return d
}

// ParseDeltaType accepts "fixed" or "percent" in any case.
func ParseDeltaType(s string) (DeltaType, error) {
	switch DeltaType(strings.ToLower(strings.TrimSpace(s))) {
	case DeltaFixed:
		return DeltaFixed, nil
	case DeltaPercent:
		return DeltaPercent, nil
	}
	return "", fmt.Errorf("%w: delta type %q", ErrInvalidInput, s)
}

// UnmarshalJSON accepts both stored shapes: the canonical {type, value}
// object and the legacy bare number, which becomes {fixed, n}.  A numeric
// string is read the same way as a bare number.  null decodes to the zero
// delta.
func (d *Delta) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = Fixed(0)
		return nil
	}
	switch b[0] {
	case '{':
		var raw struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		v, err := decodeNumber(raw.Value)
		if err != nil {
			return fmt.Errorf("delta value: %w", err)
		}
		*d = Delta{Type: DeltaType(strings.ToLower(raw.Type)), Value: v}.Normalize()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, _ := ParseAmount(s)
		*d = Fixed(v)
		return nil
	}
	v, err := decodeNumber(b)
	if err != nil {
		return fmt.Errorf("delta: %w", err)
	}
	*d = Fixed(v)
	return nil
}

// decodeNumber reads a JSON number, tolerating null, empty and numeric
// strings.  Unparseable strings read as 0.
func decodeNumber(b json.RawMessage) (float64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, err
		}
		v, _ := ParseAmount(s)
		return v, nil
	}
	return strconv.ParseFloat(string(b), 64)
}
