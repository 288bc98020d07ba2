package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// amount is a price field typed by the operator.  It accepts a JSON number,
// a string or null.  A blank string or null means "clear the entry"; a
// string that is not a number reads as 0.
type amount struct {
	set bool
	raw string
}

func (a *amount) UnmarshalJSON(b []byte) error {
	a.set = true
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		a.raw = ""
	case len(b) > 0 && b[0] == '"':
		return json.Unmarshal(b, &a.raw)
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			return err
		}
		a.raw = string(b)
	}
	return nil
}

// parse returns the value and whether the entry should be cleared.  A field
// that was never sent counts as cleared.
func (a amount) parse() (float64, bool) {
	if !a.set {
		return 0, true
	}
	return model.ParseAmount(a.raw)
}

// deltaInput edits a delta partially: only the fields present change.
type deltaInput struct {
	Type  string `json:"type"`
	Value amount `json:"value"`
}

func (in deltaInput) empty() bool { return strings.TrimSpace(in.Type) == "" && !in.Value.set }

// full builds a complete delta, defaulting to {fixed, 0}.
func (in deltaInput) full() (model.Delta, error) {
	d := model.Fixed(0)
	if strings.TrimSpace(in.Type) != "" {
		t, err := model.ParseDeltaType(in.Type)
		if err != nil {
			return model.Delta{}, err
		}
		d.Type = t
	}
	if v, clear := in.Value.parse(); !clear {
		d.Value = v
	}
	return d, nil
}
