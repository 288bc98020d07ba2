package model

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount reads a price typed by the operator.  An empty or blank
// string means "clear the entry" and reports clear=true.  Anything that is
// not a finite number reads as 0 so a typo never blocks the edit.
func ParseAmount(raw string) (value float64, clear bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !Finite(v) {
		return 0, false
	}
	return v, false
}

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validID rejects blank identifiers and dates before any lookup happens.
func validID(s string) bool {
	return strings.TrimSpace(s) != ""
}
