// Package pricing resolves sell prices, option prices and stay restrictions
// from a model.Store.  Everything here is a pure function of its inputs: no
// I/O, no writes to the store, safe to call from any number of goroutines
// as long as nobody mutates the store being read.
package pricing

import (
	"errors"
	"strings"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// ErrCyclicDerivation matches any CyclicDerivationError with errors.Is.
var ErrCyclicDerivation = errors.New("cyclic rate derivation")

// CyclicDerivationError reports a derivation chain that comes back to a rate
// plan it already went through.  Chain lists the rate ids in walk order and
// ends with the repeated id.
type CyclicDerivationError struct {
	Chain []string
}

func (e *CyclicDerivationError) Error() string {
	return ErrCyclicDerivation.Error() + ": " + strings.Join(e.Chain, " -> ")
}

// Is makes errors.Is(err, ErrCyclicDerivation) work.
func (e *CyclicDerivationError) Is(target error) bool { return target == ErrCyclicDerivation }

// Origin tells which rule produced a resolved price.
type Origin string

const (
	OriginOverride         Origin = "override"          // pinned by the operator for the cell
	OriginAnchor           Origin = "anchor"            // anchor room of a source rate
	OriginSupplement       Origin = "supplement"        // source rate, anchor plus supplement
	OriginDerived          Origin = "derived"           // parent price through the rate's rule
	OriginUnresolvedParent Origin = "unresolved_parent" // parent missing, fell back to the anchor
	OriginConfigured       Origin = "configured"        // exact model, configured price list
)

// Resolution is a resolved room price with how it was obtained.
type Resolution struct {
	Price  float64
	Origin Origin
	// Degraded is set when some link of the chain had a missing parent.
	Degraded bool
	// Chain lists the rate ids walked, starting with the priced rate.
	Chain []string
}

// ResolvePrice returns the sell price of room on rate for date.
//
// anchorValue is the anchor price of the date (see AnchorValue), rates is
// the full rate list used to find parents and anchorRoomID is the store's
// anchor room.  An empty date disables override lookup, which is how
// previews without a calendar date are priced.
//
// The only error is a *CyclicDerivationError.  Missing parents, supplements
// and nil arguments all degrade to the anchor value.
func ResolvePrice(anchorRoomID string, rate *model.RatePlan, anchorValue float64, rates []model.RatePlan, room *model.RoomType, date string) (float64, error) {
	res, err := Resolve(anchorRoomID, rate, anchorValue, rates, room, date)
	return res.Price, err
}

// Resolve is ResolvePrice with the resolution details.
func Resolve(anchorRoomID string, rate *model.RatePlan, anchorValue float64, rates []model.RatePlan, room *model.RoomType, date string) (Resolution, error) {
	roomID := ""
	if room != nil {
		roomID = room.ID
	}
	w := walker{anchorRoomID: anchorRoomID, anchor: anchorValue, rates: rates, roomID: roomID, date: date}
	return w.resolve(rate)
}

type walker struct {
	anchorRoomID string
	anchor       float64
	rates        []model.RatePlan
	roomID       string
	date         string
	chain        []string
}

func (w *walker) findRate(id string) *model.RatePlan {
	if id == "" {
		return nil
	}
	for i := range w.rates {
		if w.rates[i].ID == id {
			return &w.rates[i]
		}
	}
	return nil
}

func (w *walker) visited(id string) bool {
	for _, seen := range w.chain {
		if seen == id {
			return true
		}
	}
	return false
}

func (w *walker) resolve(rate *model.RatePlan) (Resolution, error) {
	if rate == nil {
		return Resolution{Price: w.anchor, Origin: OriginUnresolvedParent, Degraded: true, Chain: w.chain}, nil
	}
	if w.visited(rate.ID) {
		chain := append(append([]string(nil), w.chain...), rate.ID)
		return Resolution{Price: w.anchor, Chain: chain}, &CyclicDerivationError{Chain: chain}
	}
	w.chain = append(w.chain, rate.ID)

	// Every link checks its own pin first, so an override halfway up a
	// chain feeds the links below it.
	if w.date != "" {
		if v, ok := rate.Override(w.roomID, w.date); ok {
			return Resolution{Price: v, Origin: OriginOverride, Chain: w.chain}, nil
		}
	}

	if rate.IsSource() {
		if w.roomID == w.anchorRoomID {
			return Resolution{Price: w.anchor, Origin: OriginAnchor, Chain: w.chain}, nil
		}
		return Resolution{Price: rate.Supplement(w.roomID).Apply(w.anchor), Origin: OriginSupplement, Chain: w.chain}, nil
	}

	parent := w.findRate(rate.ParentID)
	if parent == nil {
		return Resolution{Price: w.anchor, Origin: OriginUnresolvedParent, Degraded: true, Chain: w.chain}, nil
	}
	up, err := w.resolve(parent)
	if err != nil {
		return up, err
	}
	return Resolution{
		Price:    rate.Rule.Apply(up.Price),
		Origin:   OriginDerived,
		Degraded: up.Degraded,
		Chain:    up.Chain,
	}, nil
}
