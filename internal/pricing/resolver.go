package pricing

import (
	"fmt"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// Quote is a resolved cell price.
type Quote struct {
	Price      float64 `json:"price"`
	Overridden bool    `json:"overridden"`
	Origin     Origin  `json:"origin"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// Resolver answers pricing questions about one store snapshot by id.  It
// honours the store's pricing model and anchor room.
type Resolver struct {
	store *model.Store
}

// NewResolver binds a resolver to s.  s must not be mutated while the
// resolver is in use.
func NewResolver(s *model.Store) *Resolver {
	return &Resolver{store: s}
}

func (r *Resolver) exact() bool {
	return r.store.PricingModel == model.PricingExact
}

func (r *Resolver) lookup(rateID, roomID string) (*model.RatePlan, *model.RoomType, error) {
	rate, ok := r.store.Rate(rateID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrRateNotFound, rateID)
	}
	room, ok := r.store.Room(roomID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrRoomNotFound, roomID)
	}
	return rate, room, nil
}

// RoomPrice resolves the room price of a cell.
func (r *Resolver) RoomPrice(rateID, roomID, date string) (Quote, error) {
	rate, room, err := r.lookup(rateID, roomID)
	if err != nil {
		return Quote{}, err
	}
	return r.roomQuote(rate, room, date)
}

func (r *Resolver) roomQuote(rate *model.RatePlan, room *model.RoomType, date string) (Quote, error) {
	_, pinned := rate.Override(room.ID, date)
	pinned = pinned && date != ""
	if r.exact() {
		return Quote{Price: ResolveExactPrice(rate, room.ID, date), Overridden: pinned, Origin: originOf(pinned)}, nil
	}
	res, err := Resolve(r.store.BarRoomID, rate, AnchorValue(r.store, date), r.store.Rates, room, date)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Price: res.Price, Overridden: pinned, Origin: res.Origin, Degraded: res.Degraded}, nil
}

// OptionPrice resolves the price of a room option for a cell.
func (r *Resolver) OptionPrice(rateID, roomID, optionID, date string) (Quote, error) {
	rate, room, err := r.lookup(rateID, roomID)
	if err != nil {
		return Quote{}, err
	}
	opt, ok := room.Option(optionID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s/%s", model.ErrOptionNotFound, roomID, optionID)
	}
	return r.optionQuote(rate, room, opt, date)
}

func (r *Resolver) optionQuote(rate *model.RatePlan, room *model.RoomType, opt *model.RoomOption, date string) (Quote, error) {
	override := optionOverride(rate, room.ID, opt.ID, date)
	if r.exact() {
		return Quote{Price: ResolveExactOptionPrice(rate, room.ID, opt.ID, date), Overridden: override != nil, Origin: originOf(override != nil)}, nil
	}
	// A pinned option price stands alone, even on a rate whose chain is broken.
	if override != nil {
		return Quote{Price: *override, Overridden: true, Origin: OriginOverride}, nil
	}
	base, err := r.roomQuote(rate, room, date)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Price:    ResolveOptionPrice(base.Price, opt.Delta, nil),
		Origin:   base.Origin,
		Degraded: base.Degraded,
	}, nil
}

func originOf(pinned bool) Origin {
	if pinned {
		return OriginOverride
	}
	return OriginConfigured
}

// Restriction returns the stay controls of a rate for a date.
func (r *Resolver) Restriction(rateID, date string) (model.Restriction, error) {
	rate, ok := r.store.Rate(rateID)
	if !ok {
		return model.Restriction{}, fmt.Errorf("%w: %s", model.ErrRateNotFound, rateID)
	}
	return GetRestriction(rate, date), nil
}

// PreviewAnchor is the dummy anchor used to preview supplement settings.
const PreviewAnchor = 100

// Preview prices a room against an arbitrary anchor with override lookup
// disabled.  It is how supplement and derivation settings are previewed
// independently of the calendar.
func (r *Resolver) Preview(rateID, roomID string, anchor float64) (float64, error) {
	rate, room, err := r.lookup(rateID, roomID)
	if err != nil {
		return 0, err
	}
	return ResolvePrice(r.store.BarRoomID, rate, anchor, r.store.Rates, room, "")
}
