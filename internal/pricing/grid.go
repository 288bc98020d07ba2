package pricing

import "github.com/iliyamo/hotel-rate-configurator/internal/model"

// Grid is the full price matrix of a store: every rate plan, room, option
// and calendar date, in display order.
type Grid struct {
	PricingModel model.PricingModel `json:"pricingModel"`
	BarRoomID    string             `json:"barRoomId"`
	Dates        []string           `json:"dates"`
	Anchor       []AnchorCell       `json:"anchor"`
	Rates        []RateBlock        `json:"rates"`
}

// AnchorCell is the anchor price of one date.  Explicit is set when it comes
// from an anchor rate rather than the day's base rate.
type AnchorCell struct {
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	Explicit bool    `json:"explicit"`
}

// RateBlock holds the rows of one rate plan.
type RateBlock struct {
	RateID       string              `json:"rateId"`
	Code         string              `json:"code"`
	Name         string              `json:"name"`
	Type         model.RateType      `json:"type"`
	ParentID     string              `json:"parentId,omitempty"`
	Rule         *model.Delta        `json:"rule,omitempty"`
	Clusters     []ClusterBlock      `json:"clusters"`
	Restrictions []model.Restriction `json:"restrictions"`
	Policies     []string            `json:"policies"`
}

// ClusterBlock groups the room rows of a cluster.
type ClusterBlock struct {
	ClusterID string    `json:"clusterId"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Rooms     []RoomRow `json:"rooms"`
}

// RoomRow is a room price row followed by its option rows.
type RoomRow struct {
	RoomID     string       `json:"roomId"`
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Anchor     bool         `json:"anchor"`
	Supplement *model.Delta `json:"supplement,omitempty"`
	Cells      []Cell       `json:"cells"`
	Options    []OptionRow  `json:"options"`
}

// OptionRow is the price row of one room option.
type OptionRow struct {
	OptionID string      `json:"optionId"`
	Name     string      `json:"name"`
	Delta    model.Delta `json:"delta"`
	Cells    []Cell      `json:"cells"`
}

// Cell is one priced date.  Error is set instead of a price when the cell
// cannot be resolved, which only happens on a cyclic derivation chain.
type Cell struct {
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
	Overridden bool    `json:"overridden"`
	Error      string  `json:"error,omitempty"`
}

// defaultCluster stands in when a store defines no clusters at all.
var defaultCluster = model.Cluster{ID: "", Name: "Default"}

// clusterRooms groups rooms by cluster in cluster order.  Rooms with an
// empty or unknown cluster id are filed under the first cluster.
func clusterRooms(s *model.Store) ([]model.Cluster, map[string][]*model.RoomType) {
	clusters := s.Clusters
	if len(clusters) == 0 {
		clusters = []model.Cluster{defaultCluster}
	}
	known := make(map[string]bool, len(clusters))
	for _, c := range clusters {
		known[c.ID] = true
	}
	groups := make(map[string][]*model.RoomType, len(clusters))
	for i := range s.Rooms {
		room := &s.Rooms[i]
		id := room.ClusterID
		if !known[id] {
			id = clusters[0].ID
		}
		groups[id] = append(groups[id], room)
	}
	return clusters, groups
}

// BuildGrid resolves every cell of the store.  A failing cell never stops
// the others from being computed.
func BuildGrid(s *model.Store) Grid {
	r := NewResolver(s)
	g := Grid{
		PricingModel: s.PricingModel,
		BarRoomID:    s.BarRoomID,
		Dates:        make([]string, len(s.Days)),
		Anchor:       make([]AnchorCell, len(s.Days)),
	}
	for i, d := range s.Days {
		_, explicit := s.AnchorRate(d.Date)
		g.Dates[i] = d.Date
		g.Anchor[i] = AnchorCell{Date: d.Date, Value: AnchorValue(s, d.Date), Explicit: explicit}
	}

	clusters, groups := clusterRooms(s)
	g.Rates = make([]RateBlock, 0, len(s.Rates))
	for i := range s.Rates {
		rate := &s.Rates[i]
		block := RateBlock{
			RateID:       rate.ID,
			Code:         rate.Code,
			Name:         rate.Name,
			Type:         rate.Type,
			Restrictions: make([]model.Restriction, len(g.Dates)),
			Policies:     make([]string, len(g.Dates)),
		}
		if !rate.IsSource() {
			rule := rate.Rule
			block.ParentID = rate.ParentID
			block.Rule = &rule
		}
		for j, date := range g.Dates {
			block.Restrictions[j] = GetRestriction(rate, date)
			if cp, ok := EffectivePolicy(s, rate, date); ok {
				block.Policies[j] = cp.ID
			}
		}
		for _, c := range clusters {
			rooms := groups[c.ID]
			if len(rooms) == 0 {
				continue
			}
			cb := ClusterBlock{ClusterID: c.ID, Name: c.Name, Color: c.Color, Rooms: make([]RoomRow, 0, len(rooms))}
			for _, room := range rooms {
				cb.Rooms = append(cb.Rooms, r.roomRow(rate, room, g.Dates))
			}
			block.Clusters = append(block.Clusters, cb)
		}
		g.Rates = append(g.Rates, block)
	}
	return g
}

func (r *Resolver) roomRow(rate *model.RatePlan, room *model.RoomType, dates []string) RoomRow {
	row := RoomRow{
		RoomID:  room.ID,
		Code:    room.Code,
		Name:    room.Name,
		Anchor:  room.ID == r.store.BarRoomID,
		Cells:   make([]Cell, len(dates)),
		Options: make([]OptionRow, 0, len(room.Options)),
	}
	if rate.IsSource() && !row.Anchor && !r.exact() {
		supp := rate.Supplement(room.ID)
		row.Supplement = &supp
	}
	for i, date := range dates {
		q, err := r.roomQuote(rate, room, date)
		row.Cells[i] = toCell(date, q, err)
	}
	for j := range room.Options {
		opt := &room.Options[j]
		or := OptionRow{OptionID: opt.ID, Name: opt.Name, Delta: opt.Delta, Cells: make([]Cell, len(dates))}
		for i, date := range dates {
			q, err := r.optionQuote(rate, room, opt, date)
			or.Cells[i] = toCell(date, q, err)
		}
		row.Options = append(row.Options, or)
	}
	return row
}

func toCell(date string, q Quote, err error) Cell {
	if err != nil {
		return Cell{Date: date, Error: err.Error()}
	}
	return Cell{Date: date, Price: q.Price, Overridden: q.Overridden}
}
