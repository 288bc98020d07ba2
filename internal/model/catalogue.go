package model

// Cluster groups room types for display.  It has no effect on pricing.
type Cluster struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// RoomOption is an add-on of a room type (bed type, view...).  Its Delta is
// stacked on the resolved room price of a rate plan for a date.
type RoomOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Delta Delta  `json:"delta"`
}

// RoomType is a sellable room category.  Options are kept in display order.
type RoomType struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	ClusterID string       `json:"clusterId"`
	Options   []RoomOption `json:"options"`
}

// Option returns the option with the given id.
func (r *RoomType) Option(id string) (*RoomOption, bool) {
	for i := range r.Options {
		if r.Options[i].ID == id {
			return &r.Options[i], true
		}
	}
	return nil, false
}

// CancellationPolicy is descriptive only.  Rate plans reference it by id.
type CancellationPolicy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CalendarDay is one column of the rate grid.  BaseRate is the anchor price
// used when no explicit anchor rate is stored for Date.
type CalendarDay struct {
	Date     string  `json:"date"`
	BaseRate float64 `json:"baseRate"`
}
