package model

import "time"

// DateLayout is the label format of generated calendar days, e.g. "Fri, May 3".
const DateLayout = "Mon, Jan 2"

// DefaultCalendarDays is how many days a fresh calendar spans.
const DefaultCalendarDays = 7

// Default daily anchor prices of a fresh calendar.
const (
	WeekdayBaseRate = 100
	WeekendBaseRate = 150
)

// InitCalendar builds n consecutive days starting at start.  Friday and
// Saturday nights get the weekend base rate.
func InitCalendar(start time.Time, n int) []CalendarDay {
	if n <= 0 {
		n = DefaultCalendarDays
	}
	days := make([]CalendarDay, 0, n)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		base := float64(WeekdayBaseRate)
		if wd := d.Weekday(); wd == time.Friday || wd == time.Saturday {
			base = WeekendBaseRate
		}
		days = append(days, CalendarDay{Date: d.Format(DateLayout), BaseRate: base})
	}
	return days
}

// DefaultStore returns the demo property a new installation starts with:
// three clusters, seven room types, a source BAR rate and two derived rates
// stacked on it.  The calendar is left empty; callers hydrate it with
// InitCalendar.
func DefaultStore() *Store {
	s := &Store{
		BarRoomID:    "r1",
		PricingModel: PricingStandard,
		Clusters: []Cluster{
			{ID: "c1", Name: "Standard", Color: "#bfdbfe"},
			{ID: "c2", Name: "Premium", Color: "#fed7aa"},
			{ID: "c3", Name: "Luxury", Color: "#e9d5ff"},
		},
		Rooms: []RoomType{
			{ID: "r1", Code: "STD", Name: "Standard Room", ClusterID: "c1", Options: []RoomOption{
				{ID: "o1", Name: "King Bed", Delta: Fixed(0)},
				{ID: "o2", Name: "Twin Bed", Delta: Fixed(0)},
			}},
			{ID: "r2", Code: "STV", Name: "Standard View", ClusterID: "c1", Options: []RoomOption{
				{ID: "o4", Name: "Garden View", Delta: Fixed(0)},
				{ID: "o5", Name: "Pool View", Delta: Fixed(20)},
			}},
			{ID: "r3", Code: "SUP", Name: "Superior Room", ClusterID: "c2", Options: []RoomOption{
				{ID: "o6", Name: "King Bed", Delta: Fixed(0)},
				{ID: "o7", Name: "Twin Bed", Delta: Fixed(0)},
			}},
			{ID: "r4", Code: "DLX", Name: "Deluxe Room", ClusterID: "c2", Options: []RoomOption{
				{ID: "o9", Name: "City View", Delta: Fixed(0)},
				{ID: "o10", Name: "Ocean View", Delta: Fixed(40)},
			}},
			{ID: "r5", Code: "JSU", Name: "Junior Suite", ClusterID: "c2", Options: []RoomOption{
				{ID: "o13", Name: "Standard", Delta: Fixed(0)},
				{ID: "o14", Name: "Panorama", Delta: Fixed(60)},
			}},
			{ID: "r6", Code: "EXS", Name: "Executive Suite", ClusterID: "c3", Options: []RoomOption{
				{ID: "o15", Name: "One Bedroom", Delta: Fixed(0)},
				{ID: "o16", Name: "Two Bedroom", Delta: Fixed(150)},
			}},
			{ID: "r7", Code: "PRS", Name: "Presidential Suite", ClusterID: "c3", Options: []RoomOption{
				{ID: "o18", Name: "Penthouse", Delta: Fixed(0)},
				{ID: "o19", Name: "Royal Wing", Delta: Fixed(500)},
			}},
		},
		Rates: []RatePlan{
			{ID: "p1", Code: "BAR", Name: "Best Available Rate", Type: RateSource, PolicyID: "cp1",
				Supplements: map[string]Delta{
					"r2": Fixed(10),
					"r3": Fixed(30),
					"r4": Fixed(50),
					"r5": Fixed(100),
					"r6": Fixed(200),
					"r7": Fixed(300),
				}},
			{ID: "p2", Code: "NREF", Name: "Non-Refundable", Type: RateDerived, ParentID: "p1", Rule: Percent(-10), PolicyID: "cp2"},
			{ID: "p3", Code: "PROMO", Name: "Summer Promo", Type: RateDerived, ParentID: "p2", Rule: Percent(-5), PolicyID: "cp2"},
		},
		Policies: []CancellationPolicy{
			{ID: "cp1", Name: "Flexible", Description: "Free cancellation until 24 hours before arrival."},
			{ID: "cp2", Name: "Non-Refundable", Description: "Prepaid, no refund on cancellation."},
		},
		AnchorRates: map[string]float64{},
	}
	s.Normalize()
	return s
}

// Hydrate gives a store without a calendar a fresh one of days days starting
// at now.  It reports whether the calendar was created.
func (s *Store) Hydrate(now time.Time, days int) bool {
	if len(s.Days) > 0 {
		return false
	}
	s.Days = InitCalendar(now, days)
	return true
}
