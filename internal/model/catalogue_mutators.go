package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Id prefixes of generated entities.
const (
	clusterPrefix = "c-"
	roomPrefix    = "r-"
	optionPrefix  = "o-"
	ratePrefix    = "p-"
	policyPrefix  = "cp-"
)

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

// AddCluster appends a new cluster.
func (s *Store) AddCluster(name, color string) (Cluster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Cluster{}, fmt.Errorf("%w: cluster name is required", ErrInvalidInput)
	}
	c := Cluster{ID: newID(clusterPrefix), Name: name, Color: strings.TrimSpace(color)}
	s.Clusters = append(s.Clusters, c)
	return c, nil
}

// AddRoom appends a room type with a single zero-delta "Standard" option.
// An empty cluster id files the room under the first cluster.
func (s *Store) AddRoom(name, code, clusterID string) (RoomType, error) {
	name, code = strings.TrimSpace(name), strings.TrimSpace(code)
	if name == "" || code == "" {
		return RoomType{}, fmt.Errorf("%w: room name and code are required", ErrInvalidInput)
	}
	if clusterID == "" && len(s.Clusters) > 0 {
		clusterID = s.Clusters[0].ID
	}
	if clusterID != "" {
		if _, ok := s.Cluster(clusterID); !ok {
			return RoomType{}, fmt.Errorf("%w: %s", ErrClusterNotFound, clusterID)
		}
	}
	r := RoomType{
		ID:        newID(roomPrefix),
		Code:      code,
		Name:      name,
		ClusterID: clusterID,
		Options:   []RoomOption{{ID: newID(optionPrefix), Name: "Standard", Delta: Fixed(0)}},
	}
	s.Rooms = append(s.Rooms, r)
	out := r
	out.Options = append([]RoomOption(nil), r.Options...)
	return out, nil
}

// AddOption appends an option to a room type.
func (s *Store) AddOption(roomID, name string, d Delta) (RoomOption, error) {
	r, err := s.requireRoom(roomID)
	if err != nil {
		return RoomOption{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return RoomOption{}, fmt.Errorf("%w: option name is required", ErrInvalidInput)
	}
	o := RoomOption{ID: newID(optionPrefix), Name: name, Delta: d.Normalize()}
	r.Options = append(r.Options, o)
	return o, nil
}

// DeleteRoom removes a room type.  Price entries that mention it stay in the
// rate plans and are simply never read.  The anchor room cannot be deleted.
func (s *Store) DeleteRoom(roomID string) error {
	if _, err := s.requireRoom(roomID); err != nil {
		return err
	}
	if roomID == s.BarRoomID {
		return fmt.Errorf("%w: %s", ErrAnchorRoom, roomID)
	}
	for i := range s.Rooms {
		if s.Rooms[i].ID == roomID {
			s.Rooms = append(s.Rooms[:i], s.Rooms[i+1:]...)
			break
		}
	}
	return nil
}

// NewRate describes a rate plan to create.
type NewRate struct {
	Code     string
	Name     string
	Type     RateType
	ParentID string
	Rule     Delta
	PolicyID string
}

// AddRate appends a rate plan.  A derived rate must name an existing parent
// at creation time; if that parent is deleted later the rate degrades to the
// anchor price instead of failing.
func (s *Store) AddRate(in NewRate) (RatePlan, error) {
	name, code := strings.TrimSpace(in.Name), strings.TrimSpace(in.Code)
	if name == "" || code == "" {
		return RatePlan{}, fmt.Errorf("%w: rate name and code are required", ErrInvalidInput)
	}
	p := RatePlan{ID: newID(ratePrefix), Code: code, Name: name, PolicyID: in.PolicyID}
	switch in.Type {
	case RateSource, "":
		p.Type = RateSource
	case RateDerived:
		if _, ok := s.Rate(in.ParentID); !ok {
			return RatePlan{}, fmt.Errorf("%w: parent %q", ErrRateNotFound, in.ParentID)
		}
		p.Type = RateDerived
		p.ParentID = in.ParentID
		p.Rule = in.Rule.Normalize()
	default:
		return RatePlan{}, fmt.Errorf("%w: rate type %q", ErrInvalidInput, in.Type)
	}
	if p.PolicyID != "" {
		if _, ok := s.Policy(p.PolicyID); !ok {
			return RatePlan{}, fmt.Errorf("%w: %s", ErrPolicyNotFound, p.PolicyID)
		}
	}
	p.initMaps()
	s.Rates = append(s.Rates, p)
	return p.clone(), nil
}

// DeleteRate removes a rate plan.  Rates derived from it keep their parent
// id and resolve to the anchor price from then on.
func (s *Store) DeleteRate(rateID string) error {
	if _, err := s.rateForWrite(rateID); err != nil {
		return err
	}
	for i := range s.Rates {
		if s.Rates[i].ID == rateID {
			s.Rates = append(s.Rates[:i], s.Rates[i+1:]...)
			break
		}
	}
	return nil
}

// AddPolicy appends a cancellation policy.
func (s *Store) AddPolicy(name, description string) (CancellationPolicy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CancellationPolicy{}, fmt.Errorf("%w: policy name is required", ErrInvalidInput)
	}
	cp := CancellationPolicy{ID: newID(policyPrefix), Name: name, Description: strings.TrimSpace(description)}
	s.Policies = append(s.Policies, cp)
	return cp, nil
}

// ResetCalendar replaces the calendar with n fresh days from start.  Anchor
// rates and per-date entries of the old calendar are kept; they only apply if
// a label comes back.
func (s *Store) ResetCalendar(start time.Time, n int) {
	s.Days = InitCalendar(start, n)
}
