// Package model holds the rate configurator's data model: the catalogue of
// clusters, room types and rate plans, the calendar with its anchor prices,
// and the mutators that edit them.  Every entity is reached by id through
// the Store aggregate; nothing here performs I/O.
package model

import "errors"

// Lookup failures returned by mutators.  A mutator that fails never changes
// the store.
var (
	ErrRateNotFound    = errors.New("rate plan not found")
	ErrRoomNotFound    = errors.New("room type not found")
	ErrOptionNotFound  = errors.New("room option not found")
	ErrDateNotFound    = errors.New("calendar date not found")
	ErrClusterNotFound = errors.New("cluster not found")
	ErrPolicyNotFound  = errors.New("cancellation policy not found")
)

// ErrInvalidInput covers malformed ids, blank names and unknown enum values.
var ErrInvalidInput = errors.New("invalid input")

// ErrAnchorRoom is returned when deleting the room that anchors source rates.
var ErrAnchorRoom = errors.New("room is the anchor room")

// ErrNotSourceRate is returned when a supplement is edited on a derived rate.
var ErrNotSourceRate = errors.New("rate plan is not a source rate")
