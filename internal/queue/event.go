// Package queue carries store change notifications between instances over
// RabbitMQ.  Every instance publishes on the rates.changed fanout exchange
// after a successful save and consumes it through its own exclusive queue,
// so all instances reload.
package queue

import "time"

// ChangesExchange is the fanout exchange store changes are published on.
const ChangesExchange = "rates.changed"

// StoreChangedEvent announces that the configuration of a property was saved.
// Instance identifies the publisher so it can skip its own messages.
type StoreChangedEvent struct {
	PropertyID string    `json:"property_id"`
	Instance   string    `json:"instance"`
	Kind       string    `json:"kind"`
	ChangedAt  time.Time `json:"changed_at"`
}
