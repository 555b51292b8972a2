// Package realtime fans events out to WebSocket sessions.
//
// A Publisher puts events on a Bus. Every process runs a Hub subscribed to
// the bus, and the hub writes each envelope to the local sessions joined to
// the envelope's group. The memory bus serves a single instance. The redis
// and postgres buses let several instances share one set of groups.
package realtime

import (
	"encoding/json"
	"strings"

	"lastmile/internal/core/domain/model/event"
)

// PingType is the keepalive frame sent to idle sessions.
const PingType = "ping"

// Envelope is one event as it travels over a bus and down a socket.
type Envelope struct {
	Group   string          `json:"group"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope encodes e for its group.
func NewEnvelope(e event.Event) (Envelope, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Group: e.Key, Type: string(e.Type), Payload: payload}, nil
}

// ValidGroup reports whether group is a key a session may join.
func ValidGroup(group string) bool {
	if group == event.StaffKey {
		return true
	}
	for _, prefix := range []string{event.CustomerKey(""), event.DriverKey("")} {
		if token, ok := strings.CutPrefix(group, prefix); ok {
			return token != ""
		}
	}
	return false
}
