package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// Session is one connected client.
type Session interface {
	Send(env Envelope) error
	Close() error
}

// Hub tracks the local sessions of every group.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[Session]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[Session]struct{}),
		logger: logger.With("component", "realtime_hub"),
	}
}

// Join adds s to group and returns the function that removes it.
func (h *Hub) Join(group string, s Session) (leave func()) {
	h.mu.Lock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[Session]struct{})
		h.groups[group] = members
	}
	members[s] = struct{}{}
	h.mu.Unlock()

	return func() { h.remove(group, s) }
}

// Sessions returns how many local sessions are joined to group.
func (h *Hub) Sessions(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Deliver writes env to every session of its group. A session that fails
// a write is closed and dropped.
func (h *Hub) Deliver(env Envelope) {
	for _, s := range h.members(env.Group) {
		if err := s.Send(env); err != nil {
			h.logger.Debug("Dropping session after failed write", "group", env.Group, "error", err)
			h.drop(env.Group, s)
		}
	}
}

// Ping sends a keepalive frame to every session and drops the dead ones.
func (h *Hub) Ping() int {
	h.mu.RLock()
	groups := make([]string, 0, len(h.groups))
	for group := range h.groups {
		groups = append(groups, group)
	}
	h.mu.RUnlock()

	alive := 0
	for _, group := range groups {
		for _, s := range h.members(group) {
			if err := s.Send(Envelope{Group: group, Type: PingType}); err != nil {
				h.drop(group, s)
				continue
			}
			alive++
		}
	}
	return alive
}

// Run delivers everything the bus carries until ctx ends.
func (h *Hub) Run(ctx context.Context, bus Bus) error {
	return bus.Subscribe(ctx, h.Deliver)
}

// Close closes every session.
func (h *Hub) Close() {
	h.mu.Lock()
	groups := h.groups
	h.groups = make(map[string]map[Session]struct{})
	h.mu.Unlock()

	for _, members := range groups {
		for s := range members {
			_ = s.Close()
		}
	}
}

func (h *Hub) members(group string) []Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]Session, 0, len(h.groups[group]))
	for s := range h.groups[group] {
		members = append(members, s)
	}
	return members
}

func (h *Hub) drop(group string, s Session) {
	h.remove(group, s)
	_ = s.Close()
}

func (h *Hub) remove(group string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}
