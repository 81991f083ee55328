package chat

import (
	"sync"

	"blogchat/pkg/logger"
)

// Hub fans envelopes out to room members. Delivery to one member is
// independent of every other: a full or dead client is dropped from
// the room, never retried, and never delays its peers.
type Hub struct {
	reg *Registry
	// mu serializes Broadcast with join-time history replay so a joiner
	// sees each message exactly once, either in the snapshot or live.
	mu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{reg: NewRegistry()}
}

func (h *Hub) Registry() *Registry { return h.reg }

// Join registers a client as a member of its room.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reg.Join(c.Room(), c)
	connectionsGauge.WithLabelValues(c.Room()).Inc()
}

// JoinAndReplay registers a client and runs replay before any
// concurrent Broadcast can reach it. Messages appended before the
// replay query land in the snapshot; messages appended after are
// delivered live, after the snapshot is enqueued.
func (h *Hub) JoinAndReplay(c *Client, replay func() bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reg.Join(c.Room(), c)
	connectionsGauge.WithLabelValues(c.Room()).Inc()
	return replay()
}

// Leave removes a client from its room. Idempotent.
func (h *Hub) Leave(c *Client) {
	if h.reg == nil {
		return
	}
	if h.reg.Leave(c.Room(), c) {
		connectionsGauge.WithLabelValues(c.Room()).Dec()
	}
}

// Broadcast enqueues an envelope for every current member of a room.
// Members whose queues are full are evicted and closed.
func (h *Hub) Broadcast(room string, v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.reg.Members(room)
	var failed []*Client
	for _, c := range members {
		if !c.Send(v) {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		logger.Warn("chat_member_evicted", "room", room, "user", c.Username(), "reason", "send_queue_full")
		h.Leave(c)
		c.Close()
		evictionsTotal.WithLabelValues(room).Inc()
	}
	broadcastsTotal.WithLabelValues(room).Inc()
}

// CloseAll disconnects every client. Used on shutdown.
func (h *Hub) CloseAll() {
	for _, c := range h.reg.All() {
		h.Leave(c)
		c.Close()
	}
}
