package chat

import (
	"testing"
	"time"
)

func recvEnvelope(t *testing.T, mc *MemConn) any {
	t.Helper()
	select {
	case v := <-mc.Sent():
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for envelope")
		return nil
	}
}

func startedClient(room, user string) (*Client, *MemConn) {
	mc := NewMemConn("127.0.0.1:1234")
	c := NewClient(mc, room, user, 8, 0, 0)
	go c.WritePump(time.Minute)
	return c, mc
}

func TestHubBroadcastReachesAllMembers(t *testing.T) {
	h := NewHub()
	a, amc := startedClient("general", "alice")
	b, bmc := startedClient("general", "bob")
	h.Join(a)
	h.Join(b)
	defer h.CloseAll()

	h.Broadcast("general", NewErrorEnvelope("ping"))

	for _, mc := range []*MemConn{amc, bmc} {
		env, ok := recvEnvelope(t, mc).(ErrorEnvelope)
		if !ok || env.Message != "ping" {
			t.Fatalf("unexpected envelope: %#v", env)
		}
	}
}

func TestHubBroadcastIsRoomScoped(t *testing.T) {
	h := NewHub()
	a, amc := startedClient("general", "alice")
	b, bmc := startedClient("random", "bob")
	h.Join(a)
	h.Join(b)
	defer h.CloseAll()

	h.Broadcast("general", NewErrorEnvelope("only general"))

	recvEnvelope(t, amc)
	select {
	case v := <-bmc.Sent():
		t.Fatalf("cross-room leak: %#v", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubEvictsFullClients(t *testing.T) {
	h := NewHub()
	// no write pump: the buffer fills and stays full
	mc := NewMemConn("127.0.0.1:1234")
	stuck := NewClient(mc, "general", "curt", 1, 0, 0)
	h.Join(stuck)

	h.Broadcast("general", NewErrorEnvelope("1")) // fills the buffer
	h.Broadcast("general", NewErrorEnvelope("2")) // overflows; eviction

	if got := h.Registry().Count("general"); got != 0 {
		t.Fatalf("full client not evicted, count = %d", got)
	}
	select {
	case <-stuck.Done():
	case <-time.After(time.Second):
		t.Fatalf("evicted client was not closed")
	}
}

func TestClientSendAfterClose(t *testing.T) {
	c, _ := startedClient("general", "alice")
	c.Close()
	if c.Send(NewErrorEnvelope("late")) {
		t.Fatalf("Send succeeded on closed client")
	}
}
