package chat

import (
	"sync"
	"testing"
)

func newTestClient(room, user string) *Client {
	return NewClient(NewMemConn("127.0.0.1:1234"), room, user, 8, 0, 0)
}

func TestRegistryJoinLeave(t *testing.T) {
	r := NewRegistry()
	a := newTestClient("general", "alice")
	b := newTestClient("general", "bob")

	r.Join("general", a)
	r.Join("general", b)
	if got := r.Count("general"); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}

	if !r.Leave("general", a) {
		t.Fatalf("Leave of a member reported no removal")
	}
	if got := r.Count("general"); got != 1 {
		t.Fatalf("Count after leave = %d, want 1", got)
	}

	// leaving twice must be a no-op and must say so, so racing
	// disconnect paths cannot double-count one departure
	if r.Leave("general", a) {
		t.Fatalf("second Leave reported a removal")
	}
	if got := r.Count("general"); got != 1 {
		t.Fatalf("Count after double leave = %d, want 1", got)
	}
	if r.Leave("nowhere", a) {
		t.Fatalf("Leave of an unknown room reported a removal")
	}
}

func TestRegistryPrunesEmptyRooms(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("ephemeral", "carol")
	r.Join("ephemeral", c)
	r.Leave("ephemeral", c)

	if rooms := r.Rooms(); len(rooms) != 0 {
		t.Fatalf("Rooms after last leave = %v, want none", rooms)
	}
}

func TestRegistryMembersIsSnapshot(t *testing.T) {
	r := NewRegistry()
	a := newTestClient("general", "alice")
	r.Join("general", a)

	members := r.Members("general")
	r.Leave("general", a)
	if len(members) != 1 {
		t.Fatalf("snapshot mutated by later Leave: %d members", len(members))
	}
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient("busy", "user")
			for j := 0; j < 100; j++ {
				r.Join("busy", c)
				r.Members("busy")
				r.Leave("busy", c)
			}
		}()
	}
	wg.Wait()
	if got := r.Count("busy"); got != 0 {
		t.Fatalf("Count after churn = %d, want 0", got)
	}
}
