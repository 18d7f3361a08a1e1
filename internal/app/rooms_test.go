package app

import (
	"sort"
	"testing"

	"github.com/mkalra/peercall/internal/domain"
)

func memberIDs(r *Rooms, room domain.RoomName) []string {
	ids := r.MembersExcept(room, "")
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	sort.Strings(out)
	return out
}

func TestRoomsJoinIsIdempotent(t *testing.T) {
	r := NewRooms()
	r.Join("R1", "c1")
	r.Join("R1", "c1")

	if got := memberIDs(r, "R1"); len(got) != 1 || got[0] != "c1" {
		t.Fatalf("members = %v; want [c1]", got)
	}
}

func TestRoomsMembersExceptSkipsCaller(t *testing.T) {
	r := NewRooms()
	r.Join("R1", "c1")
	r.Join("R1", "c2")
	r.Join("R1", "c3")

	got := r.MembersExcept("R1", "c2")
	if len(got) != 2 {
		t.Fatalf("MembersExcept returned %d members; want 2", len(got))
	}
	for _, id := range got {
		if id == "c2" {
			t.Fatal("MembersExcept returned the excluded connection")
		}
	}
}

func TestRoomsMembersExceptUnknownRoom(t *testing.T) {
	r := NewRooms()
	if got := r.MembersExcept("ghost", "c1"); len(got) != 0 {
		t.Fatalf("unknown room has members: %v", got)
	}
}

func TestRoomsLeave(t *testing.T) {
	r := NewRooms()
	r.Join("R1", "c1")
	r.Join("R1", "c2")
	r.Leave("R1", "c1")

	if got := memberIDs(r, "R1"); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("members = %v; want [c2]", got)
	}
	// Leaving a room you are not in is a no-op.
	r.Leave("R1", "c1")
	r.Leave("ghost", "c1")
}

func TestRoomsLeaveAll(t *testing.T) {
	r := NewRooms()
	r.Join("R1", "c1")
	r.Join("R2", "c1")
	r.Join("R2", "c2")

	left := r.LeaveAll("c1")
	names := make([]string, len(left))
	for i, n := range left {
		names[i] = string(n)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "R1" || names[1] != "R2" {
		t.Fatalf("LeaveAll left %v; want [R1 R2]", names)
	}

	if got := memberIDs(r, "R1"); len(got) != 0 {
		t.Fatalf("R1 members after LeaveAll = %v; want none", got)
	}
	if got := memberIDs(r, "R2"); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("R2 members after LeaveAll = %v; want [c2]", got)
	}

	if left := r.LeaveAll("c1"); len(left) != 0 {
		t.Fatalf("second LeaveAll left %v; want none", left)
	}
}
