package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/domain"
)

// Rooms owns the per-room membership sets. Membership is many-to-many:
// a connection may sit in several rooms and a room holds any number of
// connections. The zero state for an unknown room is an empty set.
type Rooms struct {
	mu      sync.RWMutex
	members map[domain.RoomName]map[domain.ConnID]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{members: make(map[domain.RoomName]map[domain.ConnID]struct{})}
}

// Join adds conn to the room, creating the room on first reference.
// Joining twice is a no-op.
func (r *Rooms) Join(room domain.RoomName, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.members[room]
	if !ok {
		set = make(map[domain.ConnID]struct{})
		r.members[room] = set
	}
	set[conn] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("room", string(room)).Str("conn", string(conn)).Msg("joined room")
}

// Leave removes conn from a single room. Empty rooms are dropped so the
// map does not accumulate dead names.
func (r *Rooms) Leave(room domain.RoomName, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, conn)
}

// LeaveAll removes conn from every room it belongs to and reports which
// rooms it left, so the caller can notify the remaining members.
func (r *Rooms) LeaveAll(conn domain.ConnID) []domain.RoomName {
	r.mu.Lock()
	defer r.mu.Unlock()
	var left []domain.RoomName
	for room, set := range r.members {
		if _, ok := set[conn]; ok {
			left = append(left, room)
			r.leaveLocked(room, conn)
		}
	}
	if len(left) > 0 {
		log.Info().Str("module", "app.rooms").Str("conn", string(conn)).Int("rooms", len(left)).Msg("left all rooms")
	}
	return left
}

// MembersExcept returns every current member of the room other than conn.
// This is the fan-out set for membership broadcasts.
func (r *Rooms) MembersExcept(room domain.RoomName, conn domain.ConnID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.members[room]
	out := make([]domain.ConnID, 0, len(set))
	for id := range set {
		if id == conn {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (r *Rooms) leaveLocked(room domain.RoomName, conn domain.ConnID) {
	set, ok := r.members[room]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.members, room)
	}
}
