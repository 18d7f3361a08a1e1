// Package orch coordinates the registry and room membership around
// connection lifecycle events. The transport adapter calls in here and
// does its own sending; orch never touches sockets.
package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/app"
	"github.com/mkalra/peercall/internal/domain"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.Rooms
}

// Join runs the bookkeeping half of the join protocol: bind the claimed
// phone number to this connection, then add the connection to the room.
// It returns the other members already in the room, in no particular
// order, for the user:joined fan-out.
func (o *Orchestrator) Join(phone domain.PhoneNo, room domain.RoomName, conn domain.ConnID) []domain.ConnID {
	o.Registry.Bind(phone, conn)
	o.Rooms.Join(room, conn)
	return o.Rooms.MembersExcept(room, conn)
}

// BindOnly is the lightweight chat-presence variant: same registry effect
// as Join, no room membership and no broadcast.
func (o *Orchestrator) BindOnly(phone domain.PhoneNo, conn domain.ConnID) {
	o.Registry.Bind(phone, conn)
}

// Disconnect reclaims all state derived from conn. It reports the phone
// number that was bound (if any) and the rooms the connection was removed
// from, so the adapter can tell the remaining members.
func (o *Orchestrator) Disconnect(conn domain.ConnID) (domain.PhoneNo, []domain.RoomName) {
	phone, bound := o.Registry.PhoneOf(conn)
	o.Registry.Unbind(conn)
	left := o.Rooms.LeaveAll(conn)
	if bound || len(left) > 0 {
		log.Info().Str("module", "app.orch").Str("conn", string(conn)).Str("phone", string(phone)).Int("rooms", len(left)).Msg("disconnected")
	}
	return phone, left
}
