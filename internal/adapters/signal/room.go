package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/domain"
)

// handleRoomJoin runs the join protocol, in order: bind the phone number
// to this connection, add it to the room, tell the members that were
// already there, then echo the original payload back to the joiner as the
// acknowledgment. The echo does not enumerate existing members; peers
// learn about each other one join at a time.
func (ctl *Controller) handleRoomJoin(sid domain.ConnID, c *wsSignalConn, data json.RawMessage) {
	var p struct {
		PhoneNo domain.PhoneNo  `json:"phoneNo"`
		Room    domain.RoomName `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.PhoneNo == "" || p.Room == "" {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad room:join payload")
		return
	}

	others := ctl.Orch.Join(p.PhoneNo, p.Room, sid)

	joined := struct {
		PhoneNo domain.PhoneNo `json:"phoneNo"`
		ID      domain.ConnID  `json:"id"`
	}{p.PhoneNo, sid}
	for _, member := range others {
		ctl.sendTo(member, "user:joined", joined)
	}

	ctl.sendEvent(c, "room:join", data)
}

// handleChatRoomJoin is the presence-only variant: it binds the phone
// number so chat peers can address this socket, but touches no room and
// broadcasts nothing.
func (ctl *Controller) handleChatRoomJoin(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		MobileNo domain.PhoneNo `json:"mobileNo"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.MobileNo == "" {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad chatRoom:join payload")
		return
	}
	ctl.Orch.BindOnly(p.MobileNo, sid)
}
