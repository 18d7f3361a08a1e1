package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/domain"
)

// handleMessage forwards an in-call chat line to the peer named in the
// envelope. Delivery is best effort; durable chat goes through the REST
// message-history API, not through here.
func (ctl *Controller) handleMessage(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		Body string        `json:"roompageMessage"`
		To   domain.ConnID `json:"remoteSocketId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad message payload")
		return
	}
	ctl.sendTo(p.To, "receive-message", struct {
		Message  string        `json:"message"`
		SocketID domain.ConnID `json:"socketId"`
	}{p.Body, sid})
}

// handleChatMessage broadcasts a payload-free pulse to every connected
// socket. Clients treat it as "re-fetch your history from the store";
// the message body itself never rides the relay.
func (ctl *Controller) handleChatMessage(sid domain.ConnID) {
	log.Debug().Str("module", "signal").Str("conn", string(sid)).Msg("chat message pulse")
	ctl.broadcastAll("receive-chatMessage", struct{}{})
}
