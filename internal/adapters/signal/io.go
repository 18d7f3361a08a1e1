package signal

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/domain"
)

const writeWait = 5 * time.Second

// envelope is one wire frame in either direction: an event tag plus an
// opaque payload the relay never inspects beyond its own fields.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (ctl *Controller) writePump(c *wsSignalConn) {
	ping := time.NewTicker(ctl.opts.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(sid domain.ConnID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("socket disconnected")
		ctl.dropPeer(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("readPump read error")
			}
			return
		}
		ctl.dispatch(sid, c, data)
	}
}

// dispatch routes one inbound frame by event name. A frame that fails to
// decode, or names no known event, is dropped here with a diagnostic and
// must never affect any other connection.
func (ctl *Controller) dispatch(sid domain.ConnID, c *wsSignalConn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad frame")
		return
	}

	switch env.Event {
	case "room:join":
		ctl.handleRoomJoin(sid, c, env.Data)
	case "chatRoom:join":
		ctl.handleChatRoomJoin(sid, env.Data)
	case "user:call":
		ctl.handleUserCall(sid, env.Data)
	case "call:accepted":
		ctl.handleCallAccepted(sid, env.Data)
	case "peer:nego:needed":
		ctl.handleNegoNeeded(sid, env.Data)
	case "peer:nego:done":
		ctl.handleNegoDone(sid, env.Data)
	case "call:hangup":
		ctl.handleHangup(sid, env.Data)
	case "exchangePhoneNo":
		ctl.handleExchangePhoneNo(sid, env.Data)
	case "setRemoteCallStart":
		ctl.handleRemoteCallStart(sid, env.Data)
	case "message":
		ctl.handleMessage(sid, env.Data)
	case "chatMessage":
		ctl.handleChatMessage(sid)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
	}
}

func (ctl *Controller) sendEvent(c *wsSignalConn, event string, data any) {
	b, err := json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{event, data})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("sendEvent marshal")
		return
	}
	_ = c.TrySend(b)
}
