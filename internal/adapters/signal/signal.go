package signal

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/app/orch"
	"github.com/mkalra/peercall/internal/auth"
	"github.com/mkalra/peercall/internal/core"
	"github.com/mkalra/peercall/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Options tunes the controller. A nil Tokens leaves the handshake
// unauthenticated, which is the default: the relay accepts any claimed
// phone number.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PeerLeft   bool
	Tokens     *auth.Tokens
}

// Controller is the WebSocket side of the relay. It owns the peer table
// (connection id -> live socket), which is the addressed-send primitive
// every forwarding handler goes through. Sends to ids not in the table
// silently vanish.
type Controller struct {
	Orch *orch.Orchestrator
	opts Options

	mu    sync.RWMutex
	peers map[domain.ConnID]*wsSignalConn
}

func NewController(o *orch.Orchestrator, opts Options) *Controller {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 32768
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	return &Controller{
		Orch:  o,
		opts:  opts,
		peers: make(map[domain.ConnID]*wsSignalConn),
	}
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

var _ core.SignalConnection = (*wsSignalConn)(nil)

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until the
// socket closes. Each upgrade mints a fresh connection id; identity is
// only attached later, by room:join or chatRoom:join.
func (ctl *Controller) HandleSignal(c *gin.Context) {
	if ctl.opts.Tokens != nil {
		if _, err := ctl.opts.Tokens.Verify(bearerToken(c)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := domain.ConnID(uuid.NewString())
	conn := &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ctl.addPeer(sid, conn)
	log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("socket connected")

	go ctl.writePump(conn)
	go ctl.readPump(sid, conn)
}

func bearerToken(c *gin.Context) string {
	tok := c.Query("token")
	if tok == "" {
		tok = c.GetHeader("Authorization")
	}
	return strings.TrimSpace(strings.TrimPrefix(tok, "Bearer "))
}

func (ctl *Controller) addPeer(sid domain.ConnID, conn *wsSignalConn) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.peers[sid] = conn
}

// dropPeer tears down everything derived from sid: the peer table entry,
// the identity binding and every room membership. Former co-members get a
// user:left notice when the policy is enabled.
func (ctl *Controller) dropPeer(sid domain.ConnID) {
	ctl.mu.Lock()
	delete(ctl.peers, sid)
	ctl.mu.Unlock()

	phone, left := ctl.Orch.Disconnect(sid)
	if !ctl.opts.PeerLeft {
		return
	}
	for _, room := range left {
		for _, member := range ctl.Orch.Rooms.MembersExcept(room, sid) {
			ctl.sendTo(member, "user:left", struct {
				PhoneNo domain.PhoneNo `json:"phoneNo"`
				ID      domain.ConnID  `json:"id"`
			}{phone, sid})
		}
	}
}

func (ctl *Controller) peer(sid domain.ConnID) (*wsSignalConn, bool) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	conn, ok := ctl.peers[sid]
	return conn, ok
}

// sendTo is the addressed-send primitive. Unknown targets are a silent
// no-op; the sender is never told.
func (ctl *Controller) sendTo(target domain.ConnID, event string, data any) {
	conn, ok := ctl.peer(target)
	if !ok {
		log.Debug().Str("module", "signal").Str("target", string(target)).Str("event", event).Msg("no such peer, dropping")
		return
	}
	ctl.sendEvent(conn, event, data)
}

// broadcastAll delivers an event to every connected socket, roomed or not.
func (ctl *Controller) broadcastAll(event string, data any) {
	ctl.mu.RLock()
	conns := make([]*wsSignalConn, 0, len(ctl.peers))
	for _, c := range ctl.peers {
		conns = append(conns, c)
	}
	ctl.mu.RUnlock()
	for _, c := range conns {
		ctl.sendEvent(c, event, data)
	}
}
