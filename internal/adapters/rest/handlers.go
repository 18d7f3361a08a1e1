// Package rest carries the request/response surface around the relay:
// accounts, the friend graph, message history, call history, presence
// and SMS codes. Each handler is a thin shim over the store; none of
// them touch the relay's registry or rooms.
package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/auth"
	"github.com/mkalra/peercall/internal/presence"
	"github.com/mkalra/peercall/internal/sms"
	"github.com/mkalra/peercall/internal/store"
)

type Handlers struct {
	Store    *store.Store
	Presence *presence.Presence
	Tokens   *auth.Tokens
	Sender   sms.Sender
	ICE      []webrtc.ICEServer

	smsLimiter *rateLimiter
}

func NewHandlers(st *store.Store, pr *presence.Presence, tk *auth.Tokens, snd sms.Sender, ice []webrtc.ICEServer, smsLimit int, smsInterval time.Duration) *Handlers {
	return &Handlers{
		Store:      st,
		Presence:   pr,
		Tokens:     tk,
		Sender:     snd,
		ICE:        ice,
		smsLimiter: newRateLimiter(smsLimit, smsInterval),
	}
}

func (h *Handlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "Hello from the server!")
}

// ICEServers hands clients the STUN/TURN list for their peer connection.
func (h *Handlers) ICEServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.ICE})
}

// fail maps store errors onto the API's status codes.
func fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	log.Error().Err(err).Str("module", "rest").Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}
