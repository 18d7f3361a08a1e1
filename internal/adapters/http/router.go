package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mkalra/peercall/internal/adapters/rest"
	"github.com/mkalra/peercall/internal/adapters/signal"
	"github.com/mkalra/peercall/internal/auth"
	"github.com/mkalra/peercall/internal/config"
)

// SetupRouter wires the whole HTTP surface: the signaling WebSocket
// under /api and the REST routes at the paths the clients call.
func SetupRouter(cfg *config.Config, ctl *signal.Controller, h *rest.Handlers, tokens *auth.Tokens) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/", h.Health)

	api := r.Group("/api")
	api.GET("/ws/signal", ctl.HandleSignal)
	api.GET("/iceServers", h.ICEServers)

	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.GET("/userDetails", auth.Middleware(tokens), h.UserDetails)

	r.GET("/onlineUserDetails", h.OnlineUserDetails)
	r.POST("/setOnlineUser", h.SetOnlineUser)

	r.POST("/sendSms", h.SendSMS)
	r.POST("/verifySms", h.VerifySMS)

	r.POST("/sendRequest", h.SendRequest)
	r.POST("/acceptingNewRequest", h.AcceptRequest)
	r.POST("/cancellingNewRequest", h.RejectRequest)
	r.POST("/handleSentRequestCancel", h.CancelSentRequest)
	r.POST("/fetchUserFriends", h.FetchFriends)
	r.POST("/fetchUserSentRequests", h.FetchSentRequests)
	r.POST("/fetchUserNewRequests", h.FetchNewRequests)
	r.POST("/unfriend", h.Unfriend)
	r.POST("/addingUserToBlockedList", h.Block)
	r.POST("/fetchBlockedUsers", h.FetchBlockedUsers)

	r.POST("/fetchUsermessageHistory", h.FetchMessageHistory)
	r.POST("/fetchUpdatingUserHistoryMessage", h.AppendMessageHistory)
	r.POST("/addCallHistory", h.AddCallHistory)
	r.POST("/fetchVideoChatHistory", h.FetchVideoChatHistory)

	r.POST("/addingInterestThroughMyAccount", h.AddInterest)
	r.POST("/removeInterestThroughMyAccount", h.RemoveInterest)

	return r
}
