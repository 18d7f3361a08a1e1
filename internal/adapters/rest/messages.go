package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkalra/peercall/internal/domain"
)

// FetchMessageHistory returns the thread between the caller and one peer.
func (h *Handlers) FetchMessageHistory(c *gin.Context) {
	var req struct {
		MobileNo       string `json:"mobileNo" binding:"required"`
		TargetMobileNo string `json:"targetMobileNo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "mobileNo and targetMobileNo are required"})
		return
	}
	msgs, err := h.Store.Thread(c.Request.Context(), req.MobileNo, req.TargetMobileNo)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// AppendMessageHistory stores one chat line and echoes the updated
// thread, which is what the client renders.
func (h *Handlers) AppendMessageHistory(c *gin.Context) {
	var req struct {
		Obj            domain.ChatMessage `json:"obj" binding:"required"`
		MobileNo       string             `json:"mobileNo" binding:"required"`
		TargetMobileNo string             `json:"targetMobileNo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Obj.Msg == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "obj, mobileNo and targetMobileNo are required"})
		return
	}
	msgs, err := h.Store.AppendMessage(c.Request.Context(), req.MobileNo, req.TargetMobileNo, req.Obj)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// AddCallHistory records a finished call on both participants.
func (h *Handlers) AddCallHistory(c *gin.Context) {
	req, ok := bindPair(c)
	if !ok {
		return
	}
	if err := h.Store.AddCallHistory(c.Request.Context(), req.MobileNo, req.RemoteMobileNo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video call ended"})
}

// FetchVideoChatHistory lists past call partners, duplicates included.
func (h *Handlers) FetchVideoChatHistory(c *gin.Context) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "mobileNo is required"})
		return
	}
	cards, err := h.Store.VideoChatHistory(c.Request.Context(), req.MobileNo)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}
