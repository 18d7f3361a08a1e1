package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkalra/peercall/internal/domain"
)

type pairRequest struct {
	MobileNo       string `json:"mobileNo" binding:"required"`
	RemoteMobileNo string `json:"remoteMobileNo" binding:"required"`
}

func bindPair(c *gin.Context) (pairRequest, bool) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "mobileNo and remoteMobileNo are required"})
		return req, false
	}
	return req, true
}

// SendRequest uses phoneNo/remotePhoneNo field names, which is what the
// client sends on this one route.
func (h *Handlers) SendRequest(c *gin.Context) {
	var req struct {
		PhoneNo       string `json:"phoneNo" binding:"required"`
		RemotePhoneNo string `json:"remotePhoneNo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "phoneNo and remotePhoneNo are required"})
		return
	}
	if err := h.Store.SendRequest(c.Request.Context(), req.PhoneNo, req.RemotePhoneNo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request sent"})
}

func (h *Handlers) AcceptRequest(c *gin.Context) {
	req, ok := bindPair(c)
	if !ok {
		return
	}
	if err := h.Store.AcceptRequest(c.Request.Context(), req.MobileNo, req.RemoteMobileNo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

func (h *Handlers) RejectRequest(c *gin.Context) {
	req, ok := bindPair(c)
	if !ok {
		return
	}
	if err := h.Store.RejectRequest(c.Request.Context(), req.MobileNo, req.RemoteMobileNo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
}

func (h *Handlers) CancelSentRequest(c *gin.Context) {
	req, ok := bindPair(c)
	if !ok {
		return
	}
	if err := h.Store.CancelSentRequest(c.Request.Context(), req.MobileNo, req.RemoteMobileNo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

func (h *Handlers) Unfriend(c *gin.Context) {
	req, ok := bindPair(c)
	if !ok {
		return
	}
	if err := h.Store.Unfriend(c.Request.Context(), req.MobileNo, req.RemoteMobileNo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unfriended"})
}

func (h *Handlers) Block(c *gin.Context) {
	req, ok := bindPair(c)
	if !ok {
		return
	}
	if err := h.Store.Block(c.Request.Context(), req.MobileNo, req.RemoteMobileNo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User added to block list"})
}

type mobileRequest struct {
	MobileNo string `json:"mobileNo" binding:"required"`
}

// cardList handles the shared fetch shape of the four list endpoints.
// emptyStatus differs per route: an empty friend list is a 404, an
// empty request list is a 200 with a message.
func (h *Handlers) cardList(c *gin.Context, list func(string) ([]domain.ProfileCard, error), emptyStatus int, emptyMessage string) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "mobileNo is required"})
		return
	}
	cards, err := list(req.MobileNo)
	if err != nil {
		fail(c, err)
		return
	}
	if len(cards) == 0 {
		c.JSON(emptyStatus, gin.H{"message": emptyMessage})
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *Handlers) FetchFriends(c *gin.Context) {
	h.cardList(c, func(m string) ([]domain.ProfileCard, error) {
		return h.Store.Friends(c.Request.Context(), m)
	}, http.StatusNotFound, "No friends found")
}

func (h *Handlers) FetchSentRequests(c *gin.Context) {
	h.cardList(c, func(m string) ([]domain.ProfileCard, error) {
		return h.Store.SentRequests(c.Request.Context(), m)
	}, http.StatusOK, "No sent requests found")
}

func (h *Handlers) FetchNewRequests(c *gin.Context) {
	h.cardList(c, func(m string) ([]domain.ProfileCard, error) {
		return h.Store.NewRequests(c.Request.Context(), m)
	}, http.StatusOK, "No new requests found")
}

func (h *Handlers) FetchBlockedUsers(c *gin.Context) {
	h.cardList(c, func(m string) ([]domain.ProfileCard, error) {
		return h.Store.BlockedUsers(c.Request.Context(), m)
	}, http.StatusOK, "No blocked user found")
}
