package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkalra/peercall/internal/auth"
	"github.com/mkalra/peercall/internal/domain"
	"github.com/mkalra/peercall/internal/store"
)

type profileRequest struct {
	MobileNo string   `json:"mobileNo" binding:"required"`
	DOB      string   `json:"DOB"`
	Name     string   `json:"name"`
	Gender   string   `json:"gender"`
	Avatar   string   `json:"avatar"`
	Interest []string `json:"interest"`
}

func (r profileRequest) profile() domain.Profile {
	p := domain.Profile{
		MobileNo: r.MobileNo,
		Name:     r.Name,
		Gender:   r.Gender,
		Avatar:   r.Avatar,
		Interest: r.Interest,
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, r.DOB); err == nil {
			p.DOB = t
			break
		}
	}
	return p
}

// Signup creates the profile and immediately issues a token.
func (h *Handlers) Signup(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []string{"mobileNo is required"}})
		return
	}
	id, err := h.Store.CreateProfile(c.Request.Context(), req.profile())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"success": false, "errors": []string{"mobile number already registered"}})
			return
		}
		fail(c, err)
		return
	}
	token, err := h.Tokens.Sign(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token})
}

// Login is by mobile number alone; possession of the number is proven
// out of band by the SMS code flow.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		MobileNo string `json:"mobileNo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []string{"mobileNo is required"}})
		return
	}
	p, err := h.Store.ProfileByMobile(c.Request.Context(), req.MobileNo)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.Tokens.Sign(p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// UserDetails returns the profile behind the bearer token.
func (h *Handlers) UserDetails(c *gin.Context) {
	p, err := h.Store.ProfileByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p})
}

// SetOnlineUser publishes the caller in the online directory.
func (h *Handlers) SetOnlineUser(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []string{"mobileNo is required"}})
		return
	}
	card := domain.ProfileCard{Name: req.Name, Avatar: req.Avatar, MobileNo: req.MobileNo}
	created, err := h.Presence.SetOnline(c.Request.Context(), card)
	if err != nil {
		fail(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "already existed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// OnlineUserDetails lists everyone in the online directory.
func (h *Handlers) OnlineUserDetails(c *gin.Context) {
	cards, err := h.Presence.OnlineUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

type interestRequest struct {
	MobileNo string `json:"mobileNo" binding:"required"`
	Item     string `json:"item" binding:"required"`
}

func (h *Handlers) AddInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mobileNo and item are required"})
		return
	}
	items, err := h.Store.AddInterest(c.Request.Context(), req.MobileNo, req.Item)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handlers) RemoveInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mobileNo and item are required"})
		return
	}
	items, err := h.Store.RemoveInterest(c.Request.Context(), req.MobileNo, req.Item)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
