package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkalra/peercall/internal/sms"
)

// SendSMS generates a verification code, parks it in Redis with a TTL
// and hands it to the sender. The code also rides the response so the
// flow works without a live gateway.
func (h *Handlers) SendSMS(c *gin.Context) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mobileNo is required"})
		return
	}
	if !h.smsLimiter.Allow(req.MobileNo) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many codes requested, try again later"})
		return
	}
	code := sms.Code()
	if err := h.Presence.StoreCode(c.Request.Context(), req.MobileNo, code); err != nil {
		fail(c, err)
		return
	}
	if err := h.Sender.Send(c.Request.Context(), req.MobileNo, "your verification code is "+code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send sms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("SMS sent to %s", req.MobileNo),
		"code":    code,
	})
}

// VerifySMS burns a pending code; a wrong or expired code just reports
// success=false.
func (h *Handlers) VerifySMS(c *gin.Context) {
	var req struct {
		MobileNo string `json:"mobileNo" binding:"required"`
		Code     string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mobileNo and code are required"})
		return
	}
	ok, err := h.Presence.ConsumeCode(c.Request.Context(), req.MobileNo, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}
