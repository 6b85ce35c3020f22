package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/account"
	"github.com/suPer8Hu/serene-backend/internal/common"
	"go.uber.org/zap"
)

type signupReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupReq
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.Accounts.Signup(c.Request.Context(), account.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, sess)
}

type loginReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.Accounts.Login(c.Request.Context(), account.LoginInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, sess)
}

type otpReq struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) RequestOTP(c *gin.Context) {
	var req otpReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Accounts.RequestOTP(c.Request.Context(), req.Email, req.Phone); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "If the account exists, a code has been sent")
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	me, err := h.Accounts.Me(c.Request.Context(), uid)
	if err != nil {
		// a valid token for a deleted user is no longer a valid session
		h.Log.Debug("me lookup failed", zap.String("user_id", uid), zap.Error(err))
		common.Fail(c, http.StatusUnauthorized, common.CodeUnauthorized, "invalid authentication")
		return
	}
	common.OK(c, me)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Accounts.DeleteAccount(c.Request.Context(), uid); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "Account deleted successfully")
}
