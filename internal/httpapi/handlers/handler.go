package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/suPer8Hu/serene-backend/internal/account"
	"github.com/suPer8Hu/serene-backend/internal/chat"
	"github.com/suPer8Hu/serene-backend/internal/common"
	"github.com/suPer8Hu/serene-backend/internal/goals"
	"github.com/suPer8Hu/serene-backend/internal/httpapi/middleware"
	"github.com/suPer8Hu/serene-backend/internal/journal"
	"github.com/suPer8Hu/serene-backend/internal/mood"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Log      *zap.Logger
	Accounts *account.Service
	Chat     *chat.Service
	Mood     *mood.Service
	Journal  *journal.Service
	Goals    *goals.Service
	// Ready checks the database for /health; nil skips the check.
	Ready func(ctx context.Context) error
}

// validation errors surface to the client as 400 with their own message
var validationErrs = []error{
	account.ErrNameRequired,
	account.ErrIdentifierRequired,
	chat.ErrEmptyText,
	chat.ErrEmptyTitle,
	chat.ErrTitleTooLong,
	chat.ErrQueryTooShort,
	mood.ErrInvalidLevel,
	journal.ErrEmptyContent,
	journal.ErrTitleTooLong,
	journal.ErrInvalidMood,
	goals.ErrEmptyTitle,
	goals.ErrTitleTooLong,
	goals.ErrInvalidTarget,
	goals.ErrInvalidProgress,
	goals.ErrInvalidStatus,
	goals.ErrInvalidDates,
}

// fail maps a service error onto the response envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.Fail(c, http.StatusNotFound, common.CodeNotFound, "not found")
		return
	case errors.Is(err, account.ErrUserExists):
		common.Fail(c, http.StatusBadRequest, common.CodeConflict, "user already exists")
		return
	case errors.Is(err, account.ErrInvalidCredentials):
		common.Fail(c, http.StatusUnauthorized, common.CodeUnauthorized, "invalid credentials")
		return
	case errors.Is(err, account.ErrOTPUnavailable):
		common.Fail(c, http.StatusServiceUnavailable, common.CodeUnavailable, err.Error())
		return
	}
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			common.Fail(c, http.StatusBadRequest, common.CodeValidation, v.Error())
			return
		}
	}

	_ = c.Error(err)
	h.Log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Error(err),
	)
	common.Fail(c, http.StatusInternalServerError, common.CodeInternal, "internal error")
}

// bindJSON decodes the body into dst and writes the 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, describe(verrs))
		return false
	}
	common.Fail(c, http.StatusBadRequest, common.CodeInvalidJSON, "invalid json")
	return false
}

func describe(verrs validator.ValidationErrors) string {
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	default:
		return fe.Field() + " is invalid"
	}
}

// currentUser reads the authenticated id; AuthRequired guarantees it on protected routes.
func currentUser(c *gin.Context) (string, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, common.CodeUnauthorized, "unauthorized")
	}
	return uid, ok
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt returns def when the parameter is absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid "+name)
		return 0, false
	}
	return n, true
}

func queryBool(c *gin.Context, name string, def bool) (bool, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return def, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, "invalid "+name)
		return false, false
	}
	return b, true
}

func message(c *gin.Context, msg string) {
	common.OK(c, gin.H{"message": msg})
}
