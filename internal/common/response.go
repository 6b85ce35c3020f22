package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Business codes carried in the envelope next to the HTTP status.
const (
	CodeOK               = 0
	CodeInvalidJSON      = 10001
	CodeValidation       = 10002
	CodeConflict         = 10003
	CodeUnauthorized     = 40101
	CodeRouteNotFound    = 40400
	CodeNotFound         = 40401
	CodeMethodNotAllowed = 40500
	CodeInternal         = 50001
	CodeUnavailable      = 50301
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    CodeOK,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

// Abort is Fail for middleware: it also stops the handler chain.
func Abort(c *gin.Context, httpStatus int, code int, msg string) {
	Fail(c, httpStatus, code, msg)
	c.Abort()
}
