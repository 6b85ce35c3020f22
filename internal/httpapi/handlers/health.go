package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/common"
	"go.uber.org/zap"
)

func (h *Handler) Root(c *gin.Context) {
	common.OK(c, gin.H{"msg": "Therapeutic chatbot API up and running!"})
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, "pong")
}

func (h *Handler) Health(c *gin.Context) {
	if h.Ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ready(ctx); err != nil {
			h.Log.Warn("health check failed", zap.Error(err))
			common.Fail(c, http.StatusServiceUnavailable, common.CodeUnavailable, "database unavailable")
			return
		}
	}
	common.OK(c, gin.H{"status": "healthy"})
}
