package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/common"
)

type predictReq struct {
	Text           string `json:"text" binding:"required"`
	ConversationID uint64 `json:"conversation_id"`
}

// Predict runs one chat turn. A missing conversation_id starts a new conversation.
func (h *Handler) Predict(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req predictReq
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.Chat.Reply(c.Request.Context(), uid, req.ConversationID, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, reply)
}
