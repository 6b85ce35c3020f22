package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/common"
)

type createConversationReq struct {
	Title string `json:"title"`
}

func (h *Handler) CreateConversation(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req createConversationReq
	// an empty body is allowed
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	conv, err := h.Chat.CreateConversation(c.Request.Context(), uid, req.Title)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, conv)
}

func (h *Handler) ListConversations(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	includeArchived, ok := queryBool(c, "include_archived", false)
	if !ok {
		return
	}
	list, err := h.Chat.ListConversations(c.Request.Context(), uid, includeArchived)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) ConversationMessages(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	msgs, err := h.Chat.Messages(c.Request.Context(), uid, id, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, msgs)
}

type renameReq struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) RenameConversation(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req renameReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Chat.Rename(c.Request.Context(), uid, id, req.Title); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "Conversation updated")
}

func (h *Handler) ArchiveConversation(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	archive, ok := queryBool(c, "archive", true)
	if !ok {
		return
	}
	if err := h.Chat.Archive(c.Request.Context(), uid, id, archive); err != nil {
		h.fail(c, err)
		return
	}
	if archive {
		message(c, "Conversation archived")
		return
	}
	message(c, "Conversation unarchived")
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Chat.Delete(c.Request.Context(), uid, id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "Conversation deleted")
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	msgID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	if err := h.Chat.DeleteMessage(c.Request.Context(), uid, id, msgID); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "Message deleted")
}

func (h *Handler) Search(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	results, err := h.Chat.Search(c.Request.Context(), uid, c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, results)
}
