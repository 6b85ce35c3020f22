package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/common"
	"github.com/suPer8Hu/serene-backend/internal/journal"
)

type journalReq struct {
	Title     string `json:"title"`
	Content   string `json:"content" binding:"required"`
	MoodLevel *int   `json:"mood_level"`
}

func (r journalReq) input() journal.Input {
	return journal.Input{Title: r.Title, Content: r.Content, MoodLevel: r.MoodLevel}
}

func (h *Handler) CreateJournal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req journalReq
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.Journal.Create(c.Request.Context(), uid, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, entry)
}

func (h *Handler) ListJournal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}
	entries, err := h.Journal.List(c.Request.Context(), uid, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, entries)
}

func (h *Handler) GetJournal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.Journal.Get(c.Request.Context(), uid, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, entry)
}

func (h *Handler) UpdateJournal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req journalReq
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.Journal.Update(c.Request.Context(), uid, id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, entry)
}

func (h *Handler) DeleteJournal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Journal.Delete(c.Request.Context(), uid, id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "Journal entry deleted")
}
