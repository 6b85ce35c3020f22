package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/common"
	"github.com/suPer8Hu/serene-backend/internal/mood"
)

type moodReq struct {
	MoodLevel int     `json:"mood_level" binding:"required"`
	MoodEmoji string  `json:"mood_emoji"`
	Notes     *string `json:"notes"`
}

func (h *Handler) CreateMood(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req moodReq
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.Mood.Create(c.Request.Context(), uid, mood.CreateInput{
		Level: req.MoodLevel,
		Emoji: req.MoodEmoji,
		Notes: req.Notes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, entry)
}

// MoodHistory serves both GET /mood and GET /mood/history.
func (h *Handler) MoodHistory(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", mood.DefaultDays)
	if !ok {
		return
	}
	entries, err := h.Mood.History(c.Request.Context(), uid, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, entries)
}

func (h *Handler) MoodAnalytics(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", mood.DefaultDays)
	if !ok {
		return
	}
	stats, err := h.Mood.Analytics(c.Request.Context(), uid, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, stats)
}

func (h *Handler) DeleteMood(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Mood.Delete(c.Request.Context(), uid, id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "Mood entry deleted")
}
