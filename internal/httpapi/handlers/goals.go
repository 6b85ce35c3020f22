package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/common"
	"github.com/suPer8Hu/serene-backend/internal/goals"
)

const dateLayout = "2006-01-02"

// parseDate reads an optional YYYY-MM-DD value.
func parseDate(c *gin.Context, field string, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeValidation, field+" must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

type createGoalReq struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit"`
	StartDate   *string `json:"start_date"`
	TargetDate  *string `json:"target_date"`
}

func (h *Handler) CreateGoal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req createGoalReq
	if !bindJSON(c, &req) {
		return
	}
	start, ok := parseDate(c, "start_date", req.StartDate)
	if !ok {
		return
	}
	target, ok := parseDate(c, "target_date", req.TargetDate)
	if !ok {
		return
	}
	g, err := h.Goals.Create(c.Request.Context(), uid, goals.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		StartDate:   start,
		TargetDate:  target,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, g)
}

func (h *Handler) ListGoals(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	status, err := goals.ParseStatus(c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.Goals.List(c.Request.Context(), uid, status)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, list)
}

type updateGoalReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	TargetValue *float64 `json:"target_value"`
	Unit        *string  `json:"unit"`
	TargetDate  *string  `json:"target_date"`
}

func (h *Handler) UpdateGoal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateGoalReq
	if !bindJSON(c, &req) {
		return
	}
	target, ok := parseDate(c, "target_date", req.TargetDate)
	if !ok {
		return
	}
	g, err := h.Goals.Update(c.Request.Context(), uid, id, goals.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		TargetDate:  target,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, g)
}

type progressReq struct {
	CurrentValue *float64 `json:"current_value" binding:"required"`
}

func (h *Handler) UpdateGoalProgress(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req progressReq
	if !bindJSON(c, &req) {
		return
	}
	g, err := h.Goals.UpdateProgress(c.Request.Context(), uid, id, *req.CurrentValue)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, g)
}

func (h *Handler) DeleteGoal(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Goals.Delete(c.Request.Context(), uid, id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, "Goal deleted")
}

func (h *Handler) GoalStatistics(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.Goals.Statistics(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, stats)
}
