package goals

import (
	"math"
	"time"

	"github.com/suPer8Hu/serene-backend/internal/models"
)

// Progress is current/target as a percentage capped at 100, and 0 when the
// target is not positive.
func Progress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := math.Min(current/target*100, 100)
	if p < 0 {
		return 0
	}
	return math.Round(p*100) / 100
}

// settle derives status from the threshold rule. completed_at is stamped on
// the transition into completed and cleared when progress falls back.
func settle(g *models.Goal, now time.Time) {
	if g.TargetValue > 0 && g.CurrentValue >= g.TargetValue {
		if g.Status != models.GoalCompleted || g.CompletedAt == nil {
			g.CompletedAt = &now
		}
		g.Status = models.GoalCompleted
	} else {
		g.Status = models.GoalActive
		g.CompletedAt = nil
	}
	g.ProgressPercentage = Progress(g.CurrentValue, g.TargetValue)
}
