package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/serene-backend/internal/common"
	"github.com/suPer8Hu/serene-backend/internal/httpapi/handlers"
	"github.com/suPer8Hu/serene-backend/internal/httpapi/middleware"
	"go.uber.org/zap"
)

type Options struct {
	JWTSecret        string
	CORSAllowOrigins []string
	Logger           *zap.Logger
}

func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID(), middleware.AccessLog(log), middleware.Recovery(log))
	r.Use(cors.New(corsConfig(opts.CORSAllowOrigins)))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, common.CodeRouteNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, common.CodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/ping", h.Ping)

	// auth
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/otp", h.RequestOTP)

	authed := r.Group("/")
	authed.Use(middleware.AuthRequired(opts.JWTSecret))
	authed.GET("/auth/me", h.Me)
	authed.DELETE("/auth/delete-account", h.DeleteAccount)

	// conversations
	authed.GET("/conversations", h.ListConversations)
	authed.POST("/conversations", h.CreateConversation)
	authed.GET("/conversations/:id", h.ConversationMessages)
	authed.GET("/conversations/:id/messages", h.ConversationMessages)
	authed.PATCH("/conversations/:id", h.RenameConversation)
	authed.POST("/conversations/:id/archive", h.ArchiveConversation)
	authed.DELETE("/conversations/:id", h.DeleteConversation)
	authed.DELETE("/conversations/:id/messages/:message_id", h.DeleteMessage)
	authed.GET("/search", h.Search)
	authed.POST("/predict", h.Predict)

	// mood
	authed.POST("/mood", h.CreateMood)
	authed.GET("/mood", h.MoodHistory)
	authed.GET("/mood/history", h.MoodHistory)
	authed.GET("/mood/analytics", h.MoodAnalytics)
	authed.DELETE("/mood/:id", h.DeleteMood)

	// journal
	authed.POST("/journal", h.CreateJournal)
	authed.GET("/journal", h.ListJournal)
	authed.GET("/journal/:id", h.GetJournal)
	authed.PUT("/journal/:id", h.UpdateJournal)
	authed.DELETE("/journal/:id", h.DeleteJournal)

	// goals
	authed.POST("/goals", h.CreateGoal)
	authed.GET("/goals", h.ListGoals)
	authed.GET("/goals/statistics", h.GoalStatistics)
	authed.PUT("/goals/:id", h.UpdateGoal)
	authed.PUT("/goals/:id/progress", h.UpdateGoalProgress)
	authed.DELETE("/goals/:id", h.DeleteGoal)

	return r
}

// corsConfig allows any origin without credentials for "*", otherwise the
// listed origins with credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
