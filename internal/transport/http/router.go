package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iamasit07/five-in-a-row/backend/internal/transport/http/middleware"
	"github.com/iamasit07/five-in-a-row/backend/pkg/auth"
)

type Handlers struct {
	Games   *GameHandler
	History *HistoryHandler
	Watch   *WatchHandler
	Tokens  *auth.TokenIssuer
}

// RegisterRoutes mounts the REST API on router.
func RegisterRoutes(router gin.IRouter, h Handlers) {
	api := router.Group("/api")

	api.POST("/games", h.Games.CreateGame)
	api.GET("/games", h.Watch.GetLiveGames)
	api.GET("/games/:id", h.Games.GetGame)
	api.GET("/history", h.History.GetHistory)
	api.GET("/history/:id", h.History.GetGameDetails)

	// Player token required
	protected := api.Group("/games/:id")
	protected.Use(middleware.PlayerAuthMiddleware(h.Tokens))
	{
		protected.POST("/moves", h.Games.MakeMove)
		protected.POST("/restart", h.Games.Restart)
		protected.DELETE("", h.Games.DeleteGame)
	}
}
