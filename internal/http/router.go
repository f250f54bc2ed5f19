package http

import (
	"spot_difference/internal/http/handlers"
	"spot_difference/internal/http/middleware"
	"spot_difference/internal/metrics"
	"spot_difference/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig - то, что роутеру нужно кроме обработчиков
type RouterConfig struct {
	AdminUsername string
	AllowedOrigin string
	RateLimiter   *middleware.RateLimiter
	Metrics       *metrics.Metrics
}

// NewRouter собирает gin с общими middleware
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(cfg.Metrics),
		middleware.CORS(cfg.AllowedOrigin),
	)
	return r
}

// RegisterRoutes подключает API игры
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, hub *ws.Hub, cfg RouterConfig) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/game", ws.HandleWS(hub, cfg.AllowedOrigin))

	api := r.Group("/api")
	api.Use(cfg.RateLimiter.Middleware())

	api.GET("/health", h.Health)
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	api.GET("/game", h.GetGame)
	api.GET("/game/sets", h.GetSets)
	api.GET("/leaderboard", h.GetLeaderboard)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	authed.POST("/game/start", h.StartGame)
	authed.POST("/game/click", h.Click)
	authed.GET("/game/session", h.GetSession)
	authed.DELETE("/game/session", h.LeaveSession)
	authed.POST("/score", h.SubmitScore)

	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnly(cfg.AdminUsername))
	admin.PUT("/catalog/:difficulty", h.UpsertCatalog)
}
