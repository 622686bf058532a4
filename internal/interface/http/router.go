package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	api := router.Group("/api/v1")
	api.GET("/healthz", handler.Health)

	public := api.Group("/auth")
	{
		public.POST("/register", handler.Register)
		public.POST("/login", handler.Login)
		public.POST("/refresh", handler.Refresh)
		public.GET("/google/login", handler.GoogleLogin)
		public.GET("/google/callback", handler.GoogleCallback)
	}

	protected := api.Group("", authMiddleware(handler.authSvc))
	{
		protected.POST("/auth/logout", handler.Logout)
		protected.GET("/auth/profile", handler.Profile)
		protected.PATCH("/auth/profile", handler.UpdateProfile)

		limited := protected.Group("", rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
		limited.POST("/analyses", handler.Analyze)
		limited.POST("/comparisons", handler.Compare)

		protected.GET("/history", handler.ListHistory)
		protected.DELETE("/history", handler.ClearHistory)
		protected.GET("/history/:id", handler.GetHistory)
		protected.DELETE("/history/:id", handler.DeleteHistory)
		protected.GET("/history/:id/export", handler.ExportHistory)
		protected.GET("/history/:id/image", handler.HistoryImage)
		protected.GET("/history/:id/share", handler.ShareHistory)
		protected.POST("/exports", handler.ExportResult)

		protected.GET("/preferences", handler.GetPreferences)
		protected.PATCH("/preferences", handler.UpdatePreferences)
		protected.GET("/preferences/theme", handler.GetTheme)
		protected.PUT("/preferences/theme", handler.SetTheme)
		protected.POST("/preferences/theme/toggle", handler.ToggleTheme)

		protected.GET("/bookmarks", handler.ListBookmarks)
		protected.PUT("/bookmarks/:id", handler.PutBookmark)
		protected.DELETE("/bookmarks/:id", handler.DeleteBookmark)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
