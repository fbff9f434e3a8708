package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gramly/config"
	"gramly/handlers"
	"gramly/middleware"
)

func SetupRouter(h *handlers.Handler, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public auth routes, rate limited per IP
	limiter := middleware.NewIPRateLimiter(20, time.Minute)
	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimit(limiter))
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/google", h.GoogleAuth)
	auth.GET("/google/url", h.GoogleAuthURL)
	auth.GET("/google/callback", h.GoogleCallback)

	// Public read of the global feed
	router.GET("/api/posts", h.GetPosts)

	// Everything mutating requires a resolvable session
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))
	protected.GET("/auth/currentuser", h.CurrentUser)
	protected.POST("/posts/userposts", h.GetUserPosts)
	protected.POST("/posts/create", h.CreatePost)
	protected.POST("/posts/like", h.LikePost)
	protected.POST("/posts/follow", h.FollowUser)
	protected.POST("/posts/comment", h.CommentPost)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
