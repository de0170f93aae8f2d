package routes

import (
	"net/http"
	"slices"
	"time"

	"blogd/handlers"
	"blogd/middleware"
	"blogd/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Options carries everything the router needs besides the handlers.
type Options struct {
	Issuer      *middleware.TokenIssuer
	Metrics     *middleware.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

func SetupRouter(h *handlers.Handler, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(telemetry.ServiceName))
	router.Use(middleware.RequestID())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Handler())
	}
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.GET("/health", h.Health.Check)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// The blog client calls the root paths; /api mirrors them.
	register(&router.RouterGroup, h, opts.Issuer)
	register(router.Group("/api"), h, opts.Issuer)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	return router
}

func register(r *gin.RouterGroup, h *handlers.Handler, issuer *middleware.TokenIssuer) {
	// Auth
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	// Profiles
	r.GET("/user/:userId", h.User.GetUser)
	r.GET("/me", middleware.JWTAuth(issuer), h.User.GetMe)

	// Posts
	r.GET("/posts", h.Post.GetPosts)
	r.GET("/search", h.Post.Search)
	r.GET("/post/:postId", h.Post.GetPost)
	r.POST("/user/:userId/create-post", h.Post.CreatePost)
	r.PUT("/user/:userId/update-post/:postId", h.Post.UpdatePost)
	r.DELETE("/user/:userId/delete-post/:postId", h.Post.DeletePost)

	// Engagement
	r.POST("/post/:postId/add-comment", h.Engagement.AddComment)
	r.POST("/post/:postId/add-reply", h.Engagement.AddReply)
	r.POST("/post/:postId/toggle-like", h.Engagement.ToggleLike)
	r.POST("/post/:postId/toggle-dislike", h.Engagement.ToggleDislike)
	r.POST("/post/:postId/add-view", h.Engagement.AddView)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
