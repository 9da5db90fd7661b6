package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/cache"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/geocoder89/bloghub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, store cache.Cache, cfg config.Config) (*gin.Engine, error) {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// own registry so tests can build routers repeatedly
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("bloghub"))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	postsRepo := postgres.NewPostsRepo(pool, prom)
	commentsRepo := postgres.NewCommentsRepo(pool, prom)

	// token codec + per-request verification filter
	jwtManager, err := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	if err != nil {
		return nil, err
	}

	authMw := middlewares.NewAuthMiddleware(jwtManager, usersRepo, log)
	r.Use(authMw.Authenticate())

	// services
	userService := service.NewUserService(usersRepo, jwtManager, cfg.AdminSignupToken, log)
	postService := service.NewPostService(postsRepo, commentsRepo, store, prom, log)
	commentService := service.NewCommentService(commentsRepo, postsRepo, log)

	// handlers
	authHandler := handlers.NewAuthHandler(userService)
	postsHandler := handlers.NewPostsHandler(postService)
	commentsHandler := handlers.NewCommentsHandler(commentService)

	// rate limiting: credentials endpoints by IP, writes by user
	authLimiter := middlewares.NewRateLimiter(cfg.RateLimitAuth, cfg.RateLimitWindow)
	writeLimiter := middlewares.NewRateLimiter(cfg.RateLimitWrites, cfg.RateLimitWindow)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authRoutes.POST("/signup", authHandler.Signup)
	authRoutes.POST("/login", authHandler.Login)

	// public reads
	api.GET("/post", postsHandler.ListPosts)
	api.GET("/post/:id", postsHandler.GetPostByID)

	// authenticated writes
	writes := api.Group("")
	writes.Use(authMw.RequireUser())
	writes.Use(writeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))

	writes.POST("/post", postsHandler.CreatePost)
	writes.PUT("/post/:id", postsHandler.UpdatePost)
	writes.DELETE("/post/:id", postsHandler.DeletePost)

	writes.POST("/:postId/comment", commentsHandler.CreateComment)
	writes.PUT("/:postId/comment/:commentId", commentsHandler.UpdateComment)
	writes.DELETE("/:postId/comment/:commentId", commentsHandler.DeleteComment)

	return r, nil
}
