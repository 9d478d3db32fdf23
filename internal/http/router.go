package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/repo"
	"github.com/geocoder89/userhub/internal/service"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires the user endpoints over store. prom may be nil, which disables metrics.
func NewRouter(log *slog.Logger, cfg config.Config, store repo.Store, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.OTelServiceName))
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))

	if cfg.RateLimitPerMinute > 0 {
		limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		r.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	}

	// health
	h := handlers.NewHealthHandler(store.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if prom != nil {
		r.GET("/metrics", gin.WrapH(prom.Handler()))
	}

	r.GET("/swagger", handlers.SwaggerUI)
	r.GET(handlers.OpenAPIPath, handlers.OpenAPISpec)

	// Routes
	usersHandler := handlers.NewUsersHandler(service.NewUsersService(store))

	users := r.Group("/users")
	users.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	users.Use(middlewares.RequireJSON())
	{
		users.POST("", usersHandler.CreateUser)
		users.GET("/:id", usersHandler.GetUserByID)
		users.PATCH("/:id", usersHandler.UpdateUser)
		users.DELETE("/:id", usersHandler.DeleteUser)
	}

	return r
}
