package taskapp

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kpitools/webapps/internal/core/ports"
	"github.com/kpitools/webapps/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	auth ports.AuthService,
	tasks ports.TaskService,
	sessions ports.SessionStore,
	db *mongo.Database,
	rdb *redis.Client,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = newRenderer()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("kpitools_taskapp"))

	h := NewHandler(auth, tasks, sessions, log)

	// --- Auth routes (no identity required) ---
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)

	// --- Task routes ---
	guarded := e.Group("", RequireIdentity(sessions))
	guarded.GET("/", h.Index)
	guarded.POST("/add", h.AddTask)
	guarded.POST("/update/:task_id", h.UpdateTask)
	guarded.POST("/delete/:task_id", h.DeleteTask)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
