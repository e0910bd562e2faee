package dashboard

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/infrastructure/http/handlers"
)

const (
	authTokenCookie = "auth_token"
	usernameCookie  = "username"
)

// Handler serves every dashboard page through the Router.
type Handler struct {
	router *Router
	log    zerolog.Logger
}

func NewPageHandler(router *Router, log zerolog.Logger) *Handler {
	return &Handler{router: router, log: log}
}

// ServePage routes the request and writes the resulting page. On a completed
// external login it sets the auth cookies before sending the browser home.
func (h *Handler) ServePage(c echo.Context) error {
	req := c.Request()
	result := h.router.Route(
		req.Context(),
		req.URL.Path,
		req.URL.RawQuery,
		cookieValue(c, authTokenCookie),
		cookieValue(c, usernameCookie),
	)

	if result.Decision.Kind == domain.DecisionLoginCompleted {
		setAuthCookie(c, authTokenCookie, result.Decision.AuthToken)
		setAuthCookie(c, usernameCookie, result.Decision.Username)
	}

	status := http.StatusOK
	if result.Page.Name == "not_found" {
		status = http.StatusNotFound
	}
	return c.HTML(status, result.Page.HTML)
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setAuthCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// NewServer builds the dashboard's Echo instance: every path funnels through
// the page router, with health and metrics endpoints on the side.
func NewServer(router *Router, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("kpitools_dashboard"))

	// --- Health probes and metrics (outside the auth gate) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Everything else goes through the page router ---
	h := NewPageHandler(router, log)
	e.GET("/*", h.ServePage)
	e.GET("/", h.ServePage)

	return e
}
