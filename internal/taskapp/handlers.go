package taskapp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
	"github.com/kpitools/webapps/internal/metrics"
)

// Handler serves the task manager's HTML pages and form posts.
type Handler struct {
	auth     ports.AuthService
	tasks    ports.TaskService
	sessions ports.SessionStore
	log      zerolog.Logger
}

func NewHandler(auth ports.AuthService, tasks ports.TaskService, sessions ports.SessionStore, log zerolog.Logger) *Handler {
	return &Handler{auth: auth, tasks: tasks, sessions: sessions, log: log}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type addTaskForm struct {
	Name string `form:"name" validate:"required,max=120,alphaspace"`
}

type updateTaskForm struct {
	Name   string `form:"name" validate:"required,max=120,alphaspace"`
	Status string `form:"status" validate:"required,oneof='in progress' completed failed"`
}

// LoginPage renders the login form. Already-authenticated visitors are sent
// straight to their task list.
func (h *Handler) LoginPage(c echo.Context) error {
	if h.hasSession(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	page := loginPage{Next: c.QueryParam("next")}
	if c.QueryParam("logged_out") == "1" {
		page.Flashes = append(page.Flashes, ports.Flash{Category: "info", Message: "You have been logged out."})
	}
	return c.Render(http.StatusOK, "login", page)
}

// Login verifies the submitted credentials and establishes a server-side
// session. Failures re-render the form with one generic message that never
// says which field was wrong.
func (h *Handler) Login(c echo.Context) error {
	if h.hasSession(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	var form loginForm
	failed := func() error {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		page := loginPage{
			Error: "Login unsuccessful. Please check username and password.",
			Next:  c.QueryParam("next"),
		}
		return c.Render(http.StatusUnauthorized, "login", page)
	}

	if err := c.Bind(&form); err != nil {
		return failed()
	}
	if err := c.Validate(form); err != nil {
		return failed()
	}

	user, err := h.auth.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return failed()
		}
		return err
	}

	sessionID, err := h.sessions.Create(c.Request().Context(), ports.SessionIdentity{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	h.addFlash(c, sessionID, "success", "Login successful!")

	return c.Redirect(http.StatusSeeOther, safeNext(c.QueryParam("next")))
}

// Logout tears the session down and clears the cookie. Logging out twice in a
// row is harmless: with no session left there is simply nothing to clear.
func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(c.Request().Context(), cookie.Value); err != nil {
			h.log.Warn().Err(err).Msg("session delete failed")
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.Redirect(http.StatusSeeOther, "/login?logged_out=1")
}

// Index lists the actor's tasks, newest first, honoring the status_filter
// query parameter.
func (h *Handler) Index(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	result, err := h.tasks.List(c.Request().Context(), actor, c.QueryParam("status_filter"))
	if err != nil {
		return err
	}

	page := tasksPage{
		Username:      actor.Username,
		Tasks:         result.Tasks,
		CurrentFilter: result.Filter,
	}
	if sessionID := ctxSessionID(c); sessionID != "" {
		flashes, err := h.sessions.PopFlashes(c.Request().Context(), sessionID)
		if err != nil {
			h.log.Warn().Err(err).Msg("flash read failed")
		}
		page.Flashes = flashes
	}
	if result.Warning != "" {
		page.Flashes = append(page.Flashes, ports.Flash{Category: "warning", Message: result.Warning})
	}

	return c.Render(http.StatusOK, "tasks", page)
}

// AddTask creates a new task from the form post and redirects back to the
// list, carrying the outcome as a flash message.
func (h *Handler) AddTask(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	sessionID := ctxSessionID(c)

	var form addTaskForm
	if err := c.Bind(&form); err != nil {
		h.addFlash(c, sessionID, "danger", "Error adding task.")
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if err := c.Validate(form); err != nil {
		h.flashValidation(c, sessionID, err)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	if _, err := h.tasks.Create(c.Request().Context(), actor, form.Name); err != nil {
		if ve, ok := domain.IsValidation(err); ok {
			h.flashValidation(c, sessionID, ve)
		} else {
			h.addFlash(c, sessionID, "danger", "Error adding task.")
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}

	h.addFlash(c, sessionID, "success", "Task added successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

// UpdateTask overwrites a task's name and status.
func (h *Handler) UpdateTask(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	sessionID := ctxSessionID(c)
	taskID := c.Param("task_id")

	var form updateTaskForm
	if err := c.Bind(&form); err != nil {
		h.addFlash(c, sessionID, "danger", "Error updating task.")
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if err := c.Validate(form); err != nil {
		h.flashValidation(c, sessionID, err)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	if _, err := h.tasks.Update(c.Request().Context(), actor, taskID, form.Name, form.Status); err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "task not found")
		case errors.Is(err, domain.ErrForbidden):
			h.addFlash(c, sessionID, "danger", "You do not have permission to edit this task.")
		default:
			if ve, ok := domain.IsValidation(err); ok {
				h.flashValidation(c, sessionID, ve)
			} else {
				h.addFlash(c, sessionID, "danger", "Error updating task.")
			}
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}

	h.addFlash(c, sessionID, "success", "Task updated successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

// DeleteTask removes a completed task permanently.
func (h *Handler) DeleteTask(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	sessionID := ctxSessionID(c)
	taskID := c.Param("task_id")

	if err := h.tasks.Delete(c.Request().Context(), actor, taskID); err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "task not found")
		case errors.Is(err, domain.ErrForbidden):
			h.addFlash(c, sessionID, "danger", "You do not have permission to delete this task.")
		case errors.Is(err, domain.ErrInvalidState):
			h.addFlash(c, sessionID, "warning", `Task must be marked as "completed" before deletion.`)
		default:
			h.addFlash(c, sessionID, "danger", "Error deleting task.")
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}

	h.addFlash(c, sessionID, "success", "Task deleted successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) hasSession(c echo.Context) bool {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = h.sessions.Get(c.Request().Context(), cookie.Value)
	return err == nil
}

// addFlash stores a flash for the next page render. A failed write only costs
// the message, never the request.
func (h *Handler) addFlash(c echo.Context, sessionID, category, message string) {
	if sessionID == "" {
		return
	}
	if err := h.sessions.AddFlash(c.Request().Context(), sessionID, ports.Flash{Category: category, Message: message}); err != nil {
		h.log.Warn().Err(err).Msg("flash write failed")
	}
}

// flashValidation turns an itemized ValidationError into one flash per field.
func (h *Handler) flashValidation(c echo.Context, sessionID string, err error) {
	ve, ok := domain.IsValidation(err)
	if !ok {
		h.addFlash(c, sessionID, "danger", "Invalid input.")
		return
	}
	for _, fe := range ve.Fields {
		h.addFlash(c, sessionID, "danger", "Error in "+fieldLabel(fe.Field)+": "+fe.Message)
	}
}

func fieldLabel(field string) string {
	switch field {
	case "name":
		return "Task Name"
	case "status":
		return "Status"
	}
	return field
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
