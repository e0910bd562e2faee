package taskapp

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
)

// The pages are deliberately plain: the interesting behaviour lives in the
// handlers and services, the templates only render what they are handed.
const pageTemplates = `
{{define "login"}}<!DOCTYPE html>
<html>
<head><title>Login - Task Manager</title></head>
<body>
<h1>Task Manager</h1>
{{range .Flashes}}<div class="flash flash-{{.Category}}">{{.Message}}</div>{{end}}
{{if .Error}}<div class="flash flash-danger">{{.Error}}</div>{{end}}
<form method="post" action="/login{{if .Next}}?next={{.Next}}{{end}}">
  <label>Username <input type="text" name="username"></label>
  <label>Password <input type="password" name="password"></label>
  <button type="submit">Login</button>
</form>
</body>
</html>{{end}}

{{define "tasks"}}<!DOCTYPE html>
<html>
<head><title>Your Tasks - Task Manager</title></head>
<body>
<h1>Your Tasks</h1>
<p>Signed in as {{.Username}} | <a href="/logout">Logout</a></p>
{{range .Flashes}}<div class="flash flash-{{.Category}}">{{.Message}}</div>{{end}}
<form method="get" action="/">
  <select name="status_filter">
    <option value="all"{{if eq .CurrentFilter "all"}} selected{{end}}>All</option>
    <option value="in progress"{{if eq .CurrentFilter "in progress"}} selected{{end}}>In Progress</option>
    <option value="completed"{{if eq .CurrentFilter "completed"}} selected{{end}}>Completed</option>
    <option value="failed"{{if eq .CurrentFilter "failed"}} selected{{end}}>Failed</option>
  </select>
  <button type="submit">Filter</button>
</form>
<form method="post" action="/add">
  <input type="text" name="name" placeholder="Task Name">
  <button type="submit">Add Task</button>
</form>
<ul>
{{range .Tasks}}
  <li>
    <form method="post" action="/update/{{.ID}}">
      <input type="text" name="name" value="{{.Name}}">
      <select name="status">
        <option value="in progress"{{if eq (printf "%s" .Status) "in progress"}} selected{{end}}>In Progress</option>
        <option value="completed"{{if eq (printf "%s" .Status) "completed"}} selected{{end}}>Completed</option>
        <option value="failed"{{if eq (printf "%s" .Status) "failed"}} selected{{end}}>Failed</option>
      </select>
      <button type="submit">Update Task</button>
    </form>
    <form method="post" action="/delete/{{.ID}}">
      <button type="submit">Delete</button>
    </form>
    <small>{{.CreatedAt.Format "2006-01-02 15:04"}}</small>
  </li>
{{end}}
</ul>
</body>
</html>{{end}}

{{define "error"}}<!DOCTYPE html>
<html>
<head><title>{{.Code}} - Task Manager</title></head>
<body>
<h1>{{.Code}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to your tasks</a></p>
</body>
</html>{{end}}
`

// loginPage is the data handed to the login template.
type loginPage struct {
	Flashes []ports.Flash
	Error   string
	Next    string
}

// tasksPage is the data handed to the tasks template.
type tasksPage struct {
	Username      string
	Tasks         []domain.Task
	CurrentFilter string
	Flashes       []ports.Flash
}

// errorPage is the data handed to the error template.
type errorPage struct {
	Code    int
	Message string
}

// renderer satisfies echo.Renderer over the embedded templates.
type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	return &renderer{templates: template.Must(template.New("taskapp").Parse(pageTemplates))}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
