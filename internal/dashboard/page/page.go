// Package page builds the dashboard's HTML pages. The pages are opaque view
// collaborators: they render whatever state the router hands them and hold no
// logic of their own.
package page

import (
	"html/template"
	"sort"
	"strings"
)

var tmpl = template.Must(template.New("dashboard").Parse(`
{{define "home"}}<!DOCTYPE html>
<html>
<head><title>KPI Dashboard</title></head>
<body>
<h1>Analyze KPIs</h1>
<nav><a href="/">Home</a> | <a href="/analyze-tag">Analyze Tag</a></nav>
<p>Select a tag to analyze regression KPIs.</p>
</body>
</html>{{end}}

{{define "analyze"}}<!DOCTYPE html>
<html>
<head><title>Analyze Tag - KPI Dashboard</title></head>
<body>
<h1>Analyze KPIs</h1>
<nav><a href="/">Home</a> | <a href="/analyze-tag">Analyze Tag</a></nav>
<dl>
{{range .States}}<dt>{{.Key}}</dt><dd>{{.Value}}</dd>
{{end}}</dl>
</body>
</html>{{end}}

{{define "notfound"}}<!DOCTYPE html>
<html>
<head><title>Not Found - KPI Dashboard</title></head>
<body>
<h1>Page not found</h1>
<p>The page you requested does not exist.</p>
<p><a href="/">Back to the dashboard</a></p>
</body>
</html>{{end}}

{{define "login"}}<!DOCTYPE html>
<html>
<head><title>Sign in - KPI Dashboard</title></head>
<body>
<h1>Sign in</h1>
<p>Authentication is required to view the dashboard.</p>
{{if .AuthURL}}<p><a href="{{.AuthURL}}">Continue to sign in</a></p>{{end}}
</body>
</html>{{end}}

{{define "redirect"}}<!DOCTYPE html>
<html>
<head>
<title>Redirecting…</title>
<meta http-equiv="refresh" content="0;url={{.URL}}">
</head>
<body><p>Redirecting to <a href="{{.URL}}">{{.URL}}</a>…</p></body>
</html>{{end}}
`))

type stateEntry struct {
	Key   string
	Value any
}

func render(name string, data any) string {
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "<!DOCTYPE html><html><body><p>render error</p></body></html>"
	}
	return b.String()
}

// Home is the default KPI analysis page.
func Home() string {
	return render("home", nil)
}

// Analyze renders the KPI analysis page seeded with the query-derived state.
// Entries are sorted by key so identical state always renders identically.
func Analyze(states map[string]any) string {
	entries := make([]stateEntry, 0, len(states))
	for k, v := range states {
		entries = append(entries, stateEntry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return render("analyze", struct{ States []stateEntry }{entries})
}

// NotFound is the generic fallback for unmatched paths.
func NotFound() string {
	return render("notfound", nil)
}

// Login is shown to visitors with no auth cookies.
func Login(authURL string) string {
	return render("login", struct{ AuthURL string }{authURL})
}

// Redirect renders a client-side redirect to the given URL.
func Redirect(url string) string {
	return render("redirect", struct{ URL string }{url})
}
