package dashboard

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
	"github.com/kpitools/webapps/internal/dashboard/page"
	"github.com/kpitools/webapps/internal/metrics"
)

// Page is a rendered dashboard page.
type Page struct {
	// Name identifies the route for metrics and caching.
	Name string
	HTML string
}

// Result is the outcome of routing one request: the gate's decision plus the
// page to serve when the decision calls for one.
type Result struct {
	Decision domain.Decision
	Page     Page
}

// Router maps request paths to page builders, consulting the auth gate first.
// It is stateless: identical (path, query, cookies) against the same backing
// state always produce the same result.
type Router struct {
	gate  ports.GateService
	cache ports.PageCache
	// loginURL is offered on the login page so visitors can reach the
	// identity provider.
	loginURL string
	log      zerolog.Logger
}

func NewRouter(gate ports.GateService, cache ports.PageCache, loginURL string, log zerolog.Logger) *Router {
	return &Router{gate: gate, cache: cache, loginURL: loginURL, log: log}
}

// Route evaluates one request. The path is normalized by stripping one
// trailing slash; the gate runs before any path dispatch, and any
// non-authorized decision short-circuits to its page without evaluating the
// route table.
func (r *Router) Route(ctx context.Context, path, rawQuery, authToken, username string) Result {
	path = strings.TrimSuffix(path, "/")

	decision := r.gate.Authorize(ctx, ports.AccessRequest{
		Path:      path,
		Code:      callbackCode(rawQuery),
		AuthToken: authToken,
		Username:  username,
	})

	switch decision.Kind {
	case domain.DecisionAuthorized:
		return Result{Decision: decision, Page: r.dispatch(ctx, path, rawQuery)}
	case domain.DecisionLoginRequired:
		metrics.PageRendersTotal.WithLabelValues("login").Inc()
		return Result{Decision: decision, Page: Page{Name: "login", HTML: page.Login(r.loginURL)}}
	case domain.DecisionInvalidToken, domain.DecisionNoRole:
		return Result{Decision: decision, Page: Page{Name: "redirect", HTML: page.Redirect(decision.RedirectURL)}}
	case domain.DecisionLoginCompleted:
		return Result{Decision: decision, Page: Page{Name: "redirect", HTML: page.Redirect("/")}}
	}

	r.log.Error().Str("path", path).Stringer("decision", decision.Kind).Msg("unhandled gate decision")
	return Result{Decision: decision, Page: Page{Name: "not_found", HTML: page.NotFound()}}
}

// dispatch resolves an authorized request against the static route table.
func (r *Router) dispatch(ctx context.Context, path, rawQuery string) Page {
	cacheKey := path
	if rawQuery != "" {
		cacheKey += "?" + rawQuery
	}
	if r.cache != nil {
		if html, ok := r.cache.Get(ctx, cacheKey); ok {
			metrics.PageCacheTotal.WithLabelValues("hit").Inc()
			return Page{Name: pageName(path), HTML: html}
		}
		metrics.PageCacheTotal.WithLabelValues("miss").Inc()
	}

	var p Page
	switch path {
	case "":
		p = Page{Name: "home", HTML: page.Home()}
	case "/analyze-tag":
		p = Page{Name: "analyze", HTML: page.Analyze(parseQueryStates(rawQuery))}
	default:
		p = Page{Name: "not_found", HTML: page.NotFound()}
	}

	metrics.PageRendersTotal.WithLabelValues(p.Name).Inc()
	if r.cache != nil && p.Name != "not_found" {
		r.cache.Set(ctx, cacheKey, p.HTML)
	}
	return p
}

func pageName(path string) string {
	switch path {
	case "":
		return "home"
	case "/analyze-tag":
		return "analyze"
	}
	return "not_found"
}

// parseQueryStates flattens query parameters into the page's initial state,
// coercing the literal strings "True" and "False" to booleans. Only the first
// value of a repeated parameter is kept.
func parseQueryStates(rawQuery string) map[string]any {
	states := make(map[string]any)
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return states
	}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		switch vals[0] {
		case "True":
			states[key] = true
		case "False":
			states[key] = false
		default:
			states[key] = vals[0]
		}
	}
	return states
}

// callbackCode extracts the identity provider's code from the callback query
// string. The provider appends it as the last key=value pair.
func callbackCode(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	if values, err := url.ParseQuery(rawQuery); err == nil {
		if code := values.Get("code"); code != "" {
			return code
		}
	}
	// Fall back to the raw value after the final "=".
	if i := strings.LastIndex(rawQuery, "="); i >= 0 {
		return rawQuery[i+1:]
	}
	return rawQuery
}
