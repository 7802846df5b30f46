// Package router holds the application's route table and the navigator that
// tracks the current location.
//
// The router performs no authorization. Pages check the session themselves,
// and any such check on the client is cosmetic: the backend decides.
package router

import (
	"fmt"
	"strings"
)

// Route names.
const (
	Landing             = "landing"
	Login               = "login"
	Signup              = "signup"
	ProjectList         = "project-list"
	ProjectNew          = "project-new"
	ProjectDetail       = "project-detail"
	ProjectEdit         = "project-edit"
	ProjectApplications = "project-applications"
	ProfileList         = "profile-list"
	ProfileNew          = "profile-new"
	ProfileDetail       = "profile-detail"
	MyApplications      = "my-applications"
	TeamDetail          = "team-detail"
	Invitations         = "invitations"
	Dashboard           = "dashboard"
	MatchReason         = "match-reason"
	MyPage              = "my-page"
)

// LoginPath is where the session-expired redirect goes.
const LoginPath = "/login"

// Route maps a path pattern to a page. Layout routes render inside the shared
// navigation/footer frame; Footer is false for full-height pages.
type Route struct {
	Name    string
	Pattern string
	Layout  bool
	Footer  bool
	Title   string
}

// Params holds the values of {name} segments.
type Params map[string]string

// Table is an ordered list of routes; the first match wins.
type Table struct {
	routes []compiled
}

type compiled struct {
	route    Route
	segments []string
}

// NewTable compiles routes. Patterns must start with "/".
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{}
	seen := make(map[string]bool)
	for _, r := range routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("route %s: pattern %q must start with /", r.Name, r.Pattern)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate route name %q", r.Name)
		}
		seen[r.Name] = true
		t.routes = append(t.routes, compiled{route: r, segments: split(r.Pattern)})
	}
	return t, nil
}

// DefaultTable returns the application's routes.
func DefaultTable() *Table {
	t, err := NewTable(
		Route{Name: Landing, Pattern: "/", Title: "Home"},
		Route{Name: Login, Pattern: "/login", Title: "Log in"},
		Route{Name: Signup, Pattern: "/signup", Title: "Sign up"},
		Route{Name: ProjectList, Pattern: "/projects", Layout: true, Footer: true, Title: "Projects"},
		Route{Name: ProjectNew, Pattern: "/projects/new", Layout: true, Footer: true, Title: "New project"},
		Route{Name: ProjectDetail, Pattern: "/projects/{id}", Layout: true, Footer: true, Title: "Project"},
		Route{Name: ProjectEdit, Pattern: "/projects/{id}/edit", Layout: true, Footer: true, Title: "Edit project"},
		Route{Name: ProjectApplications, Pattern: "/projects/{id}/applications", Layout: true, Footer: true, Title: "Applicants"},
		Route{Name: ProfileList, Pattern: "/users", Layout: true, Footer: true, Title: "People"},
		Route{Name: ProfileNew, Pattern: "/users/new", Layout: true, Footer: true, Title: "New profile"},
		Route{Name: ProfileDetail, Pattern: "/users/{id}", Layout: true, Footer: true, Title: "Profile"},
		Route{Name: MyApplications, Pattern: "/applications", Layout: true, Footer: true, Title: "My applications"},
		Route{Name: TeamDetail, Pattern: "/teams/{id}", Layout: true, Footer: true, Title: "Team"},
		Route{Name: Invitations, Pattern: "/invitations", Layout: true, Footer: true, Title: "Invitations"},
		Route{Name: Dashboard, Pattern: "/dashboard/{projectId}", Layout: true, Title: "Project dashboard"},
		Route{Name: MatchReason, Pattern: "/match/{userId}", Layout: true, Footer: true, Title: "Why this match"},
		Route{Name: MyPage, Pattern: "/mypage", Layout: true, Footer: true, Title: "My page"},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the routes in match order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, c := range t.routes {
		out[i] = c.route
	}
	return out
}

// Lookup returns the route with the given name.
func (t *Table) Lookup(name string) (Route, bool) {
	for _, c := range t.routes {
		if c.route.Name == name {
			return c.route, true
		}
	}
	return Route{}, false
}

// Match finds the first route matching path. Query strings and trailing
// slashes are ignored. Literal segments beat parameters because literal
// routes are listed first.
func (t *Table) Match(path string) (Route, Params, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := split(path)

	for _, c := range t.routes {
		if params, ok := matchSegments(c.segments, segs); ok {
			return c.route, params, true
		}
	}
	return Route{}, nil, false
}

// Path builds a concrete path for the named route.
func (t *Table) Path(name string, params Params) (string, error) {
	r, ok := t.Lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}
	segs := split(r.Pattern)
	for i, s := range segs {
		if key, isParam := paramName(s); isParam {
			v, ok := params[key]
			if !ok || v == "" {
				return "", fmt.Errorf("route %s: missing parameter %q", name, key)
			}
			segs[i] = v
		}
	}
	return "/" + strings.Join(segs, "/"), nil
}

func matchSegments(pattern, path []string) (Params, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := Params{}
	for i, p := range pattern {
		if key, isParam := paramName(p); isParam {
			if path[i] == "" {
				return nil, false
			}
			params[key] = path[i]
			continue
		}
		if p != path[i] {
			return nil, false
		}
	}
	return params, true
}

func paramName(seg string) (string, bool) {
	if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
