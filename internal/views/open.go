package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jonathan/teammatch/internal/router"
	"github.com/jonathan/teammatch/internal/types"
)

// ErrNoRoute is returned by Open for a path no route matches.
var ErrNoRoute = errors.New("no such page")

// Open resolves path through the route table and renders the page. Layout
// routes get the navigation header, and the footer when the route has one.
func (v *Views) Open(ctx context.Context, path string) error {
	route, params, ok := v.routes.Match(path)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNoRoute, path)
		v.printer.Error("page", err, "teammatch routes")
		return err
	}
	if v.nav != nil {
		v.nav.Navigate(ctx, path)
	}

	if route.Layout {
		v.header(route)
	}
	err := v.page(ctx, route, params)
	if route.Layout && route.Footer {
		v.printer.Line("teammatch · find your team")
	}
	return err
}

func (v *Views) header(route router.Route) {
	who := "guest"
	if u := v.session.CurrentUser(); u != nil {
		who = u.DisplayName()
	}
	v.printer.Line("teammatch | %s | %s", route.Title, who)
}

func (v *Views) page(ctx context.Context, route router.Route, params router.Params) error {
	id := func(key string) (int64, error) {
		n, err := strconv.ParseInt(params[key], 10, 64)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid %s %q", key, params[key])
		}
		return n, nil
	}

	var err error
	switch route.Name {
	case router.Landing:
		v.printer.Line("Find teammates for your side project.")
		v.printer.Line("Browse: teammatch projects list | Join: teammatch signup")
	case router.Login:
		v.printer.Line("Log in with: teammatch login --username <name>")
	case router.Signup:
		v.printer.Line("Sign up with: teammatch signup --username <name> --email <email>")
	case router.ProjectList:
		_, err = v.ProjectList(ctx, types.PostingFilter{})
	case router.ProjectNew:
		v.printer.Line("Publish with: teammatch projects create --file posting.json")
	case router.ProjectDetail:
		var n int64
		if n, err = id("id"); err == nil {
			_, err = v.ProjectDetail(ctx, n)
		}
	case router.ProjectEdit:
		var n int64
		if n, err = id("id"); err == nil {
			v.printer.Line("Edit with: teammatch projects update %d --file posting.json", n)
		}
	case router.ProjectApplications:
		var n int64
		if n, err = id("id"); err == nil {
			_, err = v.ProjectApplications(ctx, n)
		}
	case router.ProfileList:
		_, err = v.ProfileList(ctx)
	case router.ProfileNew:
		v.printer.Line("Publish with: teammatch profiles create --file profile.json")
	case router.ProfileDetail:
		var n int64
		if n, err = id("id"); err == nil {
			_, err = v.ProfileDetail(ctx, n)
		}
	case router.MyApplications:
		_, err = v.MyApplications(ctx)
	case router.TeamDetail:
		var n int64
		if n, err = id("id"); err == nil {
			_, err = v.Team(ctx, n)
		}
	case router.Invitations:
		_, err = v.Invitations(ctx)
	case router.Dashboard:
		var n int64
		if n, err = id("projectId"); err == nil {
			_, err = v.Dashboard(ctx, n)
		}
	case router.MatchReason:
		var n int64
		if n, err = id("userId"); err == nil {
			_, err = v.MatchReason(ctx, n)
		}
	case router.MyPage:
		_, err = v.MyPage(ctx)
	default:
		err = fmt.Errorf("%w: %s", ErrNoRoute, route.Name)
	}
	return err
}
