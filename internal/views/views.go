// Package views implements the application's pages on top of the resource
// clients. Each page fetches through a query bound to the caller's context,
// renders loading/error/empty/populated states, and reports mutations as
// toasts.
//
// Ownership checks in this package (showing owner hints, refusing obviously
// invalid actions early) are cosmetic. The backend is the only authority on
// who may do what.
package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/teammatch/internal/api"
	"github.com/jonathan/teammatch/internal/forms"
	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/logging"
	"github.com/jonathan/teammatch/internal/query"
	"github.com/jonathan/teammatch/internal/render"
	"github.com/jonathan/teammatch/internal/router"
	"github.com/jonathan/teammatch/internal/session"
	"github.com/jonathan/teammatch/internal/toast"
	"go.uber.org/zap"
)

var validate = validator.New()

// Navigator moves the app to another path.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// Deps are the collaborators every page needs.
type Deps struct {
	API     *api.Client
	Session *session.Manager
	Toasts  *toast.Queue
	Printer *render.Printer
	Nav     Navigator
	Routes  *router.Table
	Logger  *zap.Logger
	Now     func() time.Time

	// ProgressInterval is the frame interval of the cosmetic progress
	// animation. Zero disables the animation.
	ProgressInterval time.Duration
}

// Views renders pages.
type Views struct {
	api      *api.Client
	session  *session.Manager
	toasts   *toast.Queue
	printer  *render.Printer
	nav      Navigator
	routes   *router.Table
	logger   *zap.Logger
	now      func() time.Time
	interval time.Duration
}

// New builds the pages from d.
func New(d Deps) *Views {
	v := &Views{
		api:      d.API,
		session:  d.Session,
		toasts:   d.Toasts,
		printer:  d.Printer,
		nav:      d.Nav,
		routes:   d.Routes,
		logger:   d.Logger,
		now:      d.Now,
		interval: d.ProgressInterval,
	}
	v.logger = logging.OrNop(v.logger)
	if v.now == nil {
		v.now = time.Now
	}
	if v.routes == nil {
		v.routes = router.DefaultTable()
	}
	if v.toasts == nil {
		v.toasts = toast.New()
	}
	return v
}

// load runs fetch through a query tied to ctx and renders the error panel on
// failure.
func load[T any](ctx context.Context, v *Views, title, retry string, fetch query.Fetch[T]) (T, error) {
	q := query.New(ctx, fetch)
	defer q.Close()

	v.logger.Debug("loading page data", zap.String("page", title))
	data, err := q.Run()
	if err != nil {
		v.fail(title, retry, err)
	}
	return data, err
}

// fail renders the error panel. A 401 has already redirected and a
// cancelled page has nothing to show.
func (v *Views) fail(title, retry string, err error) {
	if errors.Is(err, httpclient.ErrUnauthorized) || httpclient.IsCanceled(err) {
		return
	}
	v.printer.Error(title, err, retry)
}

// mutate runs fn and reports the outcome as a toast.
func (v *Views) mutate(ctx context.Context, success string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		if !errors.Is(err, httpclient.ErrUnauthorized) {
			v.toasts.ShowError(ErrorMessage(err))
		}
		return err
	}
	if success != "" {
		v.toasts.ShowSuccess(success)
	}
	return nil
}

// requireUser is the page-level login check: anonymous visitors are sent to
// the login page.
func (v *Views) requireUser(ctx context.Context) (string, error) {
	u, err := v.session.RequireUser()
	if err != nil {
		v.toasts.ShowWarning("Please log in first.")
		if v.nav != nil {
			v.nav.Navigate(ctx, router.LoginPath)
		}
		return "", err
	}
	return u.Username, nil
}

// ErrorMessage turns an error into the text shown to the user.
func ErrorMessage(err error) string {
	var se *httpclient.StatusError
	var fe forms.Errors
	var te *httpclient.TransportError
	var ve validator.ValidationErrors
	switch {
	case errors.Is(err, api.ErrNotFound):
		return "Not found. It may have been deleted."
	case errors.Is(err, httpclient.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.As(err, &fe):
		return fe.Error()
	case errors.As(err, &ve) && len(ve) > 0:
		return fmt.Sprintf("validation error: %s - %s", ve[0].Field(), ve[0].Tag())
	case errors.As(err, &se):
		return se.Message
	case errors.As(err, &te):
		return "Could not reach the server. Please try again."
	default:
		return err.Error()
	}
}
