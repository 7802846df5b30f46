// Package api provides one typed client per backend resource. The clients are
// pass-through: they do no validation of their own, log failures, and return
// them to the caller.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/logging"
	"go.uber.org/zap"
)

// ErrNotFound is returned for every 404. Its message is the literal
// "NOT_FOUND" so views can render a not-found state.
var ErrNotFound = errors.New("NOT_FOUND")

// Client groups the resource clients.
type Client struct {
	Auth          *AuthClient
	Users         *UsersClient
	Postings      *PostingsClient
	Profiles      *ProfilesClient
	Applications  *ApplicationsClient
	Teams         *TeamsClient
	Invitations   *InvitationsClient
	LeaveRequests *LeaveRequestsClient
	Projects      *ProjectsClient
	Assignments   *AssignmentsClient
	Reports       *ReportsClient
	Match         *MatchClient
}

// New builds every resource client over hc.
func New(hc *httpclient.Client, logger *zap.Logger) *Client {
	logger = logging.OrNop(logger)
	b := func(resource string) base {
		return base{http: hc, logger: logger.With(zap.String("resource", resource))}
	}
	return &Client{
		Auth:          &AuthClient{b("auth")},
		Users:         &UsersClient{b("users")},
		Postings:      &PostingsClient{b("project-posts")},
		Profiles:      &ProfilesClient{b("user-profiles")},
		Applications:  &ApplicationsClient{b("applications")},
		Teams:         &TeamsClient{b("teams")},
		Invitations:   &InvitationsClient{b("invitations")},
		LeaveRequests: &LeaveRequestsClient{b("leave-requests")},
		Projects:      &ProjectsClient{b("projects")},
		Assignments:   &AssignmentsClient{b("team-assignments")},
		Reports:       &ReportsClient{b("weekly-reports")},
		Match:         &MatchClient{b("match")},
	}
}

type base struct {
	http   *httpclient.Client
	logger *zap.Logger
}

func (b base) get(ctx context.Context, op, path string, out any, opts ...httpclient.RequestOption) error {
	return b.finish(op, http.MethodGet, path, b.http.Get(ctx, path, out, opts...))
}

func (b base) post(ctx context.Context, op, path string, body, out any) error {
	return b.finish(op, http.MethodPost, path, b.http.Post(ctx, path, body, out))
}

func (b base) put(ctx context.Context, op, path string, body, out any) error {
	return b.finish(op, http.MethodPut, path, b.http.Put(ctx, path, body, out))
}

func (b base) patch(ctx context.Context, op, path string, body, out any) error {
	return b.finish(op, http.MethodPatch, path, b.http.Patch(ctx, path, body, out))
}

func (b base) delete(ctx context.Context, op, path string, out any) error {
	return b.finish(op, http.MethodDelete, path, b.http.Delete(ctx, path, out))
}

// finish normalizes 404 to ErrNotFound and logs the failure before returning it.
func (b base) finish(op, method, path string, err error) error {
	if err == nil {
		return nil
	}
	if httpclient.IsStatus(err, http.StatusNotFound) {
		err = ErrNotFound
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", httpclient.StatusCode(err)),
		zap.Error(err),
	}
	if httpclient.IsCanceled(err) {
		b.logger.Debug("request cancelled", fields...)
	} else {
		b.logger.Error("request failed", fields...)
	}
	return err
}

// IsNotFound reports whether err is the not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
