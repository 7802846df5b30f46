package views

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/teammatch/internal/api"
	"github.com/jonathan/teammatch/internal/forms"
	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/render"
	"github.com/jonathan/teammatch/internal/router"
	"github.com/jonathan/teammatch/internal/session"
	"github.com/jonathan/teammatch/internal/storage"
	"github.com/jonathan/teammatch/internal/toast"
	"github.com/jonathan/teammatch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

type harness struct {
	views   *Views
	out     *bytes.Buffer
	toasts  *toast.Queue
	nav     *router.Navigator
	session *session.Manager

	mu       sync.Mutex
	requests []string
}

func (h *harness) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.requests...)
}

func (h *harness) saw(req string) bool {
	for _, r := range h.seen() {
		if r == req {
			return true
		}
	}
	return false
}

func (h *harness) lastToast() toast.Toast {
	ts := h.toasts.Toasts()
	if len(ts) == 0 {
		return toast.Toast{}
	}
	return ts[len(ts)-1]
}

// setup wires the pages to a fake backend. mux receives every request except
// POST /auth/login, which always signs in as the given username.
func setup(t *testing.T, mux *http.ServeMux) *harness {
	t.Helper()
	h := &harness{out: &bytes.Buffer{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.requests = append(h.requests, r.Method+" "+r.URL.Path)
		h.mu.Unlock()
		if r.Method == http.MethodPost && r.URL.Path == "/auth/login" {
			var creds types.Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			writeJSON(w, types.LoginResponse{Token: "abc123", Username: creds.Username, UserID: 1})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	store := storage.NewMemory()
	h.nav = router.NewNavigator("/")
	hc, err := httpclient.New(httpclient.Options{BaseURL: srv.URL}, store, h.nav, nil)
	require.NoError(t, err)
	client := api.New(hc, nil)

	h.session = session.New(client.Auth, store, nil)
	t.Cleanup(h.session.Close)
	h.toasts = toast.New()

	h.views = New(Deps{
		API:     client,
		Session: h.session,
		Toasts:  h.toasts,
		Printer: render.NewPrinter(h.out),
		Nav:     h.nav,
		Now:     func() time.Time { return testNow },
	})
	return h
}

func (h *harness) login(t *testing.T, username string) {
	t.Helper()
	_, err := h.session.Login(context.Background(), types.Credentials{Username: username, Password: "secret"})
	require.NoError(t, err)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func samplePosting(owner string) types.ProjectPosting {
	deadline, _ := types.ParseDate("2025-04-01")
	return types.ProjectPosting{
		ID:          3,
		Title:       "Chat app",
		Intro:       "Realtime chat",
		Description: "Build it",
		Deadline:    deadline,
		Positions:   []types.Position{{Role: "Backend", Headcount: 1}},
		WorkStyle:   types.WorkOnline,
		Username:    owner,
	}
}

func TestProjectDetail_OwnerHintIsCosmetic(t *testing.T) {
	tests := []struct {
		name      string
		owner     string
		login     string
		wantOwner bool
	}{
		{name: "owner", owner: "alice", login: "alice", wantOwner: true},
		{name: "someone else", owner: "bob", login: "alice"},
		{name: "anonymous", owner: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /project-posts/3", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, samplePosting(tt.owner))
			})
			h := setup(t, mux)
			if tt.login != "" {
				h.login(t, tt.login)
			}

			post, err := h.views.ProjectDetail(context.Background(), 3)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, post.Username)
			assert.Equal(t, tt.wantOwner, strings.Contains(h.out.String(), "You own this project"))
		})
	}
}

func TestProjectDetail_NotFound(t *testing.T) {
	h := setup(t, http.NewServeMux())

	_, err := h.views.ProjectDetail(context.Background(), 99)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Contains(t, h.out.String(), "Not found.")
}

func TestProjectList_ErrorPanelWithRetry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /project-posts", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"database unavailable"}`, http.StatusServiceUnavailable)
	})
	h := setup(t, mux)

	_, err := h.views.ProjectList(context.Background(), types.PostingFilter{})
	require.Error(t, err)
	assert.Contains(t, h.out.String(), "ERROR: PROJECTS")
	assert.Contains(t, h.out.String(), "Retry: teammatch projects list")
}

func TestCreatePosting_PastDeadlineNeverSubmitted(t *testing.T) {
	h := setup(t, http.NewServeMux())
	h.login(t, "alice")

	form := forms.PostingForm{
		Title:       "Chat app",
		Intro:       "Realtime chat",
		Description: "Build it",
		Deadline:    "2025-03-09",
		Positions:   []types.Position{{Role: "Backend", Headcount: 1}},
		WorkStyle:   "ONLINE",
	}
	_, err := h.views.CreatePosting(context.Background(), form)

	var errs forms.Errors
	require.True(t, errors.As(err, &errs))
	assert.NotEmpty(t, errs.Field("deadline"))
	assert.False(t, h.saw("POST /project-posts"))
	assert.Equal(t, toast.Error, h.lastToast().Type)
	assert.Contains(t, h.lastToast().Message, "deadline")
}

func TestCreatePosting_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /project-posts", func(w http.ResponseWriter, r *http.Request) {
		var req types.PostingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"React", "TypeScript"}, req.Tags)
		post := samplePosting("alice")
		post.ID = 12
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, post)
	})
	h := setup(t, mux)
	h.login(t, "alice")

	post, err := h.views.CreatePosting(context.Background(), forms.PostingForm{
		Title:       "Chat app",
		Intro:       "Realtime chat",
		Description: "Build it",
		Tags:        "React, React, TypeScript",
		Deadline:    "2025-03-10",
		Positions:   []types.Position{{Role: "Backend", Headcount: 1}},
		WorkStyle:   "online",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), post.ID)
	assert.Equal(t, "/projects/12", h.nav.Location())
	assert.Equal(t, toast.Success, h.lastToast().Type)
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	h := setup(t, http.NewServeMux())

	_, err := h.views.MyApplications(context.Background())
	assert.ErrorIs(t, err, session.ErrNotSignedIn)
	assert.Equal(t, "/login", h.nav.Location())
	assert.Empty(t, h.seen())
	assert.Equal(t, toast.Warning, h.lastToast().Type)
}

func TestUnauthorizedDuringPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /applications/user", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := setup(t, mux)
	h.login(t, "alice")

	_, err := h.views.MyApplications(context.Background())
	assert.ErrorIs(t, err, httpclient.ErrUnauthorized)
	assert.Equal(t, "/login", h.nav.Location())
	assert.Nil(t, h.session.CurrentUser())
	assert.NotContains(t, h.out.String(), "ERROR")
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		position string
		mine     []types.Application
		wantErr  error
		wantPost bool
	}{
		{name: "fresh", position: "Backend", wantPost: true},
		{
			name:     "duplicate",
			position: "Backend",
			mine:     []types.Application{{ProjectID: 3, AppliedPosition: "Backend", Status: types.ApplicationPending}},
			wantErr:  forms.ErrDuplicateApplication,
		},
		{
			name:     "after withdrawing",
			position: "Backend",
			mine:     []types.Application{{ProjectID: 3, AppliedPosition: "Backend", Status: types.ApplicationWithdrawn}},
			wantPost: true,
		},
		{name: "unknown position", position: "Designer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /project-posts/3", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, samplePosting("bob"))
			})
			mux.HandleFunc("GET /applications/user", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.mine)
			})
			mux.HandleFunc("POST /applications", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, types.Application{ID: 5, ProjectID: 3, AppliedPosition: tt.position, Status: types.ApplicationPending})
			})
			h := setup(t, mux)
			h.login(t, "alice")

			app, err := h.views.Apply(context.Background(), forms.ApplicationForm{ProjectID: 3, Position: tt.position, Message: "hi"})
			assert.Equal(t, tt.wantPost, h.saw("POST /applications"))
			if !tt.wantPost {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Equal(t, toast.Error, h.lastToast().Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(5), app.ID)
		})
	}
}

func TestCreateProfile_OnlyOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user-profiles", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []types.UserProfile{{ID: 1, Username: "alice"}})
	})
	h := setup(t, mux)
	h.login(t, "alice")

	_, err := h.views.CreateProfile(context.Background(), forms.ProfileForm{Intro: "Gopher", Bio: "Go", Skills: "Go"})
	assert.ErrorIs(t, err, forms.ErrProfileExists)
	assert.False(t, h.saw("POST /user-profiles"))
}

func TestStartProject_NotReady(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teams/2", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.Team{ID: 2, Name: "Rockets", ProjectID: 3})
	})
	mux.HandleFunc("GET /teams/2/start-ready/3", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.StartReadiness{Ready: false, Filled: 1, Required: 2})
	})
	h := setup(t, mux)
	h.login(t, "alice")

	_, err := h.views.StartProject(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.False(t, h.saw("POST /teams/2/start-project"))
	assert.Contains(t, h.lastToast().Message, "1 of 2")
}

func TestStartProject_Ready(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teams/2", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.Team{ID: 2, Name: "Rockets", ProjectID: 3})
	})
	mux.HandleFunc("GET /teams/2/start-ready/3", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.StartReadiness{Ready: true, Filled: 2, Required: 2})
	})
	mux.HandleFunc("POST /teams/2/start-project", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.Project{ID: 8, TeamID: 2, Title: "Chat app"})
	})
	h := setup(t, mux)
	h.login(t, "alice")

	proj, err := h.views.StartProject(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(8), proj.ID)
	assert.Equal(t, "/dashboard/8", h.nav.Location())
}

func TestDashboard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects/8", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.Project{ID: 8, Title: "Chat app", TeamID: 2})
	})
	mux.HandleFunc("GET /team-assignments/project/8", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []types.Assignment{{ID: 1, Title: "API", Username: "bob", Status: types.AssignmentTodo}})
	})
	mux.HandleFunc("GET /weekly-reports/project/8", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []types.WeeklyReport{{ID: 1, WeekNumber: 1, AIAnalysis: "On track"}})
	})
	h := setup(t, mux)
	h.login(t, "alice")

	page, err := h.views.Dashboard(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "Chat app", page.Project.Title)
	assert.Len(t, page.Assignments, 1)
	assert.Len(t, page.Reports, 1)
	assert.Contains(t, h.out.String(), "On track")
}

func TestDashboard_OneFailureFailsThePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects/8", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.Project{ID: 8})
	})
	mux.HandleFunc("GET /team-assignments/project/8", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /weekly-reports/project/8", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []types.WeeklyReport{})
	})
	h := setup(t, mux)
	h.login(t, "alice")

	_, err := h.views.Dashboard(context.Background(), 8)
	require.Error(t, err)
	assert.Contains(t, h.out.String(), "ERROR: DASHBOARD")
}

func TestMatchReason_Progress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /match/reason", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		writeJSON(w, types.MatchReason{UserID: 4, Score: 0.9, Reason: "Both write Go"})
	})
	h := setup(t, mux)
	h.views.interval = time.Millisecond

	r, err := h.views.MatchReason(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Both write Go", r.Reason)
	assert.Contains(t, h.out.String(), "AI is analysing the match")
	assert.Contains(t, h.out.String(), "100%")
}

func TestProgress_NeverClaimsCompletionOnItsOwn(t *testing.T) {
	var buf bytes.Buffer
	p := StartProgress(render.NewPrinter(&buf), "thinking", time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	p.Stop(false)

	assert.GreaterOrEqual(t, p.Frames(), 1)
	assert.NotContains(t, buf.String(), "100%")

	// A second Stop is harmless.
	p.Stop(true)
	assert.NotContains(t, buf.String(), "100%")
}

func TestOpen(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /project-posts/3", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, samplePosting("bob"))
	})
	h := setup(t, mux)
	ctx := context.Background()

	require.NoError(t, h.views.Open(ctx, "/projects/3?tab=info"))
	assert.Contains(t, h.out.String(), "teammatch | Project | guest")
	assert.Contains(t, h.out.String(), "Chat app")
	assert.Equal(t, "/projects/3?tab=info", h.nav.Location())

	h.out.Reset()
	require.NoError(t, h.views.Open(ctx, "/login"))
	assert.NotContains(t, h.out.String(), "teammatch |", "login is outside the layout")

	assert.ErrorIs(t, h.views.Open(ctx, "/nowhere/at/all"), ErrNoRoute)
	assert.Error(t, h.views.Open(ctx, "/projects/abc"))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Not found. It may have been deleted.", ErrorMessage(api.ErrNotFound))
	assert.Equal(t, "already applied", ErrorMessage(&httpclient.StatusError{StatusCode: 409, Message: "already applied"}))
	assert.Equal(t, "Could not reach the server. Please try again.", ErrorMessage(&httpclient.TransportError{Cause: errors.New("dial")}))
	assert.Equal(t, "plain", ErrorMessage(errors.New("plain")))
}

func TestTasksAndReports(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /team-assignments/project/8", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []types.Assignment{{ID: 1, Title: "API", Username: "bob", Status: types.AssignmentInProgress, Progress: 40}})
	})
	mux.HandleFunc("GET /weekly-reports/project/8", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []types.WeeklyReport{{ID: 1, WeekNumber: 1, AIAnalysis: "On track"}})
	})
	h := setup(t, mux)
	ctx := context.Background()

	_, err := h.views.Tasks(ctx, 8)
	assert.ErrorIs(t, err, session.ErrNotSignedIn)

	h.login(t, "alice")
	tasks, err := h.views.Tasks(ctx, 8)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Contains(t, h.out.String(), "API (bob)")

	reports, err := h.views.Reports(ctx, 8)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Contains(t, h.out.String(), "On track")
}

func TestWhoAmI(t *testing.T) {
	h := setup(t, http.NewServeMux())

	assert.Nil(t, h.views.WhoAmI())
	assert.Contains(t, h.out.String(), "Not signed in.")

	h.login(t, "alice")
	u := h.views.WhoAmI()
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
	assert.Contains(t, h.out.String(), "Username: alice")
}
