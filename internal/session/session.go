// Package session holds the signed-in user and the token lifecycle: startup
// hydration, login, logout and registration.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/teammatch/internal/api"
	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/logging"
	"github.com/jonathan/teammatch/internal/storage"
	"github.com/jonathan/teammatch/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State is the session's authentication state.
type State int

// Session states.
const (
	Unknown State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// ErrNotSignedIn is returned by RequireUser when nobody is signed in.
var ErrNotSignedIn = errors.New("not signed in")

// Snapshot is an immutable view of the session.
type Snapshot struct {
	State State
	User  *types.User
}

// Loading reports whether the startup check has not finished yet.
func (s Snapshot) Loading() bool {
	return s.State == Unknown
}

// Option configures a Manager.
type Option func(*Manager)

// WithNow replaces the clock used for the token expiry check.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the in-memory user. The token itself lives in the store.
type Manager struct {
	auth   *api.AuthClient
	store  *storage.Local
	logger *zap.Logger
	now    func() time.Time
	group  singleflight.Group

	mu     sync.Mutex
	state  State
	user   *types.User
	subs   map[int]func(Snapshot)
	nextID int

	unsubscribe func()
}

// New builds a manager in the Unknown state. Call Init before rendering
// anything that depends on the user.
func New(auth *api.AuthClient, store *storage.Local, logger *zap.Logger, opts ...Option) *Manager {
	logger = logging.OrNop(logger)
	m := &Manager{
		auth:   auth,
		store:  store,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.unsubscribe = store.Subscribe(m.onStorageEvent)
	return m
}

// Close stops listening to the store.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Snapshot returns the current state and a copy of the user.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// State returns the authentication state.
func (m *Manager) State() State {
	return m.Snapshot().State
}

// Loading reports whether Init has not completed.
func (m *Manager) Loading() bool {
	return m.Snapshot().Loading()
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (m *Manager) CurrentUser() *types.User {
	return m.Snapshot().User
}

// RequireUser returns the signed-in user or ErrNotSignedIn.
func (m *Manager) RequireUser() (*types.User, error) {
	if u := m.CurrentUser(); u != nil {
		return u, nil
	}
	return nil, ErrNotSignedIn
}

// Subscribe registers fn for state changes.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Init restores the session from the stored token. An expired token is
// discarded without a roundtrip; otherwise the user is loaded from /auth/me.
func (m *Manager) Init(ctx context.Context) error {
	token := m.store.Value(ctx, storage.KeyAccessToken)
	if token == "" {
		m.set(Anonymous, nil)
		return nil
	}

	if m.expired(token) {
		m.logger.Info("stored token has expired")
		m.discard(ctx)
		return nil
	}

	user, err := m.auth.Me(ctx)
	if err != nil {
		if httpclient.IsCanceled(err) {
			return err
		}
		m.logger.Warn("failed to restore session", zap.Error(err))
		m.discard(ctx)
		return nil
	}

	m.remember(ctx, user)
	m.set(Authenticated, user)
	return nil
}

// Login signs in and stores the token. Concurrent logins with identical
// credentials share a single request.
func (m *Manager) Login(ctx context.Context, creds types.Credentials) (*types.User, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	v, err, _ := m.group.Do(loginKey(creds), func() (any, error) {
		resp, err := m.auth.Login(ctx, creds)
		if err != nil {
			return nil, err
		}
		if resp.Token == "" {
			return nil, fmt.Errorf("login response has no token")
		}

		user := &types.User{ID: resp.UserID, Username: resp.Username, Email: resp.Email}
		if user.Username == "" {
			user.Username = creds.Username
		}
		if err := m.store.Set(ctx, storage.KeyAccessToken, resp.Token); err != nil {
			return nil, err
		}
		m.remember(ctx, user)
		m.set(Authenticated, user)
		return user, nil
	})
	if err != nil {
		return nil, err
	}

	u := *v.(*types.User)
	m.logger.Info("signed in", zap.String("username", u.Username))
	return &u, nil
}

// Logout tells the server (best effort) and then always clears the store and
// the user.
func (m *Manager) Logout(ctx context.Context) error {
	if m.store.Value(ctx, storage.KeyAccessToken) != "" {
		if err := m.auth.Logout(ctx); err != nil {
			m.logger.Warn("server logout failed", zap.Error(err))
		}
	}

	err := m.store.Clear(context.WithoutCancel(ctx))
	m.set(Anonymous, nil)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Register creates an account. It does not sign in.
func (m *Manager) Register(ctx context.Context, req types.SignupRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signup: %w", err)
	}
	return m.auth.Signup(ctx, req)
}

func (m *Manager) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque tokens are left to the server.
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(m.now())
}

// loginKey groups concurrent logins only when the credentials are identical.
func loginKey(creds types.Credentials) string {
	sum := sha256.Sum256([]byte(creds.Username + "\x00" + creds.Password))
	return hex.EncodeToString(sum[:])
}

// remember writes the user's identity fields. A field the user lacks is
// deleted so the stored keys always describe one account.
func (m *Manager) remember(ctx context.Context, user *types.User) {
	values := map[string]string{
		storage.KeyUsername: user.Username,
		storage.KeyEmail:    user.Email,
		storage.KeyUserID:   "",
	}
	if user.ID != 0 {
		values[storage.KeyUserID] = strconv.FormatInt(user.ID, 10)
	}
	for key, value := range values {
		var err error
		if value == "" {
			err = m.store.Delete(ctx, key)
		} else {
			err = m.store.Set(ctx, key, value)
		}
		if err != nil {
			m.logger.Warn("failed to store session field", zap.String("key", key), zap.Error(err))
		}
	}
}

func (m *Manager) discard(ctx context.Context) {
	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Error("failed to clear session", zap.Error(err))
	}
	m.set(Anonymous, nil)
}

func (m *Manager) onStorageEvent(ev storage.Event) {
	if ev.Kind == storage.EventSet || !ev.Affects(storage.KeyAccessToken) {
		return
	}
	m.mu.Lock()
	signedIn := m.state != Anonymous
	m.mu.Unlock()
	if signedIn {
		m.logger.Debug("token removed from store", zap.Bool("remote", ev.Remote))
		m.set(Anonymous, nil)
	}
}

func (m *Manager) set(state State, user *types.User) {
	m.mu.Lock()
	if m.state == state && sameUser(m.user, user) {
		m.mu.Unlock()
		return
	}
	m.state = state
	if user != nil {
		u := *user
		m.user = &u
	} else {
		m.user = nil
	}
	snap := m.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

func sameUser(a, b *types.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
