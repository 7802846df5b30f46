package server

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/teammatch/internal/types"
)

// userRecord is an account with its password hash.
type userRecord struct {
	types.User
	PasswordHash string
}

// Store holds every resource in memory. All methods are safe for concurrent
// use and return copies.
type Store struct {
	mu  sync.Mutex
	now func() time.Time
	ids map[string]int64

	users        map[int64]*userRecord
	postings     map[int64]*types.ProjectPosting
	profiles     map[int64]*types.UserProfile
	applications map[int64]*types.Application
	teams        map[int64]*types.Team
	invitations  map[int64]*types.TeamInvitation
	leaves       map[int64]*types.LeaveRequest
	projects     map[int64]*types.Project
	assignments  map[int64]*types.Assignment
	reports      map[int64]*types.WeeklyReport
}

// NewStore returns an empty store. now may be nil.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:          now,
		ids:          make(map[string]int64),
		users:        make(map[int64]*userRecord),
		postings:     make(map[int64]*types.ProjectPosting),
		profiles:     make(map[int64]*types.UserProfile),
		applications: make(map[int64]*types.Application),
		teams:        make(map[int64]*types.Team),
		invitations:  make(map[int64]*types.TeamInvitation),
		leaves:       make(map[int64]*types.LeaveRequest),
		projects:     make(map[int64]*types.Project),
		assignments:  make(map[int64]*types.Assignment),
		reports:      make(map[int64]*types.WeeklyReport),
	}
}

func (s *Store) nextID(kind string) int64 {
	s.ids[kind]++
	return s.ids[kind]
}

// values returns copies of m's values ordered by ID, keeping those keep accepts.
func values[T any](m map[int64]*T, keep func(*T) bool) []T {
	out := []T{}
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if keep == nil || keep(m[id]) {
			out = append(out, *m[id])
		}
	}
	return out
}

func copyOf[T any](v *T) *T {
	c := *v
	return &c
}

// CreateUser adds an account. Usernames are unique, case-insensitively.
func (s *Store) CreateUser(req types.SignupRequest, passwordHash string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByName(req.Username) != nil {
		return nil, &ErrUsernameTaken{Username: req.Username}
	}
	rec := &userRecord{
		User: types.User{
			ID:       s.nextID("user"),
			Username: req.Username,
			Email:    req.Email,
			Nickname: req.Nickname,
			Role:     types.RoleUser,
		},
		PasswordHash: passwordHash,
	}
	s.users[rec.ID] = rec
	return copyOf(&rec.User), nil
}

func (s *Store) userByName(username string) *userRecord {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u
		}
	}
	return nil
}

// UserRecord returns the account with its hash, or nil.
func (s *Store) UserRecord(username string) *userRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.userByName(username); u != nil {
		return copyOf(u)
	}
	return nil
}

// User returns one account.
func (s *Store) User(id int64) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "user", ID: id}
	}
	return copyOf(&u.User), nil
}

// Users lists every account.
func (s *Store) Users() []types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.User{}
	for _, u := range values(s.users, nil) {
		out = append(out, u.User)
	}
	return out
}

// UpdateUser changes the caller's own account.
func (s *Store) UpdateUser(actor, id int64, req types.UpdateUserRequest) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "user", ID: id}
	}
	if u.ID != actor {
		return nil, &ErrForbidden{Action: "edit another account"}
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Nickname != "" {
		u.Nickname = req.Nickname
	}
	return copyOf(&u.User), nil
}
