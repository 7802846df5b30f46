package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct {
	id       int64
	username string
}

func (c testClaims) GetUserID() int64    { return c.id }
func (c testClaims) GetUsername() string { return c.username }

type testValidator map[string]testClaims

func (v testValidator) ValidateToken(token string) (Principal, error) {
	c, ok := v[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return c, nil
}

func setup(t *testing.T) (http.Handler, *Identity) {
	t.Helper()
	var seen *Identity
	validator := testValidator{"good-token": {id: 7, username: "alice"}}
	h := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetIdentity(r)
		require.NoError(t, err)
		*seen = id
		w.WriteHeader(http.StatusOK)
	}))
	seen = &Identity{}
	return h, seen
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer good-token", want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good-token", want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good-token", want: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", want: http.StatusUnauthorized},
		{name: "extra parts", header: "Bearer good-token extra", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad-token", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := setup(t)
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, Identity{UserID: 7, Username: "alice"}, *seen)
			} else {
				assert.Contains(t, w.Body.String(), "unauthorized")
			}
		})
	}
}

func TestAuthMiddleware_IgnoresActorHeader(t *testing.T) {
	h, seen := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/applications/user", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("X-Username", "mallory")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "alice", seen.Username)
}

func TestAuthMiddleware_ActorHeaderAloneIsRejected(t *testing.T) {
	h, _ := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/applications/user", nil)
	req.Header.Set("X-Username", "alice")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetIdentity_Missing(t *testing.T) {
	_, err := GetIdentity(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "  Bearer   abc  ")
	token, ok := BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}
