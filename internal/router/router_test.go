package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Match(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		path       string
		wantName   string
		wantParams Params
		wantLayout bool
	}{
		{path: "/", wantName: Landing, wantParams: Params{}},
		{path: "/login", wantName: Login, wantParams: Params{}},
		{path: "/signup/", wantName: Signup, wantParams: Params{}},
		{path: "/projects", wantName: ProjectList, wantParams: Params{}, wantLayout: true},
		{path: "/projects/new", wantName: ProjectNew, wantParams: Params{}, wantLayout: true},
		{path: "/projects/42", wantName: ProjectDetail, wantParams: Params{"id": "42"}, wantLayout: true},
		{path: "/projects/42/edit", wantName: ProjectEdit, wantParams: Params{"id": "42"}, wantLayout: true},
		{path: "/projects/42?tab=info", wantName: ProjectDetail, wantParams: Params{"id": "42"}, wantLayout: true},
		{path: "/users/new", wantName: ProfileNew, wantParams: Params{}, wantLayout: true},
		{path: "/dashboard/7", wantName: Dashboard, wantParams: Params{"projectId": "7"}, wantLayout: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, params, ok := table.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.wantName, route.Name)
			assert.Equal(t, tt.wantParams, params)
			assert.Equal(t, tt.wantLayout, route.Layout)
		})
	}
}

func TestDefaultTable_NoMatch(t *testing.T) {
	table := DefaultTable()
	for _, path := range []string{"/nope", "/projects/1/2/3", "/dashboard"} {
		_, _, ok := table.Match(path)
		assert.False(t, ok, path)
	}
}

func TestDefaultTable_UnwrappedRoutes(t *testing.T) {
	table := DefaultTable()
	for _, name := range []string{Landing, Login, Signup} {
		r, ok := table.Lookup(name)
		require.True(t, ok)
		assert.False(t, r.Layout, name)
	}
	dash, ok := table.Lookup(Dashboard)
	require.True(t, ok)
	assert.True(t, dash.Layout)
	assert.False(t, dash.Footer)
}

func TestTable_Path(t *testing.T) {
	table := DefaultTable()

	p, err := table.Path(ProjectEdit, Params{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/projects/9/edit", p)

	p, err = table.Path(Landing, nil)
	require.NoError(t, err)
	assert.Equal(t, "/", p)

	_, err = table.Path(ProjectEdit, nil)
	assert.Error(t, err)

	_, err = table.Path("unknown", nil)
	assert.Error(t, err)
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable(Route{Name: "a", Pattern: "relative"})
	assert.Error(t, err)

	_, err = NewTable(Route{Name: "a", Pattern: "/a"}, Route{Name: "a", Pattern: "/b"})
	assert.Error(t, err)
}

func TestNavigator(t *testing.T) {
	ctx := context.Background()
	nav := NewNavigator("/projects")

	var seen []string
	unsubscribe := nav.Subscribe(func(path string) { seen = append(seen, path) })

	nav.Navigate(ctx, "/projects/1")
	nav.Navigate(ctx, LoginPath)
	assert.Equal(t, LoginPath, nav.Location())
	assert.Equal(t, []string{"/projects/1", LoginPath}, seen)

	require.True(t, nav.Back(ctx))
	assert.Equal(t, "/projects/1", nav.Location())
	require.True(t, nav.Back(ctx))
	assert.Equal(t, "/projects", nav.Location())
	assert.False(t, nav.Back(ctx))

	unsubscribe()
	nav.Navigate(ctx, "/users")
	assert.Len(t, seen, 4)
}
