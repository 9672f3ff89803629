package pachca

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1nky/pachca-client/internal/apierr"
	"github.com/k1nky/pachca-client/internal/client"
)

func TestListUsers_Query(t *testing.T) {
	api := newFakeAPI(t)
	api.handleJSON(http.MethodGet, "users", http.StatusOK, []map[string]any{{"id": 1, "nickname": "andrey"}})
	p := New(api.client())

	users, err := p.ListUsers(context.Background(), ListUsersOptions{Query: "andr"})
	require.NoError(t, err)
	require.Len(t, users, 1)

	q := api.requestsTo(http.MethodGet, "users")[0].Query
	assert.Equal(t, "andr", q.Get("query"))
	assert.Equal(t, "50", q.Get("per"))
	assert.Equal(t, "1", q.Get("page"))
}

func TestListAllUsers_CachesUsersScope(t *testing.T) {
	api := newFakeAPI(t)
	api.handlePages("users",
		[]map[string]any{{"id": 1, "nickname": "a"}},
	)
	p, c := newCachedPachca(t, api)

	users, err := p.ListAllUsers(context.Background(), ListUsersOptions{})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	cached, ok := c.Get(ScopeUsers)
	require.True(t, ok)
	assert.Equal(t, []Entity{User{ID: 1, Nickname: "a"}}, cached)
	_, ok = c.Get(ScopeChats)
	assert.False(t, ok)
}

func TestGetUser_ByNickname(t *testing.T) {
	api := newFakeAPI(t)
	api.handlePages("users", []map[string]any{{"id": 12, "nickname": "sergey"}})
	api.handleJSON(http.MethodGet, "users/12", http.StatusOK, map[string]any{"id": 12, "nickname": "sergey", "email": "s@example.com"})
	p, _ := newCachedPachca(t, api)

	u, err := p.GetUser(context.Background(), ByName("sergey"))
	require.NoError(t, err)
	assert.Equal(t, "s@example.com", u.Email)

	_, err = p.GetUser(context.Background(), ByName("nobody"))
	assert.ErrorIs(t, err, apierr.ErrNotResolved)
}

func TestGetStatus(t *testing.T) {
	api := newFakeAPI(t)
	api.handleJSON(http.MethodGet, "profile/status", http.StatusOK, map[string]any{"emoji": "🏖", "title": "Vacation"})
	p := New(api.client())

	st, err := p.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Vacation", st.Title)
}

func TestGetProfile_SilentError(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodGet, "profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	p := New(api.client(client.WithRaiseOnError(false)))

	u, err := p.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &User{}, u)
}
