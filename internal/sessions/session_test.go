package sessions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inshorts/internal/api"
	"Inshorts/internal/apitest"
	"Inshorts/internal/auth"
	"Inshorts/internal/models"
)

func newManager(t *testing.T, b *apitest.Backend, store Store) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		Secret:     "test-secret",
		MaxAge:     time.Hour,
		APIBaseURL: b.URL(),
	}, store, nil)
	require.NoError(t, err)
	return m
}

// browse sends a request carrying the given cookies and returns the
// response cookies merged over them.
func browse(t *testing.T, h http.Handler, method, path string, cookies []*http.Cookie) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	merged := map[string]*http.Cookie{}
	for _, c := range cookies {
		merged[c.Name] = c
	}
	for _, c := range rec.Result().Cookies() {
		merged[c.Name] = c
	}
	out := make([]*http.Cookie, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	return rec, out
}

func TestNewManagerRejectsBadURL(t *testing.T) {
	_, err := NewManager(Options{APIBaseURL: "not a url"}, NewMemoryStore(0), nil)
	assert.Error(t, err)
}

func TestMiddlewareProbesOncePerVisitor(t *testing.T) {
	b := apitest.NewBackend(t)
	store := NewMemoryStore(time.Hour)
	m := newManager(t, b, store)

	var seen []*Visitor
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, FromContext(r.Context()))
	}))

	_, jar := browse(t, h, http.MethodGet, "/", nil)
	browse(t, h, http.MethodGet, "/newest", jar)

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0].ID, seen[1].ID)
	assert.False(t, seen[1].Auth.Loading())
	assert.Nil(t, seen[1].Principal())
	assert.Len(t, b.Requests(http.MethodGet, "/auth/user"), 1)
	assert.Equal(t, 1, store.Len())
}

func TestMiddlewareKeepsBackendSession(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddUser("ana", "pw", models.RoleAdmin)
	m := newManager(t, b, NewMemoryStore(time.Hour))

	var principal *models.User
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := FromContext(r.Context())
		if r.Method == http.MethodPost {
			require.NoError(t, v.Auth.Login(r.Context(), "ana", "pw"))
			return
		}
		principal = v.Principal()
		if principal != nil {
			// the replayed backend cookie still authenticates API calls
			_, err := v.API.ToggleLike(r.Context(), 1)
			assert.NotEqual(t, api.KindAuthentication, api.KindOf(err))
		}
	}))

	_, jar := browse(t, h, http.MethodGet, "/", nil)
	_, jar = browse(t, h, http.MethodPost, "/login", jar)
	browse(t, h, http.MethodGet, "/admin", jar)

	require.NotNil(t, principal)
	assert.Equal(t, "ana", principal.Username)
	assert.True(t, principal.IsAdmin())
}

func TestFlashesSurviveOneRedirect(t *testing.T) {
	b := apitest.NewBackend(t)
	m := newManager(t, b, NewMemoryStore(time.Hour))

	var got [][]string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := FromContext(r.Context())
		if r.Method == http.MethodPost {
			v.AddFlash(w, r, "Failed to delete comment")
			return
		}
		got = append(got, v.Flashes)
	}))

	_, jar := browse(t, h, http.MethodPost, "/article/1/comments/2/delete", nil)
	_, jar = browse(t, h, http.MethodGet, "/article/1", jar)
	browse(t, h, http.MethodGet, "/article/1", jar)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"Failed to delete comment"}, got[0])
	assert.Empty(t, got[1])
}

// brokenStore fails every load and counts saves.
type brokenStore struct{ saves int }

func (s *brokenStore) Load(context.Context, string) (*State, error) {
	return nil, errors.New("connection refused")
}

func (s *brokenStore) Save(context.Context, string, *State) error {
	s.saves++
	return nil
}

func TestStoreOutageKeepsStoredState(t *testing.T) {
	b := apitest.NewBackend(t)
	store := &brokenStore{}
	m := newManager(t, b, store)

	served := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
	}))
	browse(t, h, http.MethodGet, "/", nil)

	assert.True(t, served)
	assert.Zero(t, store.saves)
}

func TestBackend401DropsPrincipal(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddUser("ana", "pw", models.RoleAdmin)
	a := b.AddArticle(models.Article{Title: "t", Summary: "s", Content: "c", Author: "a"})
	m := newManager(t, b, NewMemoryStore(time.Hour))

	var principals []*models.User
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := FromContext(r.Context())
		switch r.URL.Path {
		case "/login":
			require.NoError(t, v.Auth.Login(r.Context(), "ana", "pw"))
		case "/like":
			_, err := v.API.ToggleLike(r.Context(), a.ID)
			assert.Equal(t, api.KindAuthentication, api.KindOf(err))
			principals = append(principals, v.Principal())
		default:
			principals = append(principals, v.Principal())
		}
	}))

	_, jar := browse(t, h, http.MethodPost, "/login", nil)
	b.ExpireSessions()
	_, jar = browse(t, h, http.MethodPost, "/like", jar)
	browse(t, h, http.MethodGet, "/", jar)

	require.Len(t, principals, 2)
	assert.Nil(t, principals[0])
	assert.Nil(t, principals[1])
	assert.Len(t, b.Requests(http.MethodGet, "/auth/user"), 3)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	st := &State{Session: auth.Snapshot{Probed: true}, Cookies: []Cookie{{Name: "JSESSIONID", Value: "x"}}}
	require.NoError(t, s.Save(context.Background(), "v1", st))

	got, err := s.Load(context.Background(), "v1")
	require.NoError(t, err)
	assert.True(t, got.equal(st))

	got.Cookies[0].Value = "mutated"
	again, _ := s.Load(context.Background(), "v1")
	assert.Equal(t, "x", again.Cookies[0].Value)

	now = now.Add(2 * time.Minute)
	_, err = s.Load(context.Background(), "v1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(context.Background(), "v2", st))
	now = now.Add(2 * time.Minute)
	n, err := s.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, s.Len())
}
