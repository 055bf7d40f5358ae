// Package apitest runs an in-process fake of the news backend's REST API
// for tests. It keeps articles, comments, users, likes and login sessions
// in memory and records every request it serves.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"Inshorts/internal/models"
)

// SessionCookie is the backend's session cookie name.
const SessionCookie = "JSESSIONID"

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Body   string
}

type user struct {
	id       int64
	username string
	email    string
	password string
	roles    []string
}

type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	nextID   int64
	articles map[int64]*models.Article
	comments map[int64]*models.Comment
	users    map[string]*user
	sessions map[string]string
	likes    map[int64]map[int64]bool
	failures map[string]int
	requests []Request
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	b := &Backend{
		articles: map[int64]*models.Article{},
		comments: map[int64]*models.Comment{},
		users:    map[string]*user{},
		sessions: map[string]string{},
		likes:    map[int64]map[int64]bool{},
		failures: map[string]int{},
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API root to hand to api.NewClient.
func (b *Backend) URL() string { return b.Server.URL + "/api" }

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) AddUser(username, password string, roles ...string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &user{id: b.id(), username: username, password: password, roles: roles}
	b.users[username] = u
	return u.id
}

func (b *Backend) AddArticle(a models.Article) models.Article {
	b.mu.Lock()
	defer b.mu.Unlock()
	a.ID = b.id()
	if a.PublishedAt.IsZero() {
		a.PublishedAt = models.LocalTime{Time: time.Now().Truncate(time.Second)}
	}
	b.articles[a.ID] = &a
	return a
}

func (b *Backend) AddComment(articleID int64, username, content string) models.Comment {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[username]
	c := &models.Comment{
		ID:        b.id(),
		ArticleID: articleID,
		Username:  username,
		Content:   content,
		CreatedAt: models.LocalTime{Time: time.Now().Truncate(time.Second)},
	}
	if u != nil {
		c.UserID = u.id
	}
	b.comments[c.ID] = c
	return *c
}

// SetLikes makes the given users like an article.
func (b *Backend) SetLikes(articleID int64, userIDs ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := map[int64]bool{}
	for _, id := range userIDs {
		m[id] = true
	}
	b.likes[articleID] = m
}

// ExpireSessions forgets every login, as the backend does on session
// timeout. Clients keep their now useless cookies.
func (b *Backend) ExpireSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = map[string]string{}
}

func (b *Backend) Article(id int64) (models.Article, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.articles[id]
	if !ok {
		return models.Article{}, false
	}
	return b.withCounts(*a), true
}

func (b *Backend) Comments(articleID int64) []models.Comment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commentsFor(articleID)
}

// Fail makes every later "METHOD path" request answer with status.
// Zero clears it.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

// Requests returns the recorded calls, optionally filtered by method and path.
func (b *Backend) Requests(method, path string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Request
	for _, r := range b.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", b.listArticles(nil))
		r.Get("/articles/newest", b.listArticles(byNewest))
		r.Get("/articles/trending", b.listArticles(byLikes))
		r.Get("/articles/{id}", b.getArticle)
		r.Post("/articles", b.requireUser(b.createArticle))
		r.Put("/articles/{id}", b.requireUser(b.updateArticle))
		r.Delete("/articles/{id}", b.requireUser(b.deleteArticle))
		r.Post("/articles/{id}/like", b.requireUser(b.toggleLike))
		r.Get("/articles/{id}/isLiked", b.isLiked)

		r.Get("/comments/article/{id}", b.listComments)
		r.Post("/comments/article/{id}", b.requireUser(b.addComment))
		r.Delete("/comments/{id}", b.requireUser(b.deleteComment))

		r.Post("/auth/register", b.register)
		r.Post("/auth/login", b.login)
		r.Post("/auth/logout", b.logout)
		r.Get("/auth/user", b.currentUser)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		path := strings.TrimPrefix(r.URL.Path, "/api")
		b.mu.Lock()
		b.requests = append(b.requests, Request{Method: r.Method, Path: path, Body: string(body)})
		status, fail := b.failures[r.Method+" "+path]
		b.mu.Unlock()

		if fail {
			writeJSON(w, status, map[string]string{"status": "error", "message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func (b *Backend) sessionUser(r *http.Request) *user {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.sessions[c.Value]
	if !ok {
		return nil
	}
	return b.users[name]
}

type userHandler func(w http.ResponseWriter, r *http.Request, u *user)

func (b *Backend) requireUser(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := b.sessionUser(r)
		if u == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h(w, r, u)
	}
}

// withCounts fills derived counters; callers hold b.mu.
func (b *Backend) withCounts(a models.Article) models.Article {
	a.LikeCount = len(b.likes[a.ID])
	a.CommentCount = len(b.commentsFor(a.ID))
	return a
}

func (b *Backend) commentsFor(articleID int64) []models.Comment {
	out := []models.Comment{}
	for _, c := range b.comments {
		if c.ArticleID == articleID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func byNewest(a []models.Article) []models.Article {
	sort.SliceStable(a, func(i, j int) bool { return a[i].PublishedAt.After(a[j].PublishedAt.Time) })
	return a
}

func byLikes(a []models.Article) []models.Article {
	sort.SliceStable(a, func(i, j int) bool { return a[i].LikeCount > a[j].LikeCount })
	if len(a) > 10 {
		a = a[:10]
	}
	return a
}

func (b *Backend) listArticles(order func([]models.Article) []models.Article) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		list := make([]models.Article, 0, len(b.articles))
		for _, a := range b.articles {
			list = append(list, b.withCounts(*a))
		}
		b.mu.Unlock()

		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		if order != nil {
			list = order(list)
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (b *Backend) getArticle(w http.ResponseWriter, r *http.Request) {
	a, ok := b.Article(pathID(r))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (b *Backend) createArticle(w http.ResponseWriter, r *http.Request, _ *user) {
	var in models.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	a := models.Article{Title: in.Title, Summary: in.Summary, Content: in.Content, Author: in.Author}
	if in.PublishedAt != "" {
		a.PublishedAt, _ = models.ParseLocalTime(in.PublishedAt)
	}
	writeJSON(w, http.StatusOK, b.AddArticle(a))
}

func (b *Backend) updateArticle(w http.ResponseWriter, r *http.Request, _ *user) {
	var in models.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id := pathID(r)
	b.mu.Lock()
	a, ok := b.articles[id]
	if ok {
		a.Title, a.Summary, a.Content, a.Author = in.Title, in.Summary, in.Content, in.Author
		if in.PublishedAt != "" {
			a.PublishedAt, _ = models.ParseLocalTime(in.PublishedAt)
		}
	}
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	updated, _ := b.Article(id)
	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) deleteArticle(w http.ResponseWriter, r *http.Request, _ *user) {
	id := pathID(r)
	b.mu.Lock()
	_, ok := b.articles[id]
	delete(b.articles, id)
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) toggleLike(w http.ResponseWriter, r *http.Request, u *user) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.articles[id]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Article not found"})
		return
	}
	m := b.likes[id]
	if m == nil {
		m = map[int64]bool{}
		b.likes[id] = m
	}
	liked := !m[u.id]
	if liked {
		m[u.id] = true
	} else {
		delete(m, u.id)
	}
	writeJSON(w, http.StatusOK, models.LikeStatus{Liked: liked})
}

func (b *Backend) isLiked(w http.ResponseWriter, r *http.Request) {
	u := b.sessionUser(r)
	if u == nil {
		writeJSON(w, http.StatusOK, models.LikeStatus{})
		return
	}
	b.mu.Lock()
	liked := b.likes[pathID(r)][u.id]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.LikeStatus{Liked: liked})
}

func (b *Backend) listComments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Comments(pathID(r)))
}

func (b *Backend) addComment(w http.ResponseWriter, r *http.Request, u *user) {
	var in models.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Content) == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, b.AddComment(pathID(r), u.username, in.Content))
}

func (b *Backend) deleteComment(w http.ResponseWriter, r *http.Request, u *user) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.comments[id]
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	admin := false
	for _, role := range u.roles {
		admin = admin || role == models.RoleAdmin
	}
	if c.UserID != u.id && !admin {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	delete(b.comments, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	_, taken := b.users[in.Username]
	var u *user
	if !taken {
		u = &user{id: b.id(), username: in.Username, email: in.Email, password: in.Password, roles: []string{"ROLE_USER"}}
		b.users[in.Username] = u
	}
	b.mu.Unlock()
	if taken {
		writeJSON(w, http.StatusBadRequest, models.AuthResponse{Status: "error", Message: "Username is already taken"})
		return
	}
	writeJSON(w, http.StatusCreated, models.AuthResponse{
		Status:   "success",
		Message:  "Registration successful",
		UserID:   u.id,
		Username: u.username,
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	name, pass := r.PostForm.Get("username"), r.PostForm.Get("password")

	b.mu.Lock()
	u, ok := b.users[name]
	ok = ok && u.password == pass
	sid := ""
	if ok {
		sid = uuid.NewString()
		b.sessions[sid] = name
	}
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.AuthResponse{Status: "error", Message: "Invalid credentials"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sid, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, models.AuthResponse{Status: "success", Message: "Login successful"})
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		b.mu.Lock()
		delete(b.sessions, c.Value)
		b.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, models.AuthResponse{Status: "success", Message: "Logout successful"})
}

func (b *Backend) currentUser(w http.ResponseWriter, r *http.Request) {
	u := b.sessionUser(r)
	if u == nil {
		writeJSON(w, http.StatusUnauthorized, models.AuthResponse{Status: "error", Message: "Not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{
		Status: "success",
		User:   &models.User{Username: u.username, Roles: append([]string(nil), u.roles...)},
	})
}
