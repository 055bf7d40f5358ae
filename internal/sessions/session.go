package sessions

import (
	"context"
	"crypto/sha256"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/net/publicsuffix"

	"Inshorts/internal/api"
	"Inshorts/internal/auth"
	"Inshorts/internal/models"
)

const (
	sessionName = "inshorts_session"
	visitorKey  = "visitor_id"
)

// DevSecret is used when no SESSION_SECRET is configured.
const DevSecret = "dev-insecure-secret-change-me-now"

type Options struct {
	Secret     string
	MaxAge     time.Duration
	Secure     bool
	APIBaseURL string
	APITimeout time.Duration
}

// Manager ties a browser to its visitor state: the browser holds a signed
// and encrypted cookie with the visitor id, the Store holds the rest.
type Manager struct {
	cookies *sessions.CookieStore
	states  Store
	apiBase string
	apiURL  *url.URL
	timeout time.Duration
	log     *zap.Logger
}

func NewManager(opts Options, states Store, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	u, err := url.Parse(opts.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid API base URL %q", opts.APIBaseURL)
	}
	secret := opts.Secret
	if secret == "" {
		log.Warn("SESSION_SECRET not set, using development secret")
		secret = DevSecret
	}

	// signing + encryption keys, both derived from the one secret
	store := sessions.NewCookieStore(deriveKey(secret, "auth", 64), deriveKey(secret, "enc", 32))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	}

	return &Manager{
		cookies: store,
		states:  states,
		apiBase: opts.APIBaseURL,
		apiURL:  u,
		timeout: opts.APITimeout,
		log:     log,
	}, nil
}

func deriveKey(secret, info string, n int) []byte {
	key := make([]byte, n)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("inshorts:"+info))
	if _, err := io.ReadFull(r, key); err != nil {
		panic(err)
	}
	return key
}

// Visitor is one browser's view of the backend for the current request.
type Visitor struct {
	ID      string
	API     *api.Client
	Auth    *auth.Session
	Flashes []string

	m *Manager
}

// Principal is the visitor's authenticated user, or nil.
func (v *Visitor) Principal() *models.User { return v.Auth.Principal() }

// AddFlash queues a message for the next page the visitor sees. It must be
// called before the response is written.
func (v *Visitor) AddFlash(w http.ResponseWriter, r *http.Request, msg string) {
	gs, _ := v.m.cookies.Get(r, sessionName)
	gs.AddFlash(msg)
	if err := gs.Save(r, w); err != nil {
		v.m.log.Warn("flash save failed", zap.Error(err))
	}
}

type ctxKeyVisitor struct{}

func WithVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, ctxKeyVisitor{}, v)
}

func FromContext(ctx context.Context) *Visitor {
	v, _ := ctx.Value(ctxKeyVisitor{}).(*Visitor)
	return v
}

// Middleware loads the visitor for every request, runs the one-time
// session probe, and persists the visitor state once the handler returns.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gs, err := m.cookies.Get(r, sessionName)
		if err != nil {
			// undecodable cookie (rotated secret): start over
			m.log.Debug("session cookie rejected", zap.Error(err))
		}

		dirty := false
		id, _ := gs.Values[visitorKey].(string)
		if id == "" {
			id = uuid.NewString()
			gs.Values[visitorKey] = id
			dirty = true
		}
		var flashes []string
		for _, f := range gs.Flashes() {
			if s, ok := f.(string); ok {
				flashes = append(flashes, s)
			}
			dirty = true
		}
		if dirty {
			if err := gs.Save(r, w); err != nil {
				m.log.Warn("session cookie save failed", zap.Error(err))
			}
		}

		ctx := r.Context()
		loaded, err := m.states.Load(ctx, id)
		// a store outage must not overwrite the stored state with a blank one
		readOnly := false
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				m.log.Warn("visitor state load failed", zap.String("visitor", id), zap.Error(err))
				readOnly = true
			}
			loaded = &State{}
		}

		v, jar, err := m.visitor(id, loaded)
		if err != nil {
			m.log.Error("visitor setup failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		v.Flashes = flashes
		v.Auth.Probe(ctx)

		next.ServeHTTP(w, r.WithContext(WithVisitor(ctx, v)))
		if readOnly {
			return
		}

		current := &State{
			Session: v.Auth.Snapshot(),
			Cookies: cookiesFrom(jar.Cookies(m.apiURL)),
		}
		if current.equal(loaded) {
			return
		}
		if err := m.states.Save(context.WithoutCancel(ctx), id, current); err != nil {
			m.log.Warn("visitor state save failed", zap.String("visitor", id), zap.Error(err))
		}
	})
}

func (m *Manager) visitor(id string, st *State) (*Visitor, http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, nil, errors.Wrap(err, "cookie jar")
	}
	jar.SetCookies(m.apiURL, st.httpCookies())

	log := m.log.With(zap.String("visitor", id))
	client := api.NewClient(m.apiBase, jar, m.timeout, log)
	sess := auth.Restore(client, log, st.Session)
	client.OnUnauthorized(sess.Invalidate)
	return &Visitor{
		ID:   id,
		API:  client,
		Auth: sess,
		m:    m,
	}, jar, nil
}
