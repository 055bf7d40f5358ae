// Package auth holds a visitor's Session Context: the current principal,
// whether the start-up probe is still pending, and the login, register and
// logout operations. A Session has a single owner at a time (the request
// handling the visitor); it is not safe for concurrent use.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"Inshorts/internal/api"
	"Inshorts/internal/models"
)

// API is the part of the backend client the session needs.
type API interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.AuthResponse, error)
}

// Op names a session operation in an Error.
type Op string

const (
	OpLogin    Op = "login"
	OpRegister Op = "register"
	OpLogout   Op = "logout"
)

// Error is a failed session operation. Msg is safe to show to the user.
type Error struct {
	Op  Op
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Op) + ": " + e.Msg + ": " + e.Err.Error()
	}
	return string(e.Op) + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing text of err, or fallback when err is not
// a session Error.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}

// Snapshot is the persisted part of a Session.
type Snapshot struct {
	Principal *models.User `json:"principal,omitempty"`
	Probed    bool         `json:"probed"`
	LastError string       `json:"lastError,omitempty"`
}

type Session struct {
	api       API
	log       *zap.Logger
	principal *models.User
	loading   bool
	probed    bool
	lastErr   string

	// checked is set once the principal was confirmed by the backend
	// during this request; it is not persisted.
	checked bool
	// mu guards Invalidate, which API calls may trigger concurrently.
	mu sync.Mutex
}

// NewSession returns an unprobed session: Loading reports true until Probe
// has run.
func NewSession(a API, log *zap.Logger) *Session {
	return Restore(a, log, Snapshot{})
}

// Restore rebuilds a session from a snapshot taken by a previous request.
func Restore(a API, log *zap.Logger, snap Snapshot) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		api:       a,
		log:       log,
		principal: snap.Principal,
		probed:    snap.Probed,
		lastErr:   snap.LastError,
		loading:   !snap.Probed,
	}
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{Principal: s.principal, Probed: s.probed, LastError: s.lastErr}
}

// Principal is the authenticated user, or nil.
func (s *Session) Principal() *models.User { return s.principal }

// Loading reports whether the start-up probe or an operation is in progress.
func (s *Session) Loading() bool { return s.loading }

// Err is the message of the last failed operation, if any.
func (s *Session) Err() string { return s.lastErr }

// Probe asks the backend for an existing session. It runs once per session;
// later calls are no-ops. No session is not an error.
func (s *Session) Probe(ctx context.Context) {
	if s.probed {
		return
	}
	s.loading = true
	defer func() {
		s.probed = true
		s.loading = false
	}()

	u, err := s.fetchUser(ctx)
	if err != nil {
		if api.KindOf(err) != api.KindAuthentication {
			s.log.Warn("session probe failed", zap.Error(err))
		}
		return
	}
	s.principal = u
	s.checked = true
}

// Revalidate re-reads the principal from the backend unless it was already
// confirmed in this request. A rejected session clears the principal;
// other failures keep it.
func (s *Session) Revalidate(ctx context.Context) {
	if s.principal == nil || s.checked {
		return
	}
	u, err := s.fetchUser(ctx)
	switch {
	case api.KindOf(err) == api.KindAuthentication:
		s.principal = nil
	case err != nil:
		s.log.Warn("session revalidation failed", zap.Error(err))
		return
	default:
		s.principal = u
	}
	s.probed = true
	s.checked = true
}

// Invalidate drops the principal after the backend rejected its session.
// The next request probes again.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal != nil {
		s.log.Info("backend session expired", zap.String("username", s.principal.Username))
	}
	s.principal = nil
	s.probed = false
	s.checked = false
}

func (s *Session) fetchUser(ctx context.Context) (*models.User, error) {
	resp, err := s.api.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.OK() || resp.User == nil {
		return nil, nil
	}
	return resp.User, nil
}

// Login authenticates and then loads the principal. Rejected credentials
// give an *Error carrying the backend's message.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.loading = true
	defer func() { s.loading = false }()
	s.lastErr = ""

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return s.fail(OpLogin, err, "Failed to login")
	}
	if !resp.OK() {
		return s.fail(OpLogin, nil, orDefault(resp.Message, "Failed to login"))
	}

	u, err := s.fetchUser(ctx)
	if err != nil {
		return s.fail(OpLogin, err, "Failed to login")
	}
	s.principal = u
	s.probed = true
	s.checked = true
	s.log.Info("login", zap.String("username", username))
	return nil
}

// Register signs up and then logs in with the same credentials.
func (s *Session) Register(ctx context.Context, username, email, password string) error {
	s.loading = true
	defer func() { s.loading = false }()
	s.lastErr = ""

	resp, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		return s.fail(OpRegister, err, "Failed to register")
	}
	if !resp.OK() {
		return s.fail(OpRegister, nil, orDefault(resp.Message, "Failed to register"))
	}
	s.log.Info("registered", zap.String("username", username))
	return s.Login(ctx, username, password)
}

// Logout ends the backend session. The principal is cleared even when the
// backend call fails; that failure is recorded and returned.
func (s *Session) Logout(ctx context.Context) error {
	s.loading = true
	defer func() { s.loading = false }()

	err := s.api.Logout(ctx)
	s.principal = nil
	s.probed = true
	if err != nil {
		return s.fail(OpLogout, err, "Failed to logout")
	}
	s.lastErr = ""
	return nil
}

func (s *Session) fail(op Op, err error, fallback string) error {
	msg := fallback
	if m := api.MessageOf(err); m != "" {
		msg = m
	}
	s.lastErr = msg
	s.log.Warn("session operation failed", zap.String("op", string(op)), zap.String("message", msg), zap.Error(err))
	return &Error{Op: op, Msg: msg, Err: err}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
