package sessions

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"time"

	"Inshorts/internal/auth"
)

// ErrNotFound is returned by Store.Load for an unknown or expired visitor.
var ErrNotFound = errors.New("visitor state not found")

// Cookie is a backend cookie replayed into the visitor's jar.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// State is everything kept between a visitor's requests: the Session
// Context snapshot and the backend session cookies.
type State struct {
	Session auth.Snapshot `json:"session"`
	Cookies []Cookie      `json:"cookies,omitempty"`
}

func (s *State) httpCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return out
}

func cookiesFrom(hc []*http.Cookie) []Cookie {
	if len(hc) == 0 {
		return nil
	}
	out := make([]Cookie, 0, len(hc))
	for _, c := range hc {
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func (s *State) equal(o *State) bool { return reflect.DeepEqual(s, o) }

// Store keeps visitor state by visitor id. Implementations are safe for
// concurrent use.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st *State) error
}

type memItem struct {
	state   State
	expires time.Time
}

// MemoryStore is the default in-process Store. Entries expire ttl after
// their last save.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memItem
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: map[string]memItem{}, now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.ttl > 0 && m.now().After(it.expires) {
		delete(m.items, id)
		return nil, ErrNotFound
	}
	st := it.state
	st.Cookies = append([]Cookie(nil), it.state.Cookies...)
	return &st, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	cp.Cookies = append([]Cookie(nil), st.Cookies...)
	m.items[id] = memItem{state: cp, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Prune drops expired entries.
func (m *MemoryStore) Prune(context.Context) (int64, error) {
	if m.ttl <= 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for id, it := range m.items {
		if now.After(it.expires) {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}
