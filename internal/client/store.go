// internal/client/store.go
package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"leadscout-service/internal/pkg/roles"
)

// ErrPartialSession is returned by Set when the credential bundle is
// incomplete. Access token, refresh token and principal are present together
// or not at all; a partial bundle is not a valid login state.
var ErrPartialSession = errors.New("session requires token, refresh token and principal")

// Principal is the authenticated identity derived from a login response.
type Principal struct {
	ID        int64
	Email     string
	FullName  string
	Roles     roles.Set
	CreatedAt time.Time
}

type principalWire struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName,omitempty"`
	Roles     interface{} `json:"roles"`
	CreatedAt time.Time   `json:"createdAt"`
}

// UnmarshalJSON normalizes the role claim at the ingestion boundary. The
// claim may arrive as a string, a comma-joined string or an array; whatever
// the shape, it becomes a canonical roles.Set here and nothing downstream
// branches on shape again.
func (p *Principal) UnmarshalJSON(data []byte) error {
	var w principalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.ID = w.ID
	p.Email = w.Email
	p.FullName = w.FullName
	p.Roles = roles.FromClaim(w.Roles)
	p.CreatedAt = w.CreatedAt
	return nil
}

func (p Principal) MarshalJSON() ([]byte, error) {
	return json.Marshal(principalWire{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		Roles:     p.Roles.Strings(),
		CreatedAt: p.CreatedAt,
	})
}

// Session is the persisted credential bundle.
type Session struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	Principal    *Principal `json:"principal"`
}

func (s *Session) complete() bool {
	return s != nil && s.Token != "" && s.RefreshToken != "" && s.Principal != nil
}

// Store is the single source of truth for "who is logged in". It keeps the
// session in memory behind a mutex and mirrors every change to a file so the
// session survives process restarts. The file is read once at construction;
// afterwards the in-memory copy is authoritative.
type Store struct {
	path string

	mu      sync.RWMutex
	session *Session

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// DefaultStorePath returns the session file location under the user config
// directory.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "leadscout", "session.json"), nil
}

// NewStore opens the store at path, rehydrating any previously persisted
// session. A missing file or an incomplete bundle both mean "no session".
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, subs: make(map[int]func())}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt session file is stale state, not a fatal condition.
		return s, nil
	}
	if sess.complete() {
		s.session = &sess
	}
	return s, nil
}

// Current returns the session, or nil when logged out. The returned value is
// a copy; mutating it does not affect the store.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// Set replaces the session. The write hits the file first (temp file plus
// rename, so a crash never leaves a half-written session) and memory second,
// then notifies subscribers.
func (s *Store) Set(sess Session) error {
	if !sess.complete() {
		return ErrPartialSession
	}

	data, err := json.MarshalIndent(&sess, "", "  ")
	if err != nil {
		return err
	}

	if err := s.writeFile(data); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()

	s.notify()
	return nil
}

// Clear deletes the session from disk and memory. All three values go
// together; there is no partial clear.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers a callback invoked after every session change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) writeFile(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "session-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}
