package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"ai-docassist/pkg/client/api"
)

// State is the manager's authentication lifecycle state.
type State int

const (
	// StateUnknown is the initial state before Bootstrap has run.
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification delivered to subscribers.
type Event string

const (
	EventLogin  Event = "login"
	EventLogout Event = "logout"
)

// ErrNoRefreshToken is returned by Refresh when storage holds no refresh
// token; the caller must treat the session as unauthenticated.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// DefaultRefreshInterval stays strictly below the server's 15 minute
// access-token lifetime so a valid session never observes an expired token.
const DefaultRefreshInterval = 14 * time.Minute

// Logger is the leveled surface the manager logs through.
// zap.SugaredLogger satisfies it.
type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

type stdLogger struct{ l *log.Logger }

func (s stdLogger) Infof(template string, args ...interface{}) { s.l.Printf(template, args...) }
func (s stdLogger) Warnf(template string, args ...interface{}) { s.l.Printf(template, args...) }

// NewStdLogger adapts a stdlib logger to the Logger interface.
func NewStdLogger(l *log.Logger) Logger { return stdLogger{l: l} }

// Manager owns the access/refresh token pair and the authentication state
// derived from it. It is the only component that reads or writes the token
// storage keys; everything else obtains the current access token through
// AccessToken.
type Manager struct {
	api    *api.Client
	store  TokenStore
	logger Logger

	refreshEvery time.Duration

	mu    sync.RWMutex
	state State
	user  *api.User

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithLogger replaces the default stderr logger.
func WithLogger(l Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithRefreshInterval overrides the background refresh cadence. It must be
// shorter than the server's access-token lifetime.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Manager) { m.refreshEvery = d }
}

// NewManager wires a manager over the API client and token storage.
func NewManager(apiClient *api.Client, store TokenStore, opts ...Option) *Manager {
	m := &Manager{
		api:          apiClient,
		store:        store,
		logger:       stdLogger{l: log.Default()},
		refreshEvery: DefaultRefreshInterval,
		state:        StateUnknown,
		subs:         map[int]func(Event){},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers a callback for login/logout events and returns its
// unsubscribe func. Callbacks run synchronously on the goroutine that
// triggered the transition and must not block.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify(e Event) {
	m.subMu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a verified session is active.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// User returns a copy of the current account identity, or nil.
func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// AccessToken returns the stored access token. Each caller captures the
// value at call time; a concurrent background refresh is benign.
func (m *Manager) AccessToken() (string, bool) {
	return m.store.Get(KeyAccessToken)
}

// loadTokenPair reads both tokens and enforces the paired-or-absent
// invariant: a half pair left behind by an older client is treated as
// absent and wiped so a stale access token can never outlive its ability
// to be refreshed.
func (m *Manager) loadTokenPair() (access, refresh string, ok bool) {
	access, okA := m.store.Get(KeyAccessToken)
	refresh, okR := m.store.Get(KeyRefreshToken)
	if okA && okR {
		return access, refresh, true
	}
	if okA || okR {
		m.logger.Warnf("[AUTH] half token pair found in storage, clearing")
		m.clearTokens()
	}
	return "", "", false
}

func (m *Manager) storeTokenPair(access, refresh string) error {
	if err := m.store.Set(KeyAccessToken, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := m.store.Set(KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (m *Manager) clearTokens() {
	if err := m.store.Delete(KeyAccessToken); err != nil {
		m.logger.Warnf("[AUTH] clear access token: %v", err)
	}
	if err := m.store.Delete(KeyRefreshToken); err != nil {
		m.logger.Warnf("[AUTH] clear refresh token: %v", err)
	}
}

func (m *Manager) setAuthenticated(u *api.User) {
	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = u
	m.mu.Unlock()
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.state = StateUnauthenticated
	m.user = nil
	m.mu.Unlock()
}

// Bootstrap restores the session from storage at process start. A stored
// access token is verified against the server; a 401 is answered with
// exactly one refresh attempt and one verify retry. Explicit server
// rejection clears both tokens; a transport failure leaves them in place
// so the next start can retry, and is reported to the caller.
func (m *Manager) Bootstrap(ctx context.Context) error {
	access, _, ok := m.loadTokenPair()
	if !ok {
		m.setUnauthenticated()
		return nil
	}

	resp, err := m.api.Verify(ctx, access)
	if err == nil {
		m.setAuthenticated(&resp.User)
		return nil
	}

	if api.IsTransport(err) {
		m.setUnauthenticated()
		return fmt.Errorf("verify session: %w", err)
	}

	if api.IsStatus(err, http.StatusUnauthorized) {
		if rerr := m.Refresh(ctx); rerr == nil {
			if access, ok := m.store.Get(KeyAccessToken); ok {
				if resp, verr := m.api.Verify(ctx, access); verr == nil {
					m.setAuthenticated(&resp.User)
					return nil
				}
			}
		}
	}

	m.clearTokens()
	m.setUnauthenticated()
	return nil
}

// Refresh mints a new access token using the stored refresh token. Only the
// access token is overwritten on success; on failure storage is untouched
// and the error is propagated for the caller to decide.
func (m *Manager) Refresh(ctx context.Context) error {
	refresh, ok := m.store.Get(KeyRefreshToken)
	if !ok {
		return ErrNoRefreshToken
	}

	resp, err := m.api.Refresh(ctx, refresh)
	if err != nil {
		return fmt.Errorf("refresh access token: %w", err)
	}
	if err := m.store.Set(KeyAccessToken, resp.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	return nil
}

// Login authenticates with username/password, stores the returned token
// pair, and notifies subscribers. On failure state and storage are
// unchanged.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := m.storeTokenPair(resp.Tokens.AccessToken, resp.Tokens.RefreshToken); err != nil {
		return err
	}
	m.setAuthenticated(&resp.User)
	m.notify(EventLogin)
	return nil
}

// Register creates an account and establishes a session exactly like Login.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	resp, err := m.api.Register(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if err := m.storeTokenPair(resp.Tokens.AccessToken, resp.Tokens.RefreshToken); err != nil {
		return err
	}
	m.setAuthenticated(&resp.User)
	m.notify(EventLogin)
	return nil
}

// Logout tells the server to revoke the session (best effort, failures are
// logged and ignored), then unconditionally clears local credentials and
// notifies subscribers. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	if access, ok := m.store.Get(KeyAccessToken); ok {
		if err := m.api.Logout(ctx, access); err != nil {
			m.logger.Infof("[AUTH] server logout failed (ignored): %v", err)
		}
	}
	m.clearTokens()
	m.setUnauthenticated()
	m.notify(EventLogout)
}

// StartAutoRefresh launches the periodic silent refresh loop and returns
// its stop func. Ticks while unauthenticated are skipped; a failed refresh
// is logged and retried at the next tick, never escalated to a logout.
func (m *Manager) StartAutoRefresh(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(m.refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !m.IsAuthenticated() {
					continue
				}
				if err := m.Refresh(ctx); err != nil {
					m.logger.Warnf("[AUTH] background refresh failed, retrying next tick: %v", err)
				}
			}
		}
	}()
	return cancel
}
