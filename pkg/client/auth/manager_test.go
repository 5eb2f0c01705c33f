package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-docassist/pkg/client/api"

	"go.uber.org/zap"
)

// the server-side logger plugs in directly
var _ Logger = (*zap.SugaredLogger)(nil)

// fakeAuthServer models the /auth endpoints: one valid access token at a
// time, a fixed refresh token, and counters for every endpoint.
type fakeAuthServer struct {
	mu           sync.Mutex
	validAccess  string
	refreshToken string
	minted       int

	verifyCalls  int
	refreshCalls int
	logoutCalls  int

	failRefresh bool
	failLogout  bool
}

func (f *fakeAuthServer) bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	return strings.TrimPrefix(h, "Bearer ")
}

func (f *fakeAuthServer) counts() (verify, refresh, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls, f.refreshCalls, f.logoutCalls
}

func (f *fakeAuthServer) handler() http.Handler {
	mux := http.NewServeMux()

	user := map[string]interface{}{
		"id":          "5f7d2f1e-0c1b-4a7e-9e1d-2b8c3d4e5f60",
		"username":    "alice",
		"email":       "alice@example.com",
		"is_active":   true,
		"is_verified": true,
	}

	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.verifyCalls++
		ok := f.bearer(r) == f.validAccess
		f.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token is invalid or expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Token is valid", "user": user})
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.refreshCalls++
		ok := !f.failRefresh && f.bearer(r) == f.refreshToken
		if ok {
			f.minted++
			f.validAccess = fmt.Sprintf("access-%d", f.minted)
		}
		access := f.validAccess
		f.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Refresh token is invalid"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Token refreshed", "access_token": access})
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &req)

		if req.Username != "alice" || req.Password != "Secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
			return
		}

		f.mu.Lock()
		f.minted++
		f.validAccess = fmt.Sprintf("access-%d", f.minted)
		access := f.validAccess
		refresh := f.refreshToken
		f.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Login successful",
			"user":    user,
			"tokens": map[string]string{
				"access_token":  access,
				"refresh_token": refresh,
				"token_type":    "bearer",
			},
		})
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logoutCalls++
		fail := f.failLogout
		f.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestManager(t *testing.T, f *fakeAuthServer, opts ...Option) (*Manager, *MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	store := NewMemoryStore()
	opts = append([]Option{WithLogger(NewStdLogger(log.New(io.Discard, "", 0)))}, opts...)
	return NewManager(api.New(srv.URL), store, opts...), store
}

func TestLoginStoresBothTokens(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, store := newTestManager(t, f)

	var events []Event
	m.Subscribe(func(e Event) { events = append(events, e) })

	if err := m.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !m.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after successful login")
	}
	if access, ok := store.Get(KeyAccessToken); !ok || access == "" {
		t.Error("access token missing from storage after login")
	}
	if refresh, ok := store.Get(KeyRefreshToken); !ok || refresh != "refresh-1" {
		t.Errorf("refresh token = %q, want refresh-1", refresh)
	}
	if u := m.User(); u == nil || u.Username != "alice" {
		t.Errorf("User() = %+v, want alice", u)
	}
	if len(events) != 1 || events[0] != EventLogin {
		t.Errorf("events = %v, want [login]", events)
	}
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, store := newTestManager(t, f)

	err := m.Login(context.Background(), "alice", "wrong")
	if err == nil {
		t.Fatal("Login() with bad password should fail")
	}
	if !strings.Contains(err.Error(), "Invalid username or password") {
		t.Errorf("error %q does not carry the server message", err)
	}
	if m.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after failed login")
	}
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("failed login must not write tokens")
	}
}

func TestRefreshNeverRotatesRefreshToken(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, store := newTestManager(t, f)

	if err := m.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	first, _ := store.Get(KeyAccessToken)

	for i := 0; i < 3; i++ {
		if err := m.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh() #%d error = %v", i+1, err)
		}
	}

	access, _ := store.Get(KeyAccessToken)
	if access == first {
		t.Error("access token unchanged after refresh")
	}
	if refresh, _ := store.Get(KeyRefreshToken); refresh != "refresh-1" {
		t.Errorf("refresh token = %q, want refresh-1 (never rotated)", refresh)
	}
}

func TestRefreshWithoutTokenFailsImmediately(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, _ := newTestManager(t, f)

	err := m.Refresh(context.Background())
	if err != ErrNoRefreshToken {
		t.Errorf("Refresh() error = %v, want ErrNoRefreshToken", err)
	}
	if _, refresh, _ := f.counts(); refresh != 0 {
		t.Errorf("refresh endpoint calls = %d, want 0", refresh)
	}
}

func TestRefreshFailureDoesNotMutateStorage(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, store := newTestManager(t, f)

	if err := m.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	before, _ := store.Get(KeyAccessToken)

	f.mu.Lock()
	f.failRefresh = true
	f.mu.Unlock()

	if err := m.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() should propagate server rejection")
	}
	if after, _ := store.Get(KeyAccessToken); after != before {
		t.Error("failed refresh must not touch the stored access token")
	}
	if refresh, _ := store.Get(KeyRefreshToken); refresh != "refresh-1" {
		t.Error("failed refresh must not touch the stored refresh token")
	}
}

func TestBootstrapWithNoTokens(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, _ := newTestManager(t, f)

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if m.State() != StateUnauthenticated {
		t.Errorf("State() = %v, want unauthenticated", m.State())
	}
	if verify, _, _ := f.counts(); verify != 0 {
		t.Errorf("verify calls = %d, want 0 without stored tokens", verify)
	}
}

func TestBootstrapWithValidAccessToken(t *testing.T) {
	f := &fakeAuthServer{validAccess: "access-0", refreshToken: "refresh-1"}
	m, store := newTestManager(t, f)
	_ = store.Set(KeyAccessToken, "access-0")
	_ = store.Set(KeyRefreshToken, "refresh-1")

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if !m.IsAuthenticated() {
		t.Error("IsAuthenticated() = false with a valid stored access token")
	}
	if u := m.User(); u == nil || u.Username != "alice" {
		t.Errorf("User() = %+v, want alice", u)
	}
}

func TestBootstrapRefreshesExpiredAccessToken(t *testing.T) {
	f := &fakeAuthServer{validAccess: "rotated-away", refreshToken: "refresh-1"}
	m, store := newTestManager(t, f)
	_ = store.Set(KeyAccessToken, "expired")
	_ = store.Set(KeyRefreshToken, "refresh-1")

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if !m.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = false, want recovery via refresh")
	}
	verify, refresh, _ := f.counts()
	if refresh != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", refresh)
	}
	if verify != 2 {
		t.Errorf("verify calls = %d, want 2 (initial + one retry)", verify)
	}
	if refresh, _ := store.Get(KeyRefreshToken); refresh != "refresh-1" {
		t.Error("bootstrap recovery must not rotate the refresh token")
	}
}

func TestBootstrapHalfPairIsCleared(t *testing.T) {
	f := &fakeAuthServer{validAccess: "access-0", refreshToken: "refresh-1"}
	m, store := newTestManager(t, f)
	// Access token without its paired refresh token: unusable for silent
	// refresh, treated as absent.
	_ = store.Set(KeyAccessToken, "access-0")

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if m.State() != StateUnauthenticated {
		t.Errorf("State() = %v, want unauthenticated", m.State())
	}
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("access token should be cleared")
	}
	if _, ok := store.Get(KeyRefreshToken); ok {
		t.Error("refresh token should be cleared")
	}
	if verify, _, _ := f.counts(); verify != 0 {
		t.Errorf("verify calls = %d, want 0 for a half pair", verify)
	}
}

func TestBootstrapExpiredAccessAndDeadRefreshClearsBoth(t *testing.T) {
	f := &fakeAuthServer{validAccess: "rotated-away", refreshToken: "refresh-1", failRefresh: true}
	m, store := newTestManager(t, f)
	_ = store.Set(KeyAccessToken, "expired")
	_ = store.Set(KeyRefreshToken, "refresh-1")

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if m.State() != StateUnauthenticated {
		t.Errorf("State() = %v, want unauthenticated", m.State())
	}
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("access token should be cleared after failed recovery")
	}
	if _, ok := store.Get(KeyRefreshToken); ok {
		t.Error("refresh token should be cleared after failed recovery")
	}
}

func TestBootstrapTransportErrorKeepsTokens(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	srv := httptest.NewServer(f.handler())
	store := NewMemoryStore()
	m := NewManager(api.New(srv.URL), store, WithLogger(NewStdLogger(log.New(io.Discard, "", 0))))
	_ = store.Set(KeyAccessToken, "access-0")
	_ = store.Set(KeyRefreshToken, "refresh-1")
	srv.Close()

	err := m.Bootstrap(context.Background())
	if err == nil {
		t.Fatal("Bootstrap() with unreachable backend should report the error")
	}
	if m.State() != StateUnauthenticated {
		t.Errorf("State() = %v, want unauthenticated", m.State())
	}
	// Only confirmed server rejection clears credentials.
	if _, ok := store.Get(KeyAccessToken); !ok {
		t.Error("transport failure must not clear the access token")
	}
	if _, ok := store.Get(KeyRefreshToken); !ok {
		t.Error("transport failure must not clear the refresh token")
	}
}

func TestLogoutAlwaysSucceedsLocally(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1", failLogout: true}
	m, store := newTestManager(t, f)

	if err := m.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var events []Event
	m.Subscribe(func(e Event) { events = append(events, e) })

	m.Logout(context.Background())

	if _, _, logout := f.counts(); logout != 1 {
		t.Errorf("logout endpoint calls = %d, want 1", logout)
	}
	if m.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after logout")
	}
	if m.User() != nil {
		t.Error("User() should be nil after logout")
	}
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("access token should be cleared on logout")
	}
	if _, ok := store.Get(KeyRefreshToken); ok {
		t.Error("refresh token should be cleared on logout")
	}
	if len(events) != 1 || events[0] != EventLogout {
		t.Errorf("events = %v, want [logout]", events)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, _ := newTestManager(t, f)

	var count int
	unsubscribe := m.Subscribe(func(Event) { count++ })

	if err := m.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	unsubscribe()
	m.Logout(context.Background())

	if count != 1 {
		t.Errorf("callback invocations = %d, want 1 (unsubscribed before logout)", count)
	}
}

func TestBackgroundRefreshLoop(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1"}
	m, store := newTestManager(t, f, WithRefreshInterval(10*time.Millisecond))

	if err := m.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	first, _ := store.Get(KeyAccessToken)

	stop := m.StartAutoRefresh(context.Background())
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	refreshed := false
	for time.Now().Before(deadline) {
		if tok, _ := store.Get(KeyAccessToken); tok != first {
			refreshed = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !refreshed {
		t.Fatal("background loop never refreshed the access token")
	}
	if refresh, _ := store.Get(KeyRefreshToken); refresh != "refresh-1" {
		t.Error("background refresh must not rotate the refresh token")
	}
	if !m.IsAuthenticated() {
		t.Error("background refresh must not change the authenticated state")
	}
}

func TestBackgroundRefreshFailureDoesNotLogout(t *testing.T) {
	f := &fakeAuthServer{refreshToken: "refresh-1", failRefresh: true}
	m, _ := newTestManager(t, f, WithRefreshInterval(10*time.Millisecond))

	if err := m.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	stop := m.StartAutoRefresh(context.Background())
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, calls, _ := f.counts(); calls >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, calls, _ := f.counts(); calls < 2 {
		t.Fatal("failed refresh should be retried on later ticks")
	}
	if !m.IsAuthenticated() {
		t.Error("failed background refresh must never force a logout")
	}
}
