package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileStore(path)

	if _, ok := s.Get(KeyAccessToken); ok {
		t.Error("Get() on a fresh store should report absent")
	}

	if err := s.Set(KeyAccessToken, "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(KeyRefreshToken, "def"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if v, ok := s.Get(KeyAccessToken); !ok || v != "abc" {
		t.Errorf("Get(access) = %q, %v; want abc, true", v, ok)
	}

	// A second store over the same path sees the persisted values.
	reopened := NewFileStore(path)
	if v, ok := reopened.Get(KeyRefreshToken); !ok || v != "def" {
		t.Errorf("reopened Get(refresh) = %q, %v; want def, true", v, ok)
	}

	if err := s.Delete(KeyAccessToken); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := s.Get(KeyAccessToken); ok {
		t.Error("Get() after Delete() should report absent")
	}
	if v, ok := s.Get(KeyRefreshToken); !ok || v != "def" {
		t.Errorf("Delete(access) must not touch refresh, got %q, %v", v, ok)
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tokens.json")
	s := NewFileStore(path)

	if err := s.Set(KeyAccessToken, "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}

func TestFileStoreEmptyValueIsAbsent(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))

	if err := s.Set(KeyAccessToken, ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok := s.Get(KeyAccessToken); ok {
		t.Error("an empty stored value must read back as absent")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	if _, ok := s.Get(KeyAccessToken); ok {
		t.Error("corrupt file should read as absent, not panic")
	}
	// Set recovers by rewriting the file from scratch.
	if err := s.Set(KeyAccessToken, "abc"); err != nil {
		t.Fatalf("Set() over corrupt file error = %v", err)
	}
	if v, ok := s.Get(KeyAccessToken); !ok || v != "abc" {
		t.Errorf("Get() after recovery = %q, %v; want abc, true", v, ok)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Get(KeyAccessToken); ok {
		t.Error("Get() on a fresh store should report absent")
	}
	if err := s.Set(KeyAccessToken, "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, ok := s.Get(KeyAccessToken); !ok || v != "abc" {
		t.Errorf("Get() = %q, %v; want abc, true", v, ok)
	}
	if err := s.Delete(KeyAccessToken); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := s.Get(KeyAccessToken); ok {
		t.Error("Get() after Delete() should report absent")
	}
}
