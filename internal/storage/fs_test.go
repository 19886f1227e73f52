package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/crmai/internal/apperr"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestPutAndGet(t *testing.T) {
	s := tempStore(t)
	content := []byte(`{"contacts":[]}`)
	if err := s.Put("crm_ai_data", content); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("crm_ai_data")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "crm_ai_data.json")); err != nil {
		t.Errorf("expected file on disk: %v", err)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := tempStore(t)
	_ = s.Put("k", []byte("one"))
	if err := s.Put("k", []byte("two")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := s.Get("k")
	if string(got) != "two" {
		t.Errorf("content = %q", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := tempStore(t)
	_, err := s.Get("nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Put("del", []byte("bye"))
	if err := s.Delete("del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("del"); err == nil {
		t.Error("expected error reading deleted key")
	}
	if err := s.Delete("del"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestKeysPrefix(t *testing.T) {
	s := tempStore(t)
	for _, k := range []string{"portal_bb", "crm_mrr", "portal_aa"} {
		_ = s.Put(k, []byte("{}"))
	}
	// Stray files are ignored.
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("x"), 0o644)

	keys, err := s.Keys("portal_")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if want := []string{"portal_aa", "portal_bb"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestInvalidKeys(t *testing.T) {
	s := tempStore(t)
	bad := []string{"", "../escape", "a/b", ".hidden", ".."}
	for _, k := range bad {
		if err := s.Put(k, []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", k)
		}
		if _, err := s.Get(k); err == nil {
			t.Errorf("Get(%q) should fail", k)
		}
	}
}

func TestNoTempFilesLeft(t *testing.T) {
	s := tempStore(t)
	for i := 0; i < 5; i++ {
		_ = s.Put("k", []byte("v"))
	}
	entries, _ := os.ReadDir(s.Root())
	if len(entries) != 1 {
		t.Errorf("expected 1 file, got %d", len(entries))
	}
}
