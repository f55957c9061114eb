package storage

import (
	"path/filepath"
	"testing"
)

func TestSQLiteKVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspector.db")
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV() error = %v", err)
	}
	defer kv.Close()

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = (ok=%v, err=%v), want absent", ok, err)
	}

	if err := kv.Set("session:abc:position", "4"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := kv.Set("session:abc:position", "7"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	v, ok, err := kv.Get("session:abc:position")
	if err != nil || !ok || v != "7" {
		t.Errorf("Get() = (%q, %v, %v), want latest write", v, ok, err)
	}

	if err := kv.Delete("session:abc:position"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := kv.Get("session:abc:position"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestSQLiteKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspector.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV() error = %v", err)
	}
	if err := kv.Set("k", "persisted"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get("k")
	if err != nil || !ok || v != "persisted" {
		t.Errorf("Get after reopen = (%q, %v, %v)", v, ok, err)
	}
}

func TestSQLiteKVCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "inspector.db")
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV() with missing parent dirs error = %v", err)
	}
	kv.Close()
}
