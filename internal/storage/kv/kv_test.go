package kv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested")),
		"sqlite": sqlite,
		"memory": NewMemStore(),
	}
}

func TestSetGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set("taskflow-tasks", []byte(`[1,2]`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set("taskflow-tasks", []byte(`[3]`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}

			got, err := s.Get("taskflow-tasks")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `[3]` {
				t.Errorf("Get = %q, want %q", got, `[3]`)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("darkMode")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing: got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestKeysAreIndependent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set("a", []byte("1")); err != nil {
				t.Fatal(err)
			}
			if err := s.Set("b", []byte("2")); err != nil {
				t.Fatal(err)
			}
			a, _ := s.Get("a")
			b, _ := s.Get("b")
			if string(a) != "1" || string(b) != "2" {
				t.Errorf("got a=%q b=%q", a, b)
			}
		})
	}
}

func TestFileStoreNoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	if err := fs.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(fs.Path("k") + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected tmp file to be renamed away, stat err = %v", err)
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}
}

func TestMemStoreFailWrites(t *testing.T) {
	m := NewMemStore()
	boom := errors.New("disk full")
	m.FailWrites(boom)
	if err := m.Set("k", []byte("v")); !errors.Is(err, boom) {
		t.Fatalf("Set: got %v, want %v", err, boom)
	}
	m.FailWrites(nil)
	if err := m.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set after restore: %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("etcd", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
