package store

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "desk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoad_MissingKeyKeepsFallback(t *testing.T) {
	s := openTemp(t)

	got := map[string]int{"fallback": 1}
	if ok := s.Load("never-set", &got); ok {
		t.Fatal("expected Load to report miss for never-set key")
	}
	if got["fallback"] != 1 {
		t.Errorf("fallback mutated on miss: %v", got)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openTemp(t)

	type rec struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	want := rec{Name: "Acme", Price: 42.5}
	if err := s.Save("stocks", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	var got rec
	if ok := s.Load("stocks", &got); !ok {
		t.Fatal("expected Load to hit after Save")
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestSave_OverwritesPriorValue(t *testing.T) {
	s := openTemp(t)

	if err := s.Save("k", 1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("k", 2); err != nil {
		t.Fatalf("save: %v", err)
	}

	var got int
	if ok := s.Load("k", &got); !ok || got != 2 {
		t.Errorf("expected last write to win, got %d (hit=%v)", got, ok)
	}
}

func TestLoad_DecodeFailureFailsSoft(t *testing.T) {
	s := openTemp(t)

	// A string will not decode into an int slice.
	if err := s.Save("bad", "not-a-slice"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := []int{7}
	if ok := s.Load("bad", &got); ok {
		t.Fatal("expected decode failure to report miss")
	}
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("fallback mutated on decode failure: %v", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := openTemp(t)

	if err := s.Save("a", "alpha"); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := s.Save("b", "beta"); err != nil {
		t.Fatalf("save b: %v", err)
	}

	var a, b string
	s.Load("a", &a)
	s.Load("b", &b)
	if a != "alpha" || b != "beta" {
		t.Errorf("keys interfered: a=%q b=%q", a, b)
	}
}
