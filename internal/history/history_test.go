package history

import (
	"path/filepath"
	"testing"
)

func TestAddDedupsConsecutive(t *testing.T) {
	s := New(10)
	s.Add("ls")
	s.Add("ls")
	if s.Count() != 1 {
		t.Fatalf("count=%d want 1", s.Count())
	}
	s.Add("pwd")
	s.Add("ls")
	if s.Count() != 3 {
		t.Fatalf("count=%d want 3", s.Count())
	}
}

func TestGetNewestFirst(t *testing.T) {
	s := New(10)
	s.Add("a")
	s.Add("b")
	if v, _ := s.Get(0); v != "b" {
		t.Fatalf("Get(0)=%q want b", v)
	}
	if v, _ := s.Get(1); v != "a" {
		t.Fatalf("Get(1)=%q want a", v)
	}
}

func TestBoundDropsOldest(t *testing.T) {
	s := New(2)
	s.Add("a")
	s.Add("b")
	s.Add("c")
	if s.Count() != 2 {
		t.Fatalf("count=%d want 2", s.Count())
	}
	if v, _ := s.Get(1); v != "b" {
		t.Fatalf("oldest remaining should be b, got %q", v)
	}
}

func TestNavigation(t *testing.T) {
	s := New(10)
	s.Add("a")
	s.Add("b")
	s.Add("c")
	if v, _ := s.Prev(); v != "c" {
		t.Fatalf("Prev=%q want c", v)
	}
	if v, _ := s.Prev(); v != "b" {
		t.Fatalf("Prev=%q want b", v)
	}
	if v, ok := s.Next(); !ok || v != "c" {
		t.Fatalf("Next=%q,%v want c,true", v, ok)
	}
	if v, ok := s.Next(); !ok || v != "" {
		t.Fatalf("Next past newest should reset: %q,%v", v, ok)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hist")
	s := New(10)
	s.Add("one")
	s.Add("two")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	s2 := New(10)
	if err := s2.Load(path); err != nil {
		t.Fatal(err)
	}
	if s2.Count() != 2 {
		t.Fatalf("count=%d want 2", s2.Count())
	}
	if v, _ := s2.Get(0); v != "two" {
		t.Fatalf("Get(0)=%q want two", v)
	}
}
