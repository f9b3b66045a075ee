package glob

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestNoWildcardsPassThrough(t *testing.T) {
	got, err := Expand("/nonexistent/dir/does/not/exist", "hello.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"hello.txt"}) {
		t.Fatalf("got %v", got)
	}
}

func TestExpandStar(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := Expand(dir, "*.txt")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a.txt", "b.txt"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDotfilesSkippedUnlessPatternStartsWithDot(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".hidden", "visible"} {
		os.WriteFile(filepath.Join(dir, name), nil, 0644)
	}
	got, _ := Expand(dir, "*")
	if !reflect.DeepEqual(got, []string{"visible"}) {
		t.Fatalf("got %v", got)
	}
	got2, _ := Expand(dir, ".*")
	if !reflect.DeepEqual(got2, []string{".hidden"}) {
		t.Fatalf("got %v", got2)
	}
}

func TestZeroMatchPassesThrough(t *testing.T) {
	dir := t.TempDir()
	got, _ := Expand(dir, "*.nonexistent")
	if !reflect.DeepEqual(got, []string{"*.nonexistent"}) {
		t.Fatalf("got %v", got)
	}
}

func TestCharacterClass(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a1", "a2", "ax"} {
		os.WriteFile(filepath.Join(dir, name), nil, 0644)
	}
	got, _ := Expand(dir, "a[0-9]")
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a1", "a2"}) {
		t.Fatalf("got %v", got)
	}
	got2, _ := Expand(dir, "a[!0-9]")
	if !reflect.DeepEqual(got2, []string{"ax"}) {
		t.Fatalf("got %v", got2)
	}
}
