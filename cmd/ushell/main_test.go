package main

import (
	"os"
	"strings"
	"testing"

	"ushell/internal/environment"
)

func TestPromptAbbreviatesHome(t *testing.T) {
	home := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	t.Setenv("USER", "tester")
	env := environment.New(0)
	env.Export("HOME", home)
	env.Export("USER", "tester")

	p := prompt(env)
	if !strings.HasPrefix(p, "tester:") {
		t.Fatalf("prompt=%q want tester: prefix", p)
	}
	if !strings.Contains(p, "> ") {
		t.Fatalf("prompt=%q want trailing '> '", p)
	}
	if p != "tester:~> " {
		t.Fatalf("prompt=%q want home abbreviated to ~", p)
	}
}

func TestPromptDefaultsUserWhenUnset(t *testing.T) {
	t.Setenv("USER", "")
	env := environment.New(0)
	p := prompt(env)
	if !strings.HasPrefix(p, "ushell:") {
		t.Fatalf("prompt=%q want ushell: prefix when USER unset", p)
	}
}
