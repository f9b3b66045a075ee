package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HistSize != 1000 {
		t.Fatalf("HistSize=%d want 1000", cfg.HistSize)
	}
	if cfg.MCPPort != 9000 {
		t.Fatalf("MCPPort=%d want 9000", cfg.MCPPort)
	}
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("USHELL_HISTSIZE", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid USHELL_HISTSIZE")
	}
}
