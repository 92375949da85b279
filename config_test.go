package main

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("MAX_LOBBIES", "")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8000" {
		t.Errorf("expected :8000, got %s", cfg.Addr)
	}
	if cfg.MaxLobbies != MaxActiveLobbies {
		t.Errorf("expected %d lobbies, got %d", MaxActiveLobbies, cfg.MaxLobbies)
	}
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("MAX_LOBBIES", "9")
	t.Setenv("PUBLIC_URL", "https://crumble.example")
	cfg, err := LoadConfig([]string{"-addr", ":9000"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxLobbies != 9 || cfg.PublicURL != "https://crumble.example" || cfg.Addr != ":9000" {
		t.Errorf("unexpected config %+v", cfg)
	}

	cfg, err = LoadConfig([]string{"-max-lobbies", "3"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxLobbies != 3 {
		t.Errorf("flag should win over env, got %d", cfg.MaxLobbies)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("MAX_LOBBIES", "many")
	if _, err := LoadConfig(nil); err == nil {
		t.Error("expected error for non-numeric MAX_LOBBIES")
	}
	t.Setenv("MAX_LOBBIES", "")
	if _, err := LoadConfig([]string{"-max-lobbies", "0"}); err == nil {
		t.Error("expected error for zero lobbies")
	}
}
