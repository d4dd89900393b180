package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.CooldownSeconds != 30 {
		t.Errorf("CooldownSeconds = %d", cfg.CooldownSeconds)
	}
	if cfg.MaxPINAttempts != 3 {
		t.Errorf("MaxPINAttempts = %d", cfg.MaxPINAttempts)
	}
	if cfg.MatchTolerance != 0.05 {
		t.Errorf("MatchTolerance = %v", cfg.MatchTolerance)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FACELOCK_HTTP_ADDR", ":9999")
	t.Setenv("FACELOCK_ENV", "PROD")
	t.Setenv("FACELOCK_COOLDOWN_SECONDS", "60")
	t.Setenv("FACELOCK_MATCH_TOLERANCE", "0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Env != "prod" {
		t.Errorf("Env = %q, want lowercased prod", cfg.Env)
	}
	if cfg.CooldownSeconds != 60 {
		t.Errorf("CooldownSeconds = %d", cfg.CooldownSeconds)
	}
	if cfg.MatchTolerance != 0.1 {
		t.Errorf("MatchTolerance = %v", cfg.MatchTolerance)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facelock.toml")
	content := `
http_addr = ":7070"
db_path = "/var/lib/facelock/facelock.db"
max_pin_attempts = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FACELOCK_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "/var/lib/facelock/facelock.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.MaxPINAttempts != 5 {
		t.Errorf("MaxPINAttempts = %d", cfg.MaxPINAttempts)
	}
	// Keys absent from the file keep their defaults.
	if cfg.CooldownSeconds != 30 {
		t.Errorf("CooldownSeconds = %d", cfg.CooldownSeconds)
	}
}

func TestLoad_EnvWinsOverTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facelock.toml")
	if err := os.WriteFile(path, []byte(`http_addr = ":7070"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FACELOCK_CONFIG", path)
	t.Setenv("FACELOCK_HTTP_ADDR", ":6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":6060" {
		t.Errorf("HTTPAddr = %q, environment should win", cfg.HTTPAddr)
	}
}

func TestLoad_MissingConfigFileIsError(t *testing.T) {
	t.Setenv("FACELOCK_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for explicitly requested missing file")
	}
}

func TestLoad_UnknownEnvFallsBackToDev(t *testing.T) {
	t.Setenv("FACELOCK_ENV", "staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev fallback", cfg.Env)
	}
}

func TestGetenvInt_InvalidKeepsDefault(t *testing.T) {
	t.Setenv("FACELOCK_COOLDOWN_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CooldownSeconds != 30 {
		t.Errorf("CooldownSeconds = %d, want default 30", cfg.CooldownSeconds)
	}
}
