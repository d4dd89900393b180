package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is resolved in three layers: built-in defaults, then an optional
// TOML file (FACELOCK_CONFIG), then FACELOCK_* environment variables.
// Environment wins.
type Config struct {
	HTTPAddr string `toml:"http_addr"`

	// DB
	Env    string `toml:"env"`     // "dev" | "prod"
	DBPath string `toml:"db_path"` // e.g. "./data/facelock.db"

	// Identity roster artifacts
	ArtifactPath string `toml:"artifact_path"` // signature artifact (JSON)
	FacesDir     string `toml:"faces_dir"`     // reference images, <name>.jpg

	// Decision tuning
	CooldownSeconds int     `toml:"cooldown_seconds"`
	MaxPINAttempts  int     `toml:"max_pin_attempts"`
	MatchTolerance  float64 `toml:"match_tolerance"`

	// Agent
	CoordinatorURL string `toml:"coordinator_url"`
	FramesDir      string `toml:"frames_dir"` // simulation frame source
	FrameDelayMs   int    `toml:"frame_delay_ms"`

	// HTTP rate limit (0 disables)
	RateLimitPerSecond float64 `toml:"rate_limit_per_second"`
	RateLimitBurst     int     `toml:"rate_limit_burst"`

	// Dev seeding
	DevAdminPIN string `toml:"dev_admin_pin"`
}

func defaults() Config {
	return Config{
		HTTPAddr:           ":8080",
		Env:                "dev",
		DBPath:             "./data/facelock.db",
		ArtifactPath:       "./data/known_faces.json",
		FacesDir:           "./data/faces",
		CooldownSeconds:    30,
		MaxPINAttempts:     3,
		MatchTolerance:     0.05,
		CoordinatorURL:     "http://localhost:8080",
		FrameDelayMs:       100,
		RateLimitPerSecond: 50,
		RateLimitBurst:     100,
	}
}

// Load resolves the configuration.  A missing config file is only an error
// when it was explicitly requested via FACELOCK_CONFIG.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("FACELOCK_CONFIG")); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("FACELOCK_HTTP_ADDR", cfg.HTTPAddr)
	cfg.Env = strings.ToLower(getenvDefault("FACELOCK_ENV", cfg.Env))
	cfg.DBPath = getenvDefault("FACELOCK_DB_PATH", cfg.DBPath)
	cfg.ArtifactPath = getenvDefault("FACELOCK_ARTIFACT_PATH", cfg.ArtifactPath)
	cfg.FacesDir = getenvDefault("FACELOCK_FACES_DIR", cfg.FacesDir)
	cfg.CooldownSeconds = getenvInt("FACELOCK_COOLDOWN_SECONDS", cfg.CooldownSeconds)
	cfg.MaxPINAttempts = getenvInt("FACELOCK_MAX_PIN_ATTEMPTS", cfg.MaxPINAttempts)
	cfg.MatchTolerance = getenvFloat("FACELOCK_MATCH_TOLERANCE", cfg.MatchTolerance)
	cfg.CoordinatorURL = getenvDefault("FACELOCK_COORDINATOR_URL", cfg.CoordinatorURL)
	cfg.FramesDir = getenvDefault("FACELOCK_FRAMES_DIR", cfg.FramesDir)
	cfg.FrameDelayMs = getenvInt("FACELOCK_FRAME_DELAY_MS", cfg.FrameDelayMs)
	cfg.RateLimitPerSecond = getenvFloat("FACELOCK_RATE_LIMIT_PER_SECOND", cfg.RateLimitPerSecond)
	cfg.RateLimitBurst = getenvInt("FACELOCK_RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.DevAdminPIN = getenvDefault("FACELOCK_DEV_ADMIN_PIN", cfg.DevAdminPIN)
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}
