package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, expected sqlite", cfg.Database.Driver)
	}
	if cfg.Storage.MaxUploadBytes != 5*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, expected 5MiB", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Throttle.SubmissionRate != "5/hour" {
		t.Errorf("SubmissionRate = %q, expected 5/hour", cfg.Throttle.SubmissionRate)
	}
	if GlobalConfig != cfg {
		t.Error("GlobalConfig should point at the loaded config")
	}
}

func TestLoad_YAMLKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: \"9090\"\ngemini:\n  model: gemini-2.0-flash\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, expected 9090", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, expected gemini-2.0-flash", cfg.Gemini.Model)
	}
	if cfg.Gemini.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout = %v, expected 30s", cfg.Gemini.RequestTimeout())
	}
	if cfg.Storage.MediaRoot != "media" {
		t.Errorf("MediaRoot = %q, expected default media", cfg.Storage.MediaRoot)
	}
}

func TestOverrideFromEnv_GeminiKeyPrecedence(t *testing.T) {
	t.Setenv("VITE_GEMINI_API_KEY", "legacy-key")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()
	if cfg.Gemini.APIKey != "legacy-key" {
		t.Errorf("APIKey = %q, expected legacy-key", cfg.Gemini.APIKey)
	}

	t.Setenv("GEMINI_API_KEY", "server-key")
	cfg = DefaultConfig()
	cfg.overrideFromEnv()
	if cfg.Gemini.APIKey != "server-key" {
		t.Errorf("APIKey = %q, expected server-key", cfg.Gemini.APIKey)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		url      string
		addr     string
		password string
		db       int
	}{
		{"redis://localhost:6379", "localhost:6379", "", 0},
		{"redis://:secret@cache:6380/2", "cache:6380", "secret", 2},
		{"redis://user:pw@10.0.0.5:6379/1", "10.0.0.5:6379", "pw", 1},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.parseRedisURL(tt.url)
		if cfg.Redis.Addr != tt.addr {
			t.Errorf("%s: Addr = %q, expected %q", tt.url, cfg.Redis.Addr, tt.addr)
		}
		if cfg.Redis.Password != tt.password {
			t.Errorf("%s: Password = %q, expected %q", tt.url, cfg.Redis.Password, tt.password)
		}
		if cfg.Redis.DB != tt.db {
			t.Errorf("%s: DB = %d, expected %d", tt.url, cfg.Redis.DB, tt.db)
		}
	}
}

func TestOverrideFromEnv_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v, expected 2 entries", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("second origin = %q", cfg.CORS.AllowedOrigins[1])
	}
}

func TestCacheDurations_FallBackWhenUnset(t *testing.T) {
	var c CacheConfig
	if c.List() != 15*time.Minute {
		t.Errorf("List() = %v", c.List())
	}
	if c.Stats() != 30*time.Minute {
		t.Errorf("Stats() = %v", c.Stats())
	}
	if c.Categories() != time.Hour {
		t.Errorf("Categories() = %v", c.Categories())
	}

	// cached list pages live as long as the fallback
	if got := DefaultConfig().Cache.List(); got != 15*time.Minute {
		t.Errorf("default list TTL = %v, want 15m", got)
	}
}

func TestCheckSecrets(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.InsecureDefaults(); len(got) != 2 {
		t.Fatalf("InsecureDefaults() = %v, want jwt.secret and admin.password", got)
	}
	if err := cfg.CheckSecrets(); err != nil {
		t.Errorf("debug mode should only warn, got %v", err)
	}

	cfg.Server.Mode = "release"
	err := cfg.CheckSecrets()
	if err == nil {
		t.Fatal("release mode accepted default credentials")
	}
	if !strings.Contains(err.Error(), "jwt.secret") || !strings.Contains(err.Error(), "admin.password") {
		t.Errorf("error should name both settings: %v", err)
	}

	cfg.JWT.Secret = "a-long-random-secret"
	cfg.Admin.Password = ""
	if err := cfg.CheckSecrets(); err == nil || strings.Contains(err.Error(), "jwt.secret") {
		t.Errorf("empty admin password must be refused on its own, got %v", err)
	}

	cfg.Admin.Password = "Str0ng-pass!"
	if err := cfg.CheckSecrets(); err != nil {
		t.Errorf("custom credentials refused: %v", err)
	}
}
