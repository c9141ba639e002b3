package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
  sqlite_path: `+filepath.Join(t.TempDir(), "db", "test.db")+`
storage:
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
jwt:
  secret: short
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Server.Mode != "debug" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.JWT.ExpireTime != 72*time.Hour {
		t.Errorf("ExpireTime = %v, want 72h", cfg.JWT.ExpireTime)
	}
	if cfg.Redis.CacheTTL() != 600*time.Second {
		t.Errorf("CacheTTL = %v", cfg.Redis.CacheTTL())
	}
	if cfg.RateLimit.MaxRequests != 600 || cfg.RateLimit.WindowMinutes != 1 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if cfg.Curriculum.SeedPath != "configs/curriculum.yaml" {
		t.Errorf("seed path = %q", cfg.Curriculum.SeedPath)
	}
	if !strings.HasSuffix(cfg.ConfigFile, "config.yaml") {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
	if _, err := os.Stat(filepath.Dir(cfg.Database.SQLitePath)); err != nil {
		t.Errorf("sqlite directory not created: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "short secret in release",
			body: "server:\n  mode: release\njwt:\n  secret: short\ndatabase:\n  driver: postgres\n",
			want: "JWT secret is too short",
		},
		{
			name: "unknown driver",
			body: "database:\n  driver: oracle\n",
			want: "unsupported database driver",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	dir := writeConfig(t, "database:\n  driver: postgres\n")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("expected error for missing config.yaml")
	}
}

func TestCacheTTLFallback(t *testing.T) {
	if got := (RedisConfig{}).CacheTTL(); got != 10*time.Minute {
		t.Errorf("CacheTTL = %v", got)
	}
}
