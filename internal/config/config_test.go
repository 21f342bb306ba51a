package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {"host": "localhost", "user": "mslide", "db_name": "mslide"}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Port != 5432 {
		t.Fatalf("database port = %d", cfg.Database.Port)
	}
	if cfg.JWTTTLHours != 72 {
		t.Fatalf("jwt ttl = %d", cfg.JWTTTLHours)
	}
	if cfg.LogConfig.Level != "info" {
		t.Fatalf("log level = %q", cfg.LogConfig.Level)
	}
	if cfg.FileStore.Type != "local" {
		t.Fatalf("file store type = %q", cfg.FileStore.Type)
	}
	if cfg.AutoSave.Cron == "" || cfg.AutoSave.MaxPerSweep != 20 {
		t.Fatalf("auto save defaults = %+v", cfg.AutoSave)
	}
	if cfg.ConflictCleanup.Cron == "" || cfg.ConflictCleanup.RetainHours != 24*7 {
		t.Fatalf("conflict cleanup defaults = %+v", cfg.ConflictCleanup)
	}
	if cfg.MaxUploadMB != 16 {
		t.Fatalf("max upload = %d", cfg.MaxUploadMB)
	}
}

func TestLoadRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing jwt secret", `{"port": 8080, "database": {"dsn": "postgres://x"}}`},
		{"missing port", `{"jwt_secret": "s", "database": {"dsn": "postgres://x"}}`},
		{"missing database", `{"port": 8080, "jwt_secret": "s"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
