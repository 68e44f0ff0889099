package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "toughpos.yml")
	data := []byte(`
web:
  port: 8080
  secret: from-file
database:
  type: sqlite
  name: pos.db
storage:
  type: local
  gc_grace: 30m
`)
	if err := os.WriteFile(cfile, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOUGHPOS_WEB_PORT", "9090")
	t.Setenv("TOUGHPOS_WEB_ALLOW_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig(cfile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Web.Port)
	}
	if cfg.Web.Secret != "from-file" {
		t.Errorf("secret = %q", cfg.Web.Secret)
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.Name != "pos.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Storage.GCGrace != 30*time.Minute {
		t.Errorf("gc grace = %v", cfg.Storage.GCGrace)
	}
	if len(cfg.Web.AllowOrigins) != 2 || cfg.Web.AllowOrigins[1] != "http://b.test" {
		t.Errorf("origins = %v", cfg.Web.AllowOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "legacy")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Web.Port != 3000 {
		t.Errorf("port = %d, want default 3000", cfg.Web.Port)
	}
	if cfg.Web.Secret != "legacy" {
		t.Errorf("secret = %q, want JWT_SECRET fallback", cfg.Web.Secret)
	}
}

func TestValidateRequiresSecret(t *testing.T) {
	cfg := DefaultAppConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing secret")
	}
	cfg.Web.Secret = "s"
	cfg.Storage.Type = "s3"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for s3 without bucket")
	}
	cfg.Storage.Bucket = "pos"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
