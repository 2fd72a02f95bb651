package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv(AuthorTokenEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &Config{
		ModulesDir: DefaultModulesDir,
		Listen:     DefaultListen,
		Log:        LogConfig{Format: "text", Level: "info"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.MetricsEnabled() {
		t.Fatalf("metrics should default to enabled")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(AuthorTokenEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "blockkit.yaml")
	content := `
database: blocks.db
listen: ":9000"
log:
  format: json
  level: debug
author_token: s3cret
compact_override: false
metrics: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModulesDir != "" {
		t.Fatalf("modules dir should stay empty when a database is configured, got %q", cfg.ModulesDir)
	}
	if cfg.Database != "blocks.db" || cfg.Listen != ":9000" || cfg.AuthorToken != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CompactOverride == nil || *cfg.CompactOverride {
		t.Fatalf("compact override = %v, want explicit false", cfg.CompactOverride)
	}
	if cfg.MetricsEnabled() {
		t.Fatalf("metrics should be disabled")
	}
}

func TestLoadTokenFromEnv(t *testing.T) {
	t.Setenv(AuthorTokenEnv, "from-env")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuthorToken != "from-env" {
		t.Fatalf("author token = %q", cfg.AuthorToken)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(AuthorTokenEnv, "")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("log:\n  format: xml\n  level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
