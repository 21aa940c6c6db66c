package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "opsctl.env")
	content := `
# comment
ORIGIN_TIMEOUT=9
CN_PROXY_API="https://proxy.example/api"
CN_PUSH_ENABLE=1
ORIGIN_DEFAULT_SLOW_TIME=2.5
`
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ORIGIN_TIMEOUT", "11") // env wins over file
	t.Setenv("CN_TIMEOUT", "")       // empty env must not override the default

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OriginTimeout != 11 {
		t.Fatalf("env override lost: %d", cfg.OriginTimeout)
	}
	if cfg.CNProxyAPI != "https://proxy.example/api" {
		t.Fatalf("quoted value wrong: %q", cfg.CNProxyAPI)
	}
	if !cfg.CNPushEnable {
		t.Fatalf("push enable should parse 1 as true")
	}
	if cfg.OriginDefaultSlow != 2.5 {
		t.Fatalf("slow default: %v", cfg.OriginDefaultSlow)
	}
	if cfg.CNTimeout != 8 {
		t.Fatalf("default CN_TIMEOUT lost: %d", cfg.CNTimeout)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OriginExpectCode != "200" || cfg.OriginAlertInterval != 3600 {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if cfg.OriginAlertMethod != "none" {
		t.Fatalf("alert method default wrong: %q", cfg.OriginAlertMethod)
	}
}

func TestMaskAndSensitive(t *testing.T) {
	if !IsSensitive("TELEGRAM_BOT_TOKEN") || !IsSensitive("CN_PROXY_API") {
		t.Fatal("expected sensitive")
	}
	if IsSensitive("ORIGIN_TIMEOUT") {
		t.Fatal("timeout should not be sensitive")
	}
	if got := Mask("short"); got != "****" {
		t.Fatalf("short mask: %q", got)
	}
	if got := Mask("1234567890abcdef"); got != "1234****cdef" {
		t.Fatalf("long mask: %q", got)
	}
	if got := Mask("  "); got != "" {
		t.Fatalf("blank mask: %q", got)
	}
}
