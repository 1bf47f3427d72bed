package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// clearEnv isolates a test from the caller's environment and any .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	chdirForTest(t, t.TempDir())
	for _, k := range []string{EnvConfigPath, EnvDownloadDir, EnvProxy, EnvInsecureTLS, EnvUserAgent, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.InsecureTLS {
		t.Error("expected InsecureTLS to default to true")
	}
	if cfg.DownloadDir != "" || cfg.ProxyURL != "" || cfg.UserAgent != "" {
		t.Errorf("unexpected non-empty defaults: %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "sharegrab.yaml")
	yml := `download_dir: /srv/videos
proxy_url: socks5://127.0.0.1:1080
insecure_tls: false
user_agent: test-agent
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvDownloadDir, "/tmp/override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DownloadDir != "/tmp/override" {
		t.Errorf("env should override yaml, got %q", cfg.DownloadDir)
	}
	if cfg.ProxyURL != "socks5://127.0.0.1:1080" || cfg.UserAgent != "test-agent" {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
	if cfg.InsecureTLS {
		t.Error("yaml insecure_tls: false was ignored")
	}
	if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Log.Format)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)

	if err := os.WriteFile(".env", []byte(EnvDownloadDir+"=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvDownloadDir) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DownloadDir != "from-dotenv" {
		t.Errorf("expected .env value, got %q", cfg.DownloadDir)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvInsecureTLS, "maybe")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid bool")
	}

	clearEnv(t)
	t.Setenv(EnvLogLevel, "loud")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid log level")
	}

	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
