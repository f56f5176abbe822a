package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adamwoolhether/appchains"
	"github.com/adamwoolhether/appchains/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestMerge(t *testing.T) {
	doc := []byte(`
appchains:
  token: abc
  host: localhost
  port: 8443
  pollInterval: 250ms
  timeout: 2m
`)

	cfg := appchains.DefaultConfig()
	if err := config.Merge(&cfg, doc); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	exp := appchains.DefaultConfig()
	exp.Token = "abc"
	exp.Host = "localhost"
	exp.Port = 8443
	exp.PollInterval = 250 * time.Millisecond
	exp.Timeout = 2 * time.Minute

	if diff := cmp.Diff(exp, cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	if err := config.Merge(&cfg, []byte("appchains: [")); err == nil {
		t.Error("exp error for invalid yaml")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		config.EnvToken:        "tok",
		config.EnvHost:         "api.internal",
		config.EnvBeaconHost:   "beacon.internal",
		config.EnvScheme:       "http",
		config.EnvPort:         "8080",
		config.EnvPollInterval: "5s",
		config.EnvTimeout:      "1m",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := appchains.DefaultConfig()
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	exp := appchains.DefaultConfig()
	exp.Token = "tok"
	exp.Host = "api.internal"
	exp.BeaconHost = "beacon.internal"
	exp.Scheme = "http"
	exp.Port = 8080
	exp.PollInterval = 5 * time.Second
	exp.Timeout = time.Minute

	if diff := cmp.Diff(exp, cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	for _, key := range []string{config.EnvPort, config.EnvPollInterval, config.EnvTimeout} {
		t.Run("bad "+key, func(t *testing.T) {
			bad := func(k string) (string, bool) {
				if k == key {
					return "nope", true
				}
				return "", false
			}
			cfg := appchains.DefaultConfig()
			if err := config.ApplyEnv(&cfg, bad); err == nil {
				t.Errorf("exp error for invalid %s", key)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{config.EnvToken, config.EnvHost, config.EnvBeaconHost, config.EnvScheme, config.EnvPort, config.EnvPollInterval, config.EnvTimeout} {
		t.Setenv(key, "")
	}
	t.Setenv(config.EnvToken, "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("appchains:\n  token: from-file\n  host: localhost\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	if cfg.Token != "from-env" {
		t.Errorf("exp environment to win over file, got token %q", cfg.Token)
	}
	if cfg.Host != "localhost" {
		t.Errorf("exp host from file, got %q", cfg.Host)
	}
	if cfg.Port != appchains.DefaultPort {
		t.Errorf("exp default port, got %d", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("exp loaded config to validate, got: %v", err)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("exp error for missing explicit config file")
	}
}
