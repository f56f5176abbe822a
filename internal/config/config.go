// Package config loads client settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adamwoolhether/appchains"
	"gopkg.in/yaml.v3"
)

// Environment variables applied on top of the file.
const (
	EnvToken        = "APPCHAINS_TOKEN"
	EnvHost         = "APPCHAINS_HOST"
	EnvBeaconHost   = "APPCHAINS_BEACON_HOST"
	EnvPort         = "APPCHAINS_PORT"
	EnvScheme       = "APPCHAINS_SCHEME"
	EnvPollInterval = "APPCHAINS_POLL_INTERVAL"
	EnvTimeout      = "APPCHAINS_TIMEOUT"
)

// File is the on-disk layout.
type File struct {
	AppChains appchains.Config `yaml:"appchains"`
}

// DefaultPath is used when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "appchains.yaml"
	}
	return filepath.Join(dir, "appchains", "config.yaml")
}

// Load starts from [appchains.DefaultConfig], merges the YAML file at path
// and then the APPCHAINS_* environment. A missing file is not an error
// when path is empty.
func Load(path string) (appchains.Config, error) {
	cfg := appchains.DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Merge(&cfg, data); err != nil {
			return appchains.Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return appchains.Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return appchains.Config{}, err
	}

	return cfg, nil
}

// Merge overlays the YAML document data onto cfg. Keys absent from the
// document keep their current value.
func Merge(cfg *appchains.Config, data []byte) error {
	f := File{AppChains: *cfg}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	*cfg = f.AppChains
	return nil
}

// ApplyEnv overrides cfg from the environment as seen through lookup.
func ApplyEnv(cfg *appchains.Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvToken); ok {
		cfg.Token = v
	}
	if v, ok := lookup(EnvHost); ok && v != "" {
		cfg.Host = v
	}
	if v, ok := lookup(EnvBeaconHost); ok && v != "" {
		cfg.BeaconHost = v
	}
	if v, ok := lookup(EnvScheme); ok && v != "" {
		cfg.Scheme = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Port = port
	}
	if v, ok := lookup(EnvPollInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollInterval, err)
		}
		cfg.PollInterval = d
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}

	return nil
}
