package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Profile struct {
		Dir string `yaml:"dir"` // ledger + quiz documents; defaults to ~/.qdb
	} `yaml:"profile"`
	Catalog struct {
		Dir          string `yaml:"dir"` // quiz document directory, defaults to the profile dir
		PostgresURL  string `yaml:"postgres_url"`
		FetchTimeout string `yaml:"fetch_timeout"`
	} `yaml:"catalog"`
	Remote struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"remote"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Aggregator struct {
		Port        string `yaml:"port"`
		PostgresURL string `yaml:"postgres_url"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"aggregator"`
}

// Load reads YAML config from path. A missing file is not an error: the tool
// runs fine on defaults alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// ProfileDir resolves the learner profile directory, defaulting to ~/.qdb.
func (c Config) ProfileDir() string {
	if c.Profile.Dir != "" {
		return c.Profile.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qdb"
	}
	return filepath.Join(home, ".qdb")
}

// CatalogDir resolves the quiz document directory, defaulting to the profile
// directory.
func (c Config) CatalogDir() string {
	if c.Catalog.Dir != "" {
		return c.Catalog.Dir
	}
	return c.ProfileDir()
}
