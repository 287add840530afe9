package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConfig struct {
	Port int `yaml:"port"`
}

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive")
	}
	return nil
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_CFG_NAME", "expanded")

	var cfg testConfig
	if err := Parse(strings.NewReader("name: ${TEST_CFG_NAME}\nport: 9000\n"), &cfg); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Name != "expanded" {
		t.Errorf("name = %q, want expanded", cfg.Name)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d", cfg.Port)
	}
}

func TestParse_ValidationFailure(t *testing.T) {
	var cfg validatedConfig
	err := Parse(strings.NewReader("port: -1\n"), &cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadIfExists(t *testing.T) {
	dir := t.TempDir()

	// Missing file keeps existing values and still validates.
	cfg := validatedConfig{Port: 8080}
	if err := LoadIfExists(filepath.Join(dir, "nope.yaml"), &cfg); err != nil {
		t.Fatalf("LoadIfExists missing: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}

	// Present file overrides.
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadIfExists(path, &cfg); err != nil {
		t.Fatalf("LoadIfExists present: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
}
