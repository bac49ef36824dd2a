package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadDaemon_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadDaemon(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadDaemon() error = %v", err)
	}
	def := DefaultDaemon()
	if cfg.DataRoot != def.DataRoot || cfg.BasePort != def.BasePort || cfg.Image != def.Image {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadDaemon_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "base-domain: example.com\nbootstrap-delay: 500ms\nbase-port: 9000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadDaemon(path)
	if err != nil {
		t.Fatalf("LoadDaemon() error = %v", err)
	}
	if cfg.BaseDomain != "example.com" {
		t.Fatalf("BaseDomain = %q", cfg.BaseDomain)
	}
	if cfg.BasePort != 9000 {
		t.Fatalf("BasePort = %d", cfg.BasePort)
	}
	if cfg.BootstrapDelay.Std() != 500*time.Millisecond {
		t.Fatalf("BootstrapDelay = %v", cfg.BootstrapDelay.Std())
	}
	// Untouched fields keep their defaults.
	if cfg.Image != DefaultDaemon().Image {
		t.Fatalf("Image = %q, want default", cfg.Image)
	}
	if cfg.Defaults.MemoryLimit != "256m" {
		t.Fatalf("Defaults.MemoryLimit = %q", cfg.Defaults.MemoryLimit)
	}
}

func TestLoadDaemon_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDaemon(path); err == nil {
		t.Fatal("LoadDaemon() should fail on malformed yaml")
	}
}

func TestDurationYAML(t *testing.T) {
	var doc struct {
		Delay Duration `yaml:"delay"`
	}
	if err := yaml.Unmarshal([]byte("delay: 1m30s\n"), &doc); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if doc.Delay.Std() != 90*time.Second {
		t.Fatalf("parsed = %v", doc.Delay.Std())
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "delay: 1m30s\n" {
		t.Fatalf("marshaled = %q", out)
	}

	if err := yaml.Unmarshal([]byte("delay: not-a-duration\n"), &doc); err == nil {
		t.Fatal("unmarshal should reject garbage")
	}
}
