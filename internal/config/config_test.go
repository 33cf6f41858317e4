package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := FromEnv(dir)

	if cfg.TicketFile != filepath.Join(dir, DefaultTicketFile) {
		t.Errorf("TicketFile = %q", cfg.TicketFile)
	}
	if cfg.OrgFile != filepath.Join(dir, DefaultOrgFile) {
		t.Errorf("OrgFile = %q", cfg.OrgFile)
	}
	if cfg.OutputFile != filepath.Join(dir, DefaultOutputFile) {
		t.Errorf("OutputFile = %q", cfg.OutputFile)
	}
	if cfg.RegenerateTimeout != 60*time.Second {
		t.Errorf("RegenerateTimeout = %v, want 60s", cfg.RegenerateTimeout)
	}
	if cfg.ListenAddr != ":8001" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "tickets.xlsx")
	t.Setenv("TICKET_FILE", abs)
	t.Setenv("ORG_FILE", "")
	t.Setenv("OUTPUT_FILE", "out/report.json")
	t.Setenv("REGENERATE_TIMEOUT_SECONDS", "5")
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")

	cfg := FromEnv(dir)

	if cfg.TicketFile != abs {
		t.Errorf("absolute TicketFile should be kept, got %q", cfg.TicketFile)
	}
	if cfg.OrgFile != "" {
		t.Errorf("empty ORG_FILE should disable resolution, got %q", cfg.OrgFile)
	}
	if cfg.OutputFile != filepath.Join(dir, "out", "report.json") {
		t.Errorf("OutputFile = %q", cfg.OutputFile)
	}
	if cfg.RegenerateTimeout != 5*time.Second {
		t.Errorf("RegenerateTimeout = %v", cfg.RegenerateTimeout)
	}
	if !cfg.EnableMermaidCharts {
		t.Error("EnableMermaidCharts should be true")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"ZeroTimeout", func(c *AppConfig) { c.RegenerateTimeout = 0 }},
		{"NoTicketFile", func(c *AppConfig) { c.TicketFile = "" }},
		{"BackupIsSource", func(c *AppConfig) { c.BackupFile = c.TicketFile }},
		{"NoUploadLimit", func(c *AppConfig) { c.MaxUploadMB = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv(t.TempDir())
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
