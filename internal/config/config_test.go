package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DOCNUM_API_KEY", "WORKER_COUNT", "JOB_TTL", "DOCNUM_TEMPLATES", "DOCNUM_GROUP_FIELD"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %s", cfg.JobTTL)
	}
	if cfg.GroupField != "numGroupName" {
		t.Errorf("expected group field %q, got %q", "numGroupName", cfg.GroupField)
	}
	if len(cfg.TemplatePaths) != 0 {
		t.Errorf("expected no templates, got %v", cfg.TemplatePaths)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without api key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("MAX_BATCH_CONCURRENCY", "3")
	t.Setenv("DOCNUM_TEMPLATES", " a.md, ,b.md ")
	t.Setenv("DOCNUM_KEEP_DEFAULT_TEMPLATE", "true")
	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.MaxBatchConcurrency != 3 {
		t.Errorf("expected 3, got %d", cfg.MaxBatchConcurrency)
	}
	if len(cfg.TemplatePaths) != 2 || cfg.TemplatePaths[0] != "a.md" || cfg.TemplatePaths[1] != "b.md" {
		t.Errorf("unexpected template paths %v", cfg.TemplatePaths)
	}
	if !cfg.KeepDefaultTemplate {
		t.Error("expected KeepDefaultTemplate")
	}
}

func TestTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tmpl.md")
	if err := os.WriteFile(path, []byte(":::num{reset assign}\n## :num\n:::\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := Config{APIKey: "k", TemplatePaths: []string{path}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := cfg.Templates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != ":::num{reset assign}\n## :num\n:::\n" {
		t.Errorf("unexpected templates %q", got)
	}

	cfg.TemplatePaths = append(cfg.TemplatePaths, filepath.Join(dir, "missing.md"))
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing template")
	}
}
