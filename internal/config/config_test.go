package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PLAN_CACHE_BACKEND", "")
	t.Setenv("CATALOG_MAX_PAGES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Catalog.PageSize != 200 {
		t.Fatalf("expected default page size 200, got %d", cfg.Catalog.PageSize)
	}
	if cfg.Catalog.MaxPages != 50 {
		t.Fatalf("expected default max pages 50, got %d", cfg.Catalog.MaxPages)
	}
	if cfg.Catalog.Language != 2 {
		t.Fatalf("expected English language id 2, got %d", cfg.Catalog.Language)
	}
	if cfg.PlanCache.Backend != PlanCacheMemory {
		t.Fatalf("expected memory backend, got %q", cfg.PlanCache.Backend)
	}
	if cfg.OpenAI.EnableFallback {
		t.Fatalf("expected fallback disabled by default")
	}
	if len(cfg.HTTP.AllowOrigins) != 1 || cfg.HTTP.AllowOrigins[0] != "*" {
		t.Fatalf("expected wildcard origin, got %v", cfg.HTTP.AllowOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CATALOG_MAX_PAGES", "3")
	t.Setenv("PLAN_CACHE_BACKEND", "Redis")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Catalog.MaxPages != 3 {
		t.Fatalf("expected max pages 3, got %d", cfg.Catalog.MaxPages)
	}
	if cfg.PlanCache.Backend != PlanCacheRedis {
		t.Fatalf("expected redis backend, got %q", cfg.PlanCache.Backend)
	}
	if len(cfg.HTTP.AllowOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.HTTP.AllowOrigins)
	}
}

func TestValidateRequiresModelKey(t *testing.T) {
	cfg := &Config{
		Catalog:   CatalogConfig{BaseURL: "http://x", PageSize: 1, MaxPages: 1},
		PlanCache: PlanCacheConfig{Backend: PlanCacheMemory},
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{
		Catalog:   CatalogConfig{BaseURL: "http://x", PageSize: 1, MaxPages: 1},
		HTTP:      HTTPConfig{MaxBodyBytes: 1024},
		Gemini:    GeminiConfig{APIKey: "k"},
		PlanCache: PlanCacheConfig{Backend: "memcached"},
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "PLAN_CACHE_BACKEND") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}
