package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.DriftThreshold != 0.5 {
		t.Errorf("DriftThreshold = %v, want 0.5", cfg.DriftThreshold)
	}
	if cfg.RankLimit != 10 {
		t.Errorf("RankLimit = %d, want 10", cfg.RankLimit)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.DefaultContext.Location != "forest" || cfg.DefaultContext.Quest != "find_artifact" {
		t.Errorf("unexpected default context: %+v", cfg.DefaultContext)
	}
	if cfg.DefaultContext.HP == nil || *cfg.DefaultContext.HP != 80 {
		t.Error("default hp should be 80")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DRIFT_THRESHOLD", "0.7")
	t.Setenv("MEMORY_RANK_LIMIT", "5")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.DriftThreshold != 0.7 {
		t.Errorf("DriftThreshold = %v, want 0.7", cfg.DriftThreshold)
	}
	if cfg.RankLimit != 5 {
		t.Errorf("RankLimit = %d, want 5", cfg.RankLimit)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing openai key",
			env:  map[string]string{"LLM_PROVIDER": "openai", "OPENAI_API_KEY": ""},
		},
		{
			name: "missing gemini key",
			env:  map[string]string{"LLM_PROVIDER": "gemini", "GEMINI_API_KEY": ""},
		},
		{
			name: "unknown provider",
			env:  map[string]string{"LLM_PROVIDER": "anthropic", "OPENAI_API_KEY": "sk-test"},
		},
		{
			name: "threshold out of range",
			env:  map[string]string{"OPENAI_API_KEY": "sk-test", "DRIFT_THRESHOLD": "1.5"},
		},
		{
			name: "non-positive rank limit",
			env:  map[string]string{"OPENAI_API_KEY": "sk-test", "MEMORY_RANK_LIMIT": "0"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
