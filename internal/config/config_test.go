package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clashlane/internal/battle"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_URL", "GEMINI_API_KEY", "CLASHLANE_TIER", "CLASHLANE_SEED"} {
		t.Setenv(k, "")
	}
}

func TestDefaultsMatchBattleRules(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rules() != battle.DefaultRules() {
		t.Fatalf("rules = %+v, want %+v", cfg.Rules(), battle.DefaultRules())
	}
	if cfg.Tier() != battle.TierCounter {
		t.Fatalf("tier = %v, want medium", cfg.Tier())
	}
	if cfg.FrameInterval() != time.Second/30 {
		t.Fatalf("frame interval = %v", cfg.FrameInterval())
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "clashlane.yaml")
	body := `
server:
  port: "9000"
match:
  duration: 90s
  double_elixir_at: 30s
  tier: hard
  seed: 42
flavor:
  timeout: 3s
audio:
  enabled: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.Match.Duration != 90*time.Second || cfg.Match.DoubleElixirAt != 30*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Tier() != battle.TierPositional || cfg.Seed() != 42 {
		t.Fatalf("tier=%v seed=%d", cfg.Tier(), cfg.Seed())
	}
	if cfg.Audio.Enabled {
		t.Fatal("audio should be disabled by the file")
	}
	if cfg.Match.SecondsPerElixir != 2.8 {
		t.Fatalf("unset keys should keep defaults, got %v", cfg.Match.SecondsPerElixir)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7777")
	t.Setenv("CLASHLANE_TIER", "1")
	t.Setenv("CLASHLANE_SEED", "99")
	t.Setenv("GEMINI_API_KEY", "k")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7777" || cfg.Tier() != battle.TierReactive || cfg.Seed() != 99 || cfg.Flavor.APIKey != "k" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		body string
		want error
	}{
		{name: "bad tier", env: map[string]string{"CLASHLANE_TIER": "nightmare"}, want: ErrTier},
		{name: "economy after end", body: "match:\n  duration: 60s\n  double_elixir_at: 60s\n", want: ErrEconomy},
		{name: "zero duration", body: "match:\n  duration: 0s\n", want: ErrDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.body != "" {
				path = filepath.Join(t.TempDir(), "c.yaml")
				if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := Load(path); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadRejectsBadSeed(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLASHLANE_SEED", "abc")
	if _, err := Load(""); err == nil {
		t.Fatal("non-numeric seed accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
