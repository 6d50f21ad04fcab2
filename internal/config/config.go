package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"clashlane/internal/battle"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Match    MatchConfig    `yaml:"match"`
	Flavor   FlavorConfig   `yaml:"flavor"`
	Audio    AudioConfig    `yaml:"audio"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Port       string `yaml:"port"`
	FrameRate  int    `yaml:"frame_rate"`
	SendBuffer int    `yaml:"send_buffer"`
}

type MatchConfig struct {
	Duration         time.Duration `yaml:"duration"`
	DoubleElixirAt   time.Duration `yaml:"double_elixir_at"`
	SecondsPerElixir float64       `yaml:"seconds_per_elixir"`
	MaxElixir        float64       `yaml:"max_elixir"`
	StartingElixir   float64       `yaml:"starting_elixir"`
	SuddenDeathDecay float64       `yaml:"sudden_death_decay"`
	DrawEpsilon      float64       `yaml:"draw_epsilon"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	Seed             int64         `yaml:"seed"` // 0 picks a time-based seed
	Tier             string        `yaml:"tier"`
}

type FlavorConfig struct {
	APIKey        string        `yaml:"api_key"`
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
	TauntCooldown time.Duration `yaml:"taunt_cooldown"`
	OverlayBuffer int           `yaml:"overlay_buffer"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty disables profile persistence
}

const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-preview-09-2025:generateContent"

func Default() Config {
	r := battle.DefaultRules()
	return Config{
		Server: ServerConfig{Port: "8080", FrameRate: 30, SendBuffer: 256},
		Match: MatchConfig{
			Duration:         r.MatchDuration,
			DoubleElixirAt:   r.DoubleElixirAt,
			SecondsPerElixir: r.SecondsPerElixir,
			MaxElixir:        r.MaxElixir,
			StartingElixir:   r.StartingElixir,
			SuddenDeathDecay: r.SuddenDeathDecay,
			DrawEpsilon:      r.DrawEpsilon,
			PollInterval:     r.PollInterval,
			Tier:             "medium",
		},
		Flavor: FlavorConfig{
			Endpoint:      DefaultEndpoint,
			Timeout:       8 * time.Second,
			TauntCooldown: 5 * time.Second,
			OverlayBuffer: 16,
		},
		Audio: AudioConfig{Enabled: true, SampleRate: 22050, Volume: 0.3},
	}
}

// Load layers defaults, the optional YAML file at path and environment
// overrides, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Flavor.APIKey = v
	}
	if v := os.Getenv("CLASHLANE_TIER"); v != "" {
		c.Match.Tier = v
	}
	if v := os.Getenv("CLASHLANE_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CLASHLANE_SEED: %w", err)
		}
		c.Match.Seed = seed
	}
	return nil
}

var (
	ErrDuration = errors.New("match durations must be positive")
	ErrEconomy  = errors.New("double elixir threshold must be shorter than the match")
	ErrTier     = errors.New("tier must be 1..3 or easy, medium, hard")
)

func (c Config) Validate() error {
	m := c.Match
	if m.Duration <= 0 || m.DoubleElixirAt <= 0 || m.PollInterval <= 0 {
		return ErrDuration
	}
	if m.DoubleElixirAt >= m.Duration {
		return ErrEconomy
	}
	if m.SecondsPerElixir <= 0 || m.MaxElixir <= 0 {
		return fmt.Errorf("elixir rate and cap must be positive, got %v and %v", m.SecondsPerElixir, m.MaxElixir)
	}
	if m.SuddenDeathDecay <= 0 {
		return fmt.Errorf("sudden death decay must be positive, got %v", m.SuddenDeathDecay)
	}
	if _, ok := battle.ParseTier(m.Tier); !ok {
		return fmt.Errorf("%w: %q", ErrTier, m.Tier)
	}
	if c.Server.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", c.Server.FrameRate)
	}
	return nil
}

func (c Config) Rules() battle.Rules {
	m := c.Match
	return battle.Rules{
		MatchDuration:    m.Duration,
		DoubleElixirAt:   m.DoubleElixirAt,
		SecondsPerElixir: m.SecondsPerElixir,
		MaxElixir:        m.MaxElixir,
		StartingElixir:   m.StartingElixir,
		SuddenDeathDecay: m.SuddenDeathDecay,
		DrawEpsilon:      m.DrawEpsilon,
		PollInterval:     m.PollInterval,
	}
}

// Tier returns the configured opponent tier. Load has already validated it.
func (c Config) Tier() battle.Tier {
	t, _ := battle.ParseTier(c.Match.Tier)
	return t
}

// Seed returns the configured seed or a time-based one.
func (c Config) Seed() int64 {
	if c.Match.Seed != 0 {
		return c.Match.Seed
	}
	return time.Now().UnixNano()
}

func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Server.FrameRate)
}
