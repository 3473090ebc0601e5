package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Sim     SimConfig
	Logging LogConfig
	HTTP    HTTPConfig
}

// SimConfig holds the waiting-room simulation parameters.
type SimConfig struct {
	// Capacity is the number of chairs in the waiting room.
	Capacity int `envconfig:"SIM_CAPACITY" default:"3" yaml:"capacity"`
	// BurstSize is the number of clients released simultaneously.
	BurstSize int `envconfig:"SIM_BURST_SIZE" default:"12" yaml:"burst_size"`
	// HaircutMinMS/HaircutMaxMS bound the random service duration.
	HaircutMinMS int `envconfig:"SIM_HAIRCUT_MIN_MS" default:"200" yaml:"haircut_min_ms"`
	HaircutMaxMS int `envconfig:"SIM_HAIRCUT_MAX_MS" default:"400" yaml:"haircut_max_ms"`
	// FibWork is the depth of the naive recursive Fibonacci used as
	// synthetic CPU load per served client.
	FibWork int `envconfig:"SIM_FIB_WORK" default:"35" yaml:"fib_work"`
	// LockHoldMS is held inside critical sections to widen observable
	// interleavings. Zero disables the hold.
	LockHoldMS int `envconfig:"SIM_LOCK_HOLD_MS" default:"300" yaml:"lock_hold_ms"`
	// Safety selects the real mutex. Disabling it swaps in a no-op lock
	// so races become observable.
	Safety bool `envconfig:"SIM_SAFETY" default:"true" yaml:"safety"`
	// Seed drives the haircut-duration draws only, never scheduling.
	Seed int64 `envconfig:"SIM_SEED" default:"42" yaml:"seed"`
	// PollMS is the barber's bounded semaphore poll interval.
	PollMS int `envconfig:"SIM_POLL_MS" default:"100" yaml:"poll_ms"`
	// SettleMS is the post-join delay that lets in-flight log writes land.
	SettleMS int `envconfig:"SIM_SETTLE_MS" default:"200" yaml:"settle_ms"`
	// JoinTimeoutMS bounds the best-effort join on the barber.
	JoinTimeoutMS int `envconfig:"SIM_JOIN_TIMEOUT_MS" default:"5000" yaml:"join_timeout_ms"`
	// Repeat runs that many consecutive bursts.
	Repeat int `envconfig:"SIM_REPEAT" default:"1" yaml:"repeat"`
	// LogDir is where per-run event logs are written.
	LogDir string `envconfig:"SIM_LOG_DIR" default:"." yaml:"log_dir"`
}

// LogConfig holds operational logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// HTTPConfig holds the optional observation endpoint configuration.
type HTTPConfig struct {
	// Addr enables the /metrics endpoint when non-empty, e.g. ":9090".
	Addr string `envconfig:"HTTP_ADDR" default:"" yaml:"addr"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Sim: SimConfig{
			Capacity:      3,
			BurstSize:     12,
			HaircutMinMS:  200,
			HaircutMaxMS:  400,
			FibWork:       35,
			LockHoldMS:    300,
			Safety:        true,
			Seed:          42,
			PollMS:        100,
			SettleMS:      200,
			JoinTimeoutMS: 5000,
			Repeat:        1,
			LogDir:        ".",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// ApplyScenario overlays values from a YAML scenario file onto cfg.
func (c *Config) ApplyScenario(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	// The section pointers reference the live sections so a partial
	// scenario only touches the keys it names.
	overlay := struct {
		Sim     *SimConfig  `yaml:"sim"`
		Logging *LogConfig  `yaml:"logging"`
		HTTP    *HTTPConfig `yaml:"http"`
	}{
		Sim:     &c.Sim,
		Logging: &c.Logging,
		HTTP:    &c.HTTP,
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	return nil
}

// Validate rejects parameter combinations the simulation cannot run with.
func (c *Config) Validate() error {
	s := c.Sim
	if s.Capacity < 1 {
		return fmt.Errorf("capacity must be positive, got %d", s.Capacity)
	}
	if s.BurstSize < 0 {
		return fmt.Errorf("burst size must be non-negative, got %d", s.BurstSize)
	}
	if s.HaircutMinMS < 0 || s.HaircutMaxMS < s.HaircutMinMS {
		return fmt.Errorf("haircut range [%d, %d] is invalid", s.HaircutMinMS, s.HaircutMaxMS)
	}
	if s.FibWork < 0 {
		return fmt.Errorf("fib work must be non-negative, got %d", s.FibWork)
	}
	if s.LockHoldMS < 0 {
		return fmt.Errorf("lock hold must be non-negative, got %d", s.LockHoldMS)
	}
	if s.PollMS < 1 {
		return fmt.Errorf("poll interval must be positive, got %d", s.PollMS)
	}
	if s.Repeat < 1 {
		return fmt.Errorf("repeat must be positive, got %d", s.Repeat)
	}
	return nil
}

// Poll returns the barber poll interval as a duration.
func (s SimConfig) Poll() time.Duration { return time.Duration(s.PollMS) * time.Millisecond }

// Settle returns the post-burst settle delay as a duration.
func (s SimConfig) Settle() time.Duration { return time.Duration(s.SettleMS) * time.Millisecond }

// JoinTimeout returns the barber join bound as a duration.
func (s SimConfig) JoinTimeout() time.Duration {
	return time.Duration(s.JoinTimeoutMS) * time.Millisecond
}

// LockHold returns the critical-section hold as a duration.
func (s SimConfig) LockHold() time.Duration { return time.Duration(s.LockHoldMS) * time.Millisecond }
