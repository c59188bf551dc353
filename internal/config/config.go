// Package config reads the player settings from flags, the environment
// and an optional YAML profile.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

const Version = "0.3.0"

type Config struct {
	Directory   string        `yaml:"-"`
	Chart       int           `yaml:"-"`
	Difficulty  int           `yaml:"-"`
	Offset      int           `yaml:"offset"`       // Global offset, ms
	JudgeOffset int           `yaml:"judge_offset"` // Judge window tweak, ms
	ScrollSpeed float64       `yaml:"scroll_speed"` // Rows per second at SV 1
	FramePeriod time.Duration `yaml:"frame_period"`
	Keys        string        `yaml:"keys"` // One key per lane
	Database    string        `yaml:"database"`
	Autoplay    bool          `yaml:"-"`
	LogLevel    slog.Level    `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"` // Kept off the play screen
	Profile     string        `yaml:"-"`
}

func NewDefaultConfig() *Config {
	return &Config{
		ScrollSpeed: 20,
		FramePeriod: 4 * time.Millisecond,
		Keys:        "dfjk",
		Database:    "./scores.db",
		LogLevel:    slog.LevelInfo,
		LogFile:     "tandem.log",
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Directory, validation.Required),
		validation.Field(&c.Chart, validation.Min(0)),
		validation.Field(&c.Difficulty, validation.Min(0)),
		validation.Field(&c.Offset, validation.Min(-1000), validation.Max(1000)),
		validation.Field(&c.ScrollSpeed, validation.Required, validation.Min(1.0)),
		validation.Field(&c.FramePeriod, validation.Required, validation.Min(time.Millisecond), validation.Max(100*time.Millisecond)),
		validation.Field(&c.Keys, validation.Required, validation.By(distinctLaneKeys)),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.LogFile, validation.Required),
	)
}

func distinctLaneKeys(value interface{}) error {
	keys := []rune(value.(string))
	if len(keys) != 4 {
		return errors.New("must name exactly 4 keys")
	}
	seen := map[rune]bool{}
	for _, k := range keys {
		if seen[k] {
			return fmt.Errorf("key %q used twice", k)
		}
		seen[k] = true
	}
	return nil
}

// KeyLane returns the lane of key r, or -1.
func (c *Config) KeyLane(r rune) int {
	for i, k := range []rune(c.Keys) {
		if k == r {
			return i
		}
	}
	return -1
}

// Parse reads the command line. Without a profile the flags (or their
// TANDEM_* environment variables) are used as is. With one, profile values
// replace the defaults and flags given explicitly override the profile.
func Parse(args []string) (*Config, error) {
	flags := NewDefaultConfig()
	var level string
	set := map[string]bool{}
	mark := func(name string) kingpin.Action {
		return func(*kingpin.ParseContext) error {
			set[name] = true
			return nil
		}
	}

	app := kingpin.New("tandem", "Keyboard and mouse rhythm game")
	app.Version(Version)
	app.DefaultEnvars()
	app.Arg("directory", "Song/chart directory").Required().ExistingDirVar(&flags.Directory)
	app.Flag("chart", "Chart index within the directory").Default("0").Short('c').IntVar(&flags.Chart)
	app.Flag("difficulty", "Difficulty index").Default("0").Short('d').IntVar(&flags.Difficulty)
	app.Flag("offset", "Global offset in ms").Default("0").Short('o').Action(mark("offset")).IntVar(&flags.Offset)
	app.Flag("judge-offset", "Judge window offset in ms, within ±5").Default("0").Action(mark("judge-offset")).IntVar(&flags.JudgeOffset)
	app.Flag("scroll-speed", "Rows per second").Default("20").Short('s').Action(mark("scroll-speed")).Float64Var(&flags.ScrollSpeed)
	app.Flag("frame-period", "Render frame period").Default("4ms").Short('p').Action(mark("frame-period")).DurationVar(&flags.FramePeriod)
	app.Flag("keys", "Keys for the four lanes").Default("dfjk").Short('k').Action(mark("keys")).StringVar(&flags.Keys)
	app.Flag("database", "Score database").Default("./scores.db").Action(mark("database")).StringVar(&flags.Database)
	app.Flag("autoplay", "Let the game play itself").Short('a').BoolVar(&flags.Autoplay)
	app.Flag("log-level", "debug, info, warn or error").Default("info").Action(mark("log-level")).EnumVar(&level, "debug", "info", "warn", "error")
	app.Flag("log-file", "Log destination").Default("tandem.log").Action(mark("log-file")).StringVar(&flags.LogFile)
	app.Flag("profile", "YAML profile with offsets and keys").Short('P').StringVar(&flags.Profile)

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}
	if err := flags.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg := flags
	if flags.Profile != "" {
		cfg = NewDefaultConfig()
		if err := Load(flags.Profile, cfg); err != nil {
			return nil, err
		}
		cfg.Directory = flags.Directory
		cfg.Chart = flags.Chart
		cfg.Difficulty = flags.Difficulty
		cfg.Autoplay = flags.Autoplay
		cfg.Profile = flags.Profile
		if set["offset"] {
			cfg.Offset = flags.Offset
		}
		if set["judge-offset"] {
			cfg.JudgeOffset = flags.JudgeOffset
		}
		if set["scroll-speed"] {
			cfg.ScrollSpeed = flags.ScrollSpeed
		}
		if set["frame-period"] {
			cfg.FramePeriod = flags.FramePeriod
		}
		if set["keys"] {
			cfg.Keys = flags.Keys
		}
		if set["database"] {
			cfg.Database = flags.Database
		}
		if set["log-level"] {
			cfg.LogLevel = flags.LogLevel
		}
		if set["log-file"] {
			cfg.LogFile = flags.LogFile
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Load reads a YAML profile into target.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

// Save writes the persistent part of the configuration to a profile.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}
	return nil
}
