package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"feedsim/catalog"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultBufferPath  = "pathway_data.json"
	DefaultCapacity    = 100
	DefaultMinInterval = 30 * time.Second
	DefaultMaxInterval = 60 * time.Second
	DefaultErrorDelay  = 5 * time.Second
	DefaultServerAddr  = ":3000"
)

// Configuration validation errors
var (
	ErrInvalidCapacity  = errors.New("buffer.capacity must be at least 1")
	ErrMissingPath      = errors.New("buffer.path is required")
	ErrInvalidInterval  = errors.New("schedule.min_interval must be positive")
	ErrIntervalOrder    = errors.New("schedule.min_interval cannot exceed schedule.max_interval")
	ErrInvalidRetryWait = errors.New("schedule.error_delay cannot be negative")
)

// Duration wraps time.Duration so it reads and writes as "30s" in TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// TomlBuffer configures the persisted buffer file
type TomlBuffer struct {
	Path        string `toml:"path" validate:"required"`
	Capacity    int    `toml:"capacity"`
	AtomicWrite bool   `toml:"atomic_write"`
}

// TomlSchedule configures the generation loop timing
type TomlSchedule struct {
	MinInterval Duration `toml:"min_interval"`
	MaxInterval Duration `toml:"max_interval"`
	ErrorDelay  Duration `toml:"error_delay"`
}

// TomlArchive configures the optional SQLite history. An empty path disables it.
type TomlArchive struct {
	Path string `toml:"path,omitempty"`
}

// TomlServer configures the HTTP server used by the serve command
type TomlServer struct {
	Addr string `toml:"addr" validate:"required"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Buffer   TomlBuffer       `toml:"buffer"`
	Schedule TomlSchedule     `toml:"schedule"`
	Archive  TomlArchive      `toml:"archive"`
	Server   TomlServer       `toml:"server"`
	Catalog  *catalog.Catalog `toml:"catalog,omitempty"`
}

var validate = validator.New()

// Defaults returns the configuration used when no file is given
func Defaults() *TomlConfig {
	return &TomlConfig{
		Buffer: TomlBuffer{
			Path:     DefaultBufferPath,
			Capacity: DefaultCapacity,
		},
		Schedule: TomlSchedule{
			MinInterval: Duration{DefaultMinInterval},
			MaxInterval: Duration{DefaultMaxInterval},
			ErrorDelay:  Duration{DefaultErrorDelay},
		},
		Server: TomlServer{
			Addr: DefaultServerAddr,
		},
		Catalog: catalog.Default(),
	}
}

// LoadConfig reads a TOML file on top of the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Defaults()
	config.Catalog = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.Catalog == nil {
		config.Catalog = catalog.Default()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration as TOML
func (c *TomlConfig) SaveConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

func (c *TomlConfig) Validate() error {
	if c.Buffer.Path == "" {
		return ErrMissingPath
	}

	if c.Buffer.Capacity < 1 {
		return ErrInvalidCapacity
	}

	if c.Schedule.MinInterval.Duration <= 0 {
		return ErrInvalidInterval
	}

	if c.Schedule.MinInterval.Duration > c.Schedule.MaxInterval.Duration {
		return ErrIntervalOrder
	}

	if c.Schedule.ErrorDelay.Duration < 0 {
		return ErrInvalidRetryWait
	}

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Catalog != nil {
		return c.Catalog.Validate()
	}

	return nil
}
