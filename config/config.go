// Package config loads native-bridge settings from defaults, an optional YAML
// file and NATIVEBRIDGE_ environment variables.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/native-bridge/errors"
)

// EnvPrefix prefixes every environment override, e.g. NATIVEBRIDGE_LOG_LEVEL.
const EnvPrefix = "NATIVEBRIDGE"

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "nativebridge.yaml"

// Config holds application configuration.
type Config struct {
	Library LibraryConfig `mapstructure:"library" yaml:"library"`
	Load    LoadConfig    `mapstructure:"load" yaml:"load"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Status  StatusConfig  `mapstructure:"status" yaml:"status"`
	Shell   ShellConfig   `mapstructure:"shell" yaml:"shell"`
}

// LibraryConfig selects the native library and how it is executed.
type LibraryConfig struct {
	Name             string   `mapstructure:"name" yaml:"name"`
	Paths            []string `mapstructure:"paths" yaml:"paths"`
	WASI             bool     `mapstructure:"wasi" yaml:"wasi"`
	MemoryLimitPages uint32   `mapstructure:"memory_limit_pages" yaml:"memory_limit_pages"`
}

// LoadConfig controls retries of transient read failures.
type LoadConfig struct {
	Retries  int           `mapstructure:"retries" yaml:"retries"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StatusConfig enables the HTTP status server when Addr is set.
type StatusConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type ShellConfig struct {
	Interactive bool `mapstructure:"interactive" yaml:"interactive"`
}

// Defaults registers the default value of every key on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("library.name", "MultiPlatformGUI")
	v.SetDefault("library.paths", []string{".", "lib"})
	v.SetDefault("library.wasi", true)
	v.SetDefault("library.memory_limit_pages", 0)
	v.SetDefault("load.retries", 0)
	v.SetDefault("load.interval", 200*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("status.addr", "")
	v.SetDefault("shell.interactive", false)
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	Defaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration. An explicit path must exist; without one,
// DefaultFile is read from the working directory if present.
func Load(path string) (*Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Read loads the config file into v.
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read config "+path)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read config "+DefaultFile)
	}
	return nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the bridge cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Library.Name) == "" {
		return errors.InvalidInput(errors.PhaseConfig, "library.name must not be empty")
	}
	if c.Load.Retries < 0 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("load.retries must be >= 0, got %d", c.Load.Retries))
	}
	if c.Load.Interval < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "load.interval must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log.level")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("log.format must be console or json, got %q", c.Log.Format))
	}
	return nil
}

// WriteYAML renders the effective configuration.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Logger builds a zap logger: JSON for production use, console otherwise.
func (c LogConfig) Logger(w zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log.level")
	}

	var enc zapcore.Encoder
	if c.Format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		enc = zapcore.NewConsoleEncoder(ec)
	}
	return zap.New(zapcore.NewCore(enc, w, level)), nil
}
