// Package config loads the CLI and server configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// SCADWRAP_* environment variables (a .env file is loaded first when present).
// The "openscad" section decodes into options.Options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yannickbattail/scadwrap/pkg/options"
)

// EnvPrefix prefixes every environment override, e.g. SCADWRAP_OPENSCAD_EXECUTABLE.
const EnvPrefix = "SCADWRAP"

// Store drivers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the effective configuration.
type Config struct {
	OpenSCAD options.Options `mapstructure:"openscad" yaml:"openscad"`
	Log      LogConfig       `mapstructure:"log" yaml:"log"`
	Server   ServerConfig    `mapstructure:"server" yaml:"server"`
	Store    StoreConfig     `mapstructure:"store" yaml:"store"`
	Lock     LockConfig      `mapstructure:"lock" yaml:"lock"`
	// Strict validates parameters against the model definition before each call.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
	// ModelsDir is the root model names are resolved against.
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir"`
}

type StoreConfig struct {
	Driver string        `mapstructure:"driver" yaml:"driver"`
	Dir    string        `mapstructure:"dir" yaml:"dir"`
	Redis  RedisConfig   `mapstructure:"redis" yaml:"redis"`
	TTL    time.Duration `mapstructure:"ttl" yaml:"ttl"`
	// EncryptionKeys are base64 AES-256 keys; the first encrypts, the others
	// only decrypt records written before a rotation.
	EncryptionKeys []string `mapstructure:"encryption_keys" yaml:"-"`
	// Redact lists patterns masked in stored tool output.
	Redact []string `mapstructure:"redact" yaml:"redact,omitempty"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// LockConfig enables the Redis lock around definition extraction.
// It requires the redis store driver.
type LockConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		OpenSCAD: options.Default(),
		Log:      LogConfig{Level: "info", Format: "text"},
		Server:   ServerConfig{Port: 8080, ModelsDir: "."},
		Store: StoreConfig{
			Driver: StoreMemory,
			Dir:    ".scadwrap/results",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "scadwrap:"},
		},
		Lock: LockConfig{TTL: 2 * time.Minute},
	}
}

// LoadDotEnv loads a .env file into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads the configuration. An empty path looks for scadwrap.yaml in the
// working directory and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("scadwrap")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := Default()
	if err := decode(v.AllSettings(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decode applies settings on top of the defaults already in out.
func decode(settings map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			options.CameraDecodeHook(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(settings)
}

// Validate checks the tool options and the store settings.
func (c Config) Validate() error {
	if err := c.OpenSCAD.Validate(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Lock.Enabled && c.Store.Driver != StoreRedis {
		return fmt.Errorf("lock requires the %s store driver", StoreRedis)
	}
	return nil
}

// YAML renders the effective configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// setDefaults registers every scalar key so environment overrides are seen by AllSettings.
func setDefaults(v *viper.Viper) {
	d := Default()
	o := d.OpenSCAD

	v.SetDefault("openscad.executable", o.Executable)
	v.SetDefault("openscad.output_dir", o.OutputDir)
	v.SetDefault("openscad.backend", string(o.Backend))
	v.SetDefault("openscad.quiet", o.Quiet)
	v.SetDefault("openscad.hardwarnings", o.HardWarnings)
	v.SetDefault("openscad.check_parameters", o.CheckParameters)
	v.SetDefault("openscad.check_parameter_ranges", o.CheckParameterRanges)
	v.SetDefault("openscad.debug", o.Debug)
	v.SetDefault("openscad.trust_python", o.TrustPython)
	v.SetDefault("openscad.python_module", o.PythonModule)
	v.SetDefault("openscad.animation.frames", o.Animation.Frames)
	v.SetDefault("openscad.animation.delay_ms", o.Animation.DelayMs)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.models_dir", d.Server.ModelsDir)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.ttl", d.Store.TTL.String())
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", d.Store.Redis.Prefix)
	// Lists have no default; binding keeps them nil unless set.
	_ = v.BindEnv("store.encryption_keys")
	_ = v.BindEnv("store.redact")

	v.SetDefault("lock.enabled", d.Lock.Enabled)
	v.SetDefault("lock.ttl", d.Lock.TTL.String())

	v.SetDefault("strict", d.Strict)
}
