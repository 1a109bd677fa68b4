package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the base name of the configuration file looked up in the
// working directory; any extension viper understands is accepted.
const FileName = ".architect"

// EnvPrefix prefixes environment overrides, e.g. ARCHITECT_MIN=2 or
// ARCHITECT_PARSER_WORKERS=4.
const EnvPrefix = "ARCHITECT"

// Config represents the complete architect configuration
type Config struct {
	Input            string        `mapstructure:"input" yaml:"input" toml:"input"`
	Output           string        `mapstructure:"output" yaml:"output" toml:"output"`
	Min              int           `mapstructure:"min" yaml:"min" toml:"min" validate:"gte=0,lte=4294967295"`
	Pretty           bool          `mapstructure:"pretty" yaml:"pretty" toml:"pretty"`
	ReferenceCount   bool          `mapstructure:"referenceCount" yaml:"referenceCount" toml:"referenceCount"`
	Reduce           bool          `mapstructure:"reduce" yaml:"reduce" toml:"reduce"`
	WorkingDirectory bool          `mapstructure:"workingDirectory" yaml:"workingDirectory" toml:"workingDirectory"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout" toml:"timeout" validate:"gte=0"`
	Paths            []string      `mapstructure:"paths" yaml:"paths" toml:"paths" validate:"dive,required"`

	Parser  ParserConfig  `mapstructure:"parser" yaml:"parser" toml:"parser"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" toml:"logging"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-" yaml:"-" toml:"-"`
}

// ParserConfig controls source discovery and parsing
type ParserConfig struct {
	Workers     int      `mapstructure:"workers" yaml:"workers" toml:"workers" validate:"gte=0"`
	Extensions  []string `mapstructure:"extensions" yaml:"extensions" toml:"extensions" validate:"dive,required"`
	Ignore      []string `mapstructure:"ignore" yaml:"ignore" toml:"ignore"`
	MaxFileSize int64    `mapstructure:"maxFileSize" yaml:"maxFileSize" toml:"maxFileSize" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn warning error off silent none"`
	Format string `mapstructure:"format" yaml:"format" toml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Paths: []string{"."},
		Parser: ParserConfig{
			Extensions: []string{},
			Ignore:     []string{},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("input", cfg.Input)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("min", cfg.Min)
	v.SetDefault("pretty", cfg.Pretty)
	v.SetDefault("referenceCount", cfg.ReferenceCount)
	v.SetDefault("reduce", cfg.Reduce)
	v.SetDefault("workingDirectory", cfg.WorkingDirectory)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("paths", cfg.Paths)
	v.SetDefault("parser.workers", cfg.Parser.Workers)
	v.SetDefault("parser.extensions", cfg.Parser.Extensions)
	v.SetDefault("parser.ignore", cfg.Parser.Ignore)
	v.SetDefault("parser.maxFileSize", cfg.Parser.MaxFileSize)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// Load reads the configuration. An explicit path must exist; otherwise
// FileName is searched in dir and defaults are used when it is absent.
// Environment variables override both.
func Load(explicit, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !stderrors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := field.Tag.Get("mapstructure")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		msg := fmt.Sprintf("value %v fails %q", fe.Value(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("value %v fails %q (%s)", fe.Value(), fe.Tag(), fe.Param())
		}
		return &ConfigError{Field: field, Message: msg}
	}
	return &ConfigError{Field: "config", Message: err.Error()}
}

// Marshal serialises the configuration as "yaml" or "toml".
func (c *Config) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return yaml.Marshal(c)
	case "toml":
		return toml.Marshal(c)
	default:
		return nil, &ConfigError{Field: "format", Message: fmt.Sprintf("unsupported config format %q", format)}
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
