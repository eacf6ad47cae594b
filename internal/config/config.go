// Package config loads ghactivity settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the working directory and $HOME.
	FileName  = ".ghactivity"
	EnvPrefix = "GHACTIVITY"

	redacted = "********"
)

// Config represents the full ghactivity configuration
type Config struct {
	GitHub      GitHubConfig `mapstructure:"github" yaml:"github"`
	Output      OutputConfig `mapstructure:"output" yaml:"output"`
	Log         LogConfig    `mapstructure:"log" yaml:"log"`
	MetricsFile string       `mapstructure:"metrics_file" yaml:"metrics_file,omitempty"`
	Strict      bool         `mapstructure:"strict" yaml:"strict"`
}

// GitHubConfig selects whose feed is read and how
type GitHubConfig struct {
	UserName    string `mapstructure:"user_name" yaml:"user_name" validate:"required,max=39"`
	AccessToken string `mapstructure:"access_token" yaml:"access_token,omitempty"`
	// TokenSecret names a Secret Manager secret holding the token,
	// either a bare name or projects/P/secrets/S[/versions/V].
	TokenSecret       string        `mapstructure:"token_secret" yaml:"token_secret,omitempty"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	PerPage           int           `mapstructure:"per_page" yaml:"per_page" validate:"min=1,max=100"`
	MaxPages          int           `mapstructure:"max_pages" yaml:"max_pages" validate:"min=1,max=100"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
	Private           bool          `mapstructure:"private" yaml:"private"`
}

// OutputConfig controls file exports; markdown always goes to stdout
type OutputConfig struct {
	Directory string   `mapstructure:"directory" yaml:"directory" validate:"required"`
	Formats   []string `mapstructure:"formats" yaml:"formats" validate:"dive,oneof=json html csv xlsx"`
}

// LogConfig mirrors logger.Options
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=console json"`
}

var (
	vOnce    sync.Once
	validate *validator.Validate
)

func validatorInstance() *validator.Validate {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report config keys rather than Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("mapstructure")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		validate = v
	})
	return validate
}

// SetDefaults registers every key so env overrides are seen by Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("github.user_name", "")
	v.SetDefault("github.access_token", "")
	v.SetDefault("github.token_secret", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.per_page", 30)
	v.SetDefault("github.max_pages", 10)
	v.SetDefault("github.requests_per_second", 5.0)
	v.SetDefault("github.timeout", "30s")
	v.SetDefault("github.private", false)
	v.SetDefault("output.directory", "reports")
	v.SetDefault("output.formats", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics_file", "")
	v.SetDefault("strict", false)
}

// Setup prepares v with defaults, env bindings and, when found, a config file.
// An explicit cfgFile must exist; the default lookup may find nothing.
func Setup(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.access_token", EnvPrefix+"_GITHUB_ACCESS_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("github.user_name", EnvPrefix+"_GITHUB_USER_NAME", "GITHUB_USER")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigType("yaml")
	v.SetConfigName(FileName)
	if cwd, err := os.Getwd(); err == nil {
		v.AddConfigPath(cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config and fills unset fields
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.GitHub.PerPage == 0 {
		cfg.GitHub.PerPage = 30
	}
	if cfg.GitHub.MaxPages == 0 {
		cfg.GitHub.MaxPages = 10
	}
	if cfg.GitHub.Timeout == 0 {
		cfg.GitHub.Timeout = 30 * time.Second
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "reports"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	formats := cfg.Output.Formats[:0]
	for _, f := range cfg.Output.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && f != "markdown" {
			formats = append(formats, f)
		}
	}
	cfg.Output.Formats = formats
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldError(verrs[0])
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.GitHub.Private && c.GitHub.AccessToken == "" && c.GitHub.TokenSecret == "" {
		return fmt.Errorf("private feed requires github.access_token or github.token_secret")
	}

	return nil
}

func fieldError(fe validator.FieldError) error {
	key := fe.Namespace()
	if idx := strings.Index(key, "."); idx >= 0 {
		key = key[idx+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", key)
	case "oneof":
		return fmt.Errorf("invalid %s: %v (must be one of %s)", key, fe.Value(), fe.Param())
	case "min", "max", "gte":
		return fmt.Errorf("invalid %s: %v (%s %s)", key, fe.Value(), fe.Tag(), fe.Param())
	default:
		return fmt.Errorf("invalid %s: %v", key, fe.Value())
	}
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() Config {
	out := *c
	if out.GitHub.AccessToken != "" {
		out.GitHub.AccessToken = redacted
	}
	out.Output.Formats = append([]string(nil), c.Output.Formats...)
	return out
}

// Marshal renders cfg as YAML
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// WriteFile writes cfg to path, refusing to overwrite unless force is set.
// The file may hold a token, so it is created 0600.
func WriteFile(path string, cfg Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	header := "# ghactivity configuration\n\n"

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DefaultPath is where init writes when no path is given
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home dir: %w", err)
	}
	return filepath.Join(home, FileName+".yaml"), nil
}
