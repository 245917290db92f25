// Package config provides configuration loading for rock.
// It supports a layered configuration approach with priority:
// CLI flags > environment variables (ROCK_*) > config file (~/.rock.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultProbeTimeout bounds the single pre-flight reachability request.
const DefaultProbeTimeout = 30 * time.Second

// CrawlerSettings is the crawler section of the config file.
type CrawlerSettings struct {
	Enabled     bool `mapstructure:"enabled" yaml:"enabled"`
	Depth       int  `mapstructure:"depth" yaml:"depth"`
	MaxURLs     int  `mapstructure:"max_urls" yaml:"max_urls"`
	Concurrency int  `mapstructure:"concurrency" yaml:"concurrency"`
	AnyHost     bool `mapstructure:"any_host" yaml:"any_host"`
}

// Config holds all rock configuration options.
type Config struct {
	Target          string            `mapstructure:"target" yaml:"target"`
	Headers         map[string]string `mapstructure:"headers" yaml:"headers"`
	Threads         int               `mapstructure:"threads" yaml:"threads"`
	Timeout         time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	ProbeTimeout    time.Duration     `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	ExcludedModules []string          `mapstructure:"excluded_modules" yaml:"excluded_modules"`
	ModuleOptions   map[string]string `mapstructure:"module_options" yaml:"module_options"`
	OutputFormat    string            `mapstructure:"output_format" yaml:"output_format"`
	Verbose         bool              `mapstructure:"verbose" yaml:"verbose"`
	Crawler         CrawlerSettings   `mapstructure:"crawler" yaml:"crawler"`
}

// Defaults returns a Config populated with default values.
func Defaults() Config {
	return Config{
		Threads:      10,
		Timeout:      10 * time.Second,
		ProbeTimeout: DefaultProbeTimeout,
		OutputFormat: "table",
		Crawler: CrawlerSettings{
			Depth:       2,
			MaxURLs:     100,
			Concurrency: 5,
		},
	}
}

// Load reads configuration from ~/.rock.yaml and environment variables.
// It does NOT apply CLI flag overrides; call ApplyFlags for that.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName(".rock")
	v.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ROCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// ApplyFlags overrides config values with any CLI flags that were explicitly set.
func ApplyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("target") {
		val, _ := flags.GetString("target")
		cfg.Target = val
	}
	if flags.Changed("threads") {
		val, _ := flags.GetInt("threads")
		cfg.Threads = val
	}
	if flags.Changed("timeout") {
		val, _ := flags.GetDuration("timeout")
		cfg.Timeout = val
	}
	if flags.Changed("probe-timeout") {
		val, _ := flags.GetDuration("probe-timeout")
		cfg.ProbeTimeout = val
	}
	if flags.Changed("output") {
		val, _ := flags.GetString("output")
		cfg.OutputFormat = val
	}
	if flags.Changed("verbose") {
		val, _ := flags.GetBool("verbose")
		cfg.Verbose = val
	}
	if flags.Changed("exclude") {
		val, _ := flags.GetStringSlice("exclude")
		cfg.ExcludedModules = val
	}
	if flags.Changed("header") {
		raw, _ := flags.GetStringArray("header")
		headers, err := ParseHeaders(raw)
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("option") {
		raw, _ := flags.GetStringArray("option")
		opts, err := ParseOptions(raw)
		if err != nil {
			return err
		}
		if cfg.ModuleOptions == nil {
			cfg.ModuleOptions = make(map[string]string, len(opts))
		}
		for k, v := range opts {
			cfg.ModuleOptions[k] = v
		}
	}
	if flags.Changed("crawl") {
		val, _ := flags.GetBool("crawl")
		cfg.Crawler.Enabled = val
	}
	if flags.Changed("crawl-depth") {
		val, _ := flags.GetInt("crawl-depth")
		cfg.Crawler.Depth = val
	}
	if flags.Changed("max-urls") {
		val, _ := flags.GetInt("max-urls")
		cfg.Crawler.MaxURLs = val
	}
	return nil
}

// Validate reports settings that can never produce a working scan.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("target is required")
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must be non-negative, got %d", c.Threads)
	}
	if c.Timeout < 0 || c.ProbeTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	if c.Crawler.Depth < 0 || c.Crawler.MaxURLs < 0 {
		return fmt.Errorf("crawler depth and max_urls must be non-negative")
	}
	return nil
}

// ParseHeaders turns "Name: value" pairs into a header map.
func ParseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// ParseOptions turns "key=value" pairs into a module option map.
func ParseOptions(raw []string) (map[string]string, error) {
	opts := make(map[string]string, len(raw))
	for _, o := range raw {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid module option %q (want key=value)", o)
		}
		opts[key] = strings.TrimSpace(value)
	}
	return opts, nil
}

// ConfigFilePath returns the default config file path (~/.rock.yaml).
func ConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rock.yaml"
	}
	return filepath.Join(home, ".rock.yaml")
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("threads", d.Threads)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("probe_timeout", d.ProbeTimeout)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("crawler.enabled", false)
	v.SetDefault("crawler.depth", d.Crawler.Depth)
	v.SetDefault("crawler.max_urls", d.Crawler.MaxURLs)
	v.SetDefault("crawler.concurrency", d.Crawler.Concurrency)
}
