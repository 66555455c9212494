package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	CookieFormatRecord   = "record"
	CookieFormatNetscape = "netscape"

	EnvLogLevel    = "RSREQUEST_LOG_LEVEL"
	EnvTablesFile  = "RSREQUEST_TABLES_FILE"
	EnvCookiesFile = "RSREQUEST_COOKIES_FILE"
	EnvWorkDir     = "RSREQUEST_WORK_DIR"
	EnvMaxSteps    = "RSREQUEST_MAX_STEPS"

	defaultLogLevel     = LogLevelInfo
	defaultWorkers      = 4
	defaultSidecarExt   = ".md"
	defaultMaxSteps     = 16
	defaultCookieFormat = CookieFormatRecord
)

type MetadataConfig struct {
	TablesFile string `yaml:"tables_file"`
}

type CookieConfig struct {
	File        string `yaml:"file"`
	Format      string `yaml:"format"`
	SkipInvalid bool   `yaml:"skip_invalid"`
}

type SidecarConfig struct {
	WorkDir string `yaml:"work_dir"`
	Workers int    `yaml:"workers"`
	Ext     string `yaml:"ext"`
}

type ResolveConfig struct {
	MaxSteps int `yaml:"max_steps"`
}

type Config struct {
	LogLevel string         `yaml:"log_level"`
	Metadata MetadataConfig `yaml:"metadata"`
	Cookies  CookieConfig   `yaml:"cookies"`
	Sidecar  SidecarConfig  `yaml:"sidecar"`
	Resolve  ResolveConfig  `yaml:"resolve"`
}

func (c *Config) SetDefaults() {
	c.LogLevel = defaultLogLevel
	c.Cookies.Format = defaultCookieFormat
	c.Sidecar.WorkDir = "."
	c.Sidecar.Workers = defaultWorkers
	c.Sidecar.Ext = defaultSidecarExt
	c.Resolve.MaxSteps = defaultMaxSteps
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}

	switch c.Cookies.Format {
	case CookieFormatRecord, CookieFormatNetscape:
	default:
		return fmt.Errorf("unknown cookie format: %q", c.Cookies.Format)
	}

	if c.Sidecar.Workers < 1 {
		return fmt.Errorf("sidecar workers must be positive, got %d", c.Sidecar.Workers)
	}

	if c.Resolve.MaxSteps < 1 {
		return fmt.Errorf("resolve max steps must be positive, got %d", c.Resolve.MaxSteps)
	}

	return nil
}

// Load reads the YAML config file over the defaults and applies environment
// overrides. A missing file is not an error when path is empty.
func Load(afs afero.Fs, path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if path != "" {
		data, err := afero.ReadFile(afs, path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}

		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	if err := LoadEnv(); err != nil {
		panic(err)
	}

	cfg, err := Load(afero.NewOsFs(), path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// LoadEnv loads .env files into the process environment. Missing files are
// skipped, variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("cannot load env file %s: %w", file, err)
		}
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}

	if v, ok := os.LookupEnv(EnvTablesFile); ok {
		c.Metadata.TablesFile = v
	}

	if v, ok := os.LookupEnv(EnvCookiesFile); ok {
		c.Cookies.File = v
	}

	if v, ok := os.LookupEnv(EnvWorkDir); ok {
		c.Sidecar.WorkDir = v
	}

	if v, ok := os.LookupEnv(EnvMaxSteps); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("cannot parse %s: %w", EnvMaxSteps, err)
		}

		c.Resolve.MaxSteps = n
	}

	return nil
}
