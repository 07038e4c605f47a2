package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/drone/envsubst"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"github.com/ibmresilient/finfo/pkg/httpclient"
)

const (
	defaultPort      = 443
	defaultTimeout   = 30 * time.Second
	defaultLogLevel  = "warn"
	defaultLogFormat = "logfmt"

	defaultMaxResponseSize = "32MiB"
)

// Config is the connection and logging configuration. Values come from the defaults,
// then the optional config file, then command line flags.
type Config struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	Org                string        `yaml:"org"`
	Email              string        `yaml:"email"`
	Password           string        `yaml:"password"`
	CAFile             string        `yaml:"cafile"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Proxy              string        `yaml:"proxy"`
	Timeout            time.Duration `yaml:"timeout"`
	Compression        bool          `yaml:"compression"`
	MaxResponseSize    string        `yaml:"max_response_size"`

	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	MetricsPushURL string `yaml:"metrics_push_url"`
}

func (cfg *Config) ApplyDefaults() {
	cfg.Port = defaultPort
	cfg.Timeout = defaultTimeout
	cfg.LogLevel = defaultLogLevel
	cfg.LogFormat = defaultLogFormat
	cfg.MaxResponseSize = defaultMaxResponseSize
}

func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if cfg.Email == "" {
		errs = append(errs, errors.New("email is required"))
	}
	if cfg.Password == "" {
		errs = append(errs, errors.New("password is required"))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", cfg.Port))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid timeout %s", cfg.Timeout))
	}
	if _, err := cfg.MaxResponseBytes(); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogFormat != "logfmt" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q, valid choices are logfmt and json", cfg.LogFormat))
	}

	if len(errs) > 0 {
		return multierr.Combine(errs...)
	}
	return nil
}

// BaseURL is the https URL of the REST API.
func (cfg *Config) BaseURL() string {
	return "https://" + cfg.Host + ":" + strconv.Itoa(cfg.Port)
}

// MaxResponseBytes parses MaxResponseSize, e.g. "32MiB" or "500kB". Zero disables the limit.
func (cfg *Config) MaxResponseBytes() (uint64, error) {
	n, err := humanize.ParseBytes(cfg.MaxResponseSize)
	if err != nil {
		return 0, fmt.Errorf("invalid max response size %q: %w", cfg.MaxResponseSize, err)
	}
	return n, nil
}

func (cfg *Config) TransportConfig() httpclient.TransportConfig {
	return httpclient.TransportConfig{
		CAFile:             cfg.CAFile,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Proxy:              cfg.Proxy,
		Compression:        cfg.Compression,
	}
}

// loadConfig returns the defaults overlaid with configFile, if given.
func loadConfig(configFile string, expandEnv bool) (*Config, error) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if configFile == "" {
		return cfg, nil
	}

	buff, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read configFile %s: %w", configFile, err)
	}

	if expandEnv {
		s, err := envsubst.EvalEnv(string(buff))
		if err != nil {
			return nil, fmt.Errorf("failed to expand env vars from configFile %s: %w", configFile, err)
		}
		buff = []byte(s)
	}

	if err := yaml.UnmarshalStrict(buff, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configFile %s: %w", configFile, err)
	}

	return cfg, nil
}
