package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ibmresilient/finfo/pkg/fields"
	"github.com/ibmresilient/finfo/pkg/httpclient"
	"github.com/ibmresilient/finfo/pkg/report"
	"github.com/ibmresilient/finfo/pkg/util/log"
)

type cli struct {
	FieldName string `arg:"" optional:"" name:"fieldname" help:"The field name."`

	Type  string `name:"type" enum:"incident,task,artifact,milestone,attachment,note,actioninvocation" default:"incident" help:"The object type (defaults to 'incident')."`
	JSON  bool   `name:"json" help:"Print the field definition in JSON format."`
	CSV   bool   `name:"csv" help:"Print the field lists in CSV format."`
	Table bool   `name:"table" help:"Print the field lists as a table."`

	ConfigFile      string           `name:"config.file" type:"existingfile" help:"Configuration file to load."`
	ConfigExpandEnv bool             `name:"config.expand-env" help:"Whether to expand environment variables in config file."`
	Version         kong.VersionFlag `name:"version" help:"Print this builds version information."`

	ConnectionOptions `embed:""`
}

// ConnectionOptions override the config file when set.
type ConnectionOptions struct {
	Host            string        `help:"Resilient host name." env:"RESILIENT_HOST"`
	Port            int           `help:"Resilient port (defaults to 443)."`
	Org             string        `help:"Organization name, required when the user belongs to several."`
	Email           string        `help:"Login email address." env:"RESILIENT_EMAIL"`
	Password        string        `help:"Login password." env:"RESILIENT_PASSWORD"`
	CAFile          string        `name:"cafile" help:"PEM file with the CA certificates to trust."`
	Insecure        bool          `name:"insecure-skip-verify" help:"Skip TLS certificate verification."`
	Proxy           string        `help:"HTTP proxy URL."`
	Timeout         time.Duration `help:"Timeout of the whole exchange with the server (defaults to 30s)."`
	Compression     bool          `help:"Request gzip compressed responses."`
	MaxResponseSize string        `name:"max-response-size" help:"Largest accepted response body, e.g. 32MiB (defaults to 32MiB, 0 disables)."`
	LogLevel        string        `name:"log.level" help:"Log level: debug, info, warn, error (defaults to warn)."`
	LogFormat       string        `name:"log.format" help:"Log format: logfmt or json."`
	MetricsPushURL  string        `name:"metrics.push-url" help:"Prometheus pushgateway to push request metrics to."`
}

func (o *ConnectionOptions) overlay(cfg *Config) {
	setString(&cfg.Host, o.Host)
	setString(&cfg.Org, o.Org)
	setString(&cfg.Email, o.Email)
	setString(&cfg.Password, o.Password)
	setString(&cfg.CAFile, o.CAFile)
	setString(&cfg.Proxy, o.Proxy)
	setString(&cfg.LogLevel, o.LogLevel)
	setString(&cfg.LogFormat, o.LogFormat)
	setString(&cfg.MetricsPushURL, o.MetricsPushURL)
	setString(&cfg.MaxResponseSize, o.MaxResponseSize)
	if o.Port != 0 {
		cfg.Port = o.Port
	}
	if o.Timeout != 0 {
		cfg.Timeout = o.Timeout
	}
	if o.Insecure {
		cfg.InsecureSkipVerify = true
	}
	if o.Compression {
		cfg.Compression = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// fieldFormat picks the single field render. --csv and --table do not apply and are
// ignored.
func (c *cli) fieldFormat() report.Format {
	if c.JSON {
		return report.FormatJSON
	}
	return report.FormatText
}

// listFormat picks the list render. --json does not apply and is ignored.
func (c *cli) listFormat() report.Format {
	switch {
	case c.CSV:
		return report.FormatCSV
	case c.Table:
		return report.FormatTable
	default:
		return report.FormatText
	}
}

type sourceFunc func(ctx context.Context, cfg *Config, logger kitlog.Logger, reg prometheus.Registerer) (fields.Source, error)

// connect returns a REST client logged in with the configured credentials.
func connect(ctx context.Context, cfg *Config, logger kitlog.Logger, reg prometheus.Registerer) (fields.Source, error) {
	transport, err := httpclient.NewTransport(cfg.TransportConfig())
	if err != nil {
		return nil, err
	}

	maxSize, err := cfg.MaxResponseBytes()
	if err != nil {
		return nil, err
	}

	client := httpclient.New(cfg.BaseURL(), cfg.Org)
	client.WithTransport(transport)
	client.WithLogger(logger)
	client.WithMetrics(httpclient.NewMetrics(reg))
	client.WithMaxResponseSize(maxSize)

	if err := client.Connect(ctx, cfg.Email, cfg.Password); err != nil {
		return nil, err
	}
	return client, nil
}

// run executes one invocation and returns the exit code. A non-nil error is fatal.
func (c *cli) run(ctx context.Context, out io.Writer, logOut io.Writer, newSource sourceFunc) (int, error) {
	cfg, err := loadConfig(c.ConfigFile, c.ConfigExpandEnv)
	if err != nil {
		return exitFatal, err
	}
	c.ConnectionOptions.overlay(cfg)

	if err := cfg.Validate(); err != nil {
		return exitFatal, fmt.Errorf("invalid configuration: %w", err)
	}
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return exitFatal, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := log.NewLogger(cfg.LogFormat, lvl, logOut)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	reg := prometheus.NewRegistry()
	defer pushMetrics(cfg.MetricsPushURL, reg, logger)

	src, err := newSource(ctx, cfg, logger, reg)
	if err != nil {
		return exitFatal, err
	}

	if c.FieldName == "" {
		fs, err := src.GetFields(ctx, c.Type)
		if err != nil {
			return exitFatal, err
		}
		level.Debug(logger).Log("msg", "listing fields", "type", c.Type, "count", len(fs), "format", c.listFormat())
		return exitOK, report.RenderList(out, fs, c.listFormat())
	}

	f, err := fields.Lookup(ctx, src, c.Type, c.FieldName)
	if errors.Is(err, fields.ErrFieldNotFound) {
		level.Info(logger).Log("msg", "field not found", "type", c.Type, "field", c.FieldName)
		_, err = fmt.Fprintf(out, "Field '%s' was not found.\n", c.FieldName)
		return exitNotFound, err
	}
	if err != nil {
		return exitFatal, err
	}

	return exitOK, report.RenderField(out, f, c.fieldFormat())
}

func pushMetrics(url string, reg *prometheus.Registry, logger kitlog.Logger) {
	if url == "" {
		return
	}
	if err := push.New(url, appName).Gatherer(reg).Push(); err != nil {
		level.Warn(logger).Log("msg", "failed to push metrics", "url", url, "err", err)
	}
}
