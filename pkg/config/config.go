package config

import (
	"fmt"
	"net/url"
	"time"
)

// EnvPrefix prefixes environment variables that override configuration keys.
const EnvPrefix = "SERVERWRAP_"

// Config is the top-level configuration file.
type Config struct {
	Run                       []string           `koanf:"run" toml:"run" yaml:"run"`
	Restart                   bool               `koanf:"restart" toml:"restart" yaml:"restart"`
	MinRestartIntervalSeconds uint64             `koanf:"min_restart_interval_seconds" toml:"min_restart_interval_seconds" yaml:"min_restart_interval_seconds"`
	Destinations              string             `koanf:"destinations" toml:"destinations" yaml:"destinations"`
	CacheDir                  string             `koanf:"cache_dir" toml:"cache_dir" yaml:"cache_dir"`
	SourceConcurrency         int                `koanf:"source_concurrency" toml:"source_concurrency" yaml:"source_concurrency"`
	HTTPTimeout               Duration           `koanf:"http_timeout" toml:"http_timeout" yaml:"http_timeout"`
	Status                    Status             `koanf:"status" toml:"status" yaml:"status"`
	Tokens                    Tokens             `koanf:"tokens" toml:"tokens" yaml:"tokens"`
	Triggers                  map[string]Trigger `koanf:"triggers" toml:"triggers,omitempty" yaml:"triggers,omitempty"`
}

// Status configures where status messages go.
type Status struct {
	Webhook string `koanf:"webhook" toml:"webhook" yaml:"webhook"`
	Console bool   `koanf:"console" toml:"console" yaml:"console"`
}

// Tokens holds credentials for remote sources. Empty values mean anonymous access.
type Tokens struct {
	GitHub   string        `koanf:"github" toml:"github" yaml:"github"`
	Modrinth string        `koanf:"modrinth" toml:"modrinth" yaml:"modrinth"`
	S3       S3Credentials `koanf:"s3" toml:"s3" yaml:"s3"`
}

// S3Credentials are static credentials for S3-compatible object sources.
type S3Credentials struct {
	AccessKey string `koanf:"access_key" toml:"access_key" yaml:"access_key"`
	SecretKey string `koanf:"secret_key" toml:"secret_key" yaml:"secret_key"`
}

// Trigger declares an event that should cause a restart. Only declaration and
// validation live here; nothing dispatches triggers.
type Trigger struct {
	Type string `koanf:"type" toml:"type" yaml:"type"`
	Port int    `koanf:"port" toml:"port,omitempty" yaml:"port,omitempty"`
}

// MinRestartInterval returns the configured minimum time between starts.
func (c *Config) MinRestartInterval() time.Duration {
	return time.Duration(c.MinRestartIntervalSeconds) * time.Second
}

// Validate checks cross-field constraints and normalizes values that have a
// sensible floor.
func (c *Config) Validate() error {
	if c.SourceConcurrency < 1 {
		c.SourceConcurrency = 1
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}
	if c.Status.Webhook != "" {
		u, err := url.Parse(c.Status.Webhook)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("status.webhook must be an http(s) URL")
		}
	}
	for name, trigger := range c.Triggers {
		if err := validateTrigger(trigger); err != nil {
			return fmt.Errorf("trigger %q: %w", name, err)
		}
	}
	return nil
}

// Duration is a time.Duration written as a Go duration string ("60s") in
// configuration files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
