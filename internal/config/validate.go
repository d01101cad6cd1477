package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSite() error {
	if strings.TrimSpace(c.Site.BaseURL) == "" {
		return nil
	}
	parsed, err := url.Parse(c.Site.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute URL, got %q", c.Site.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("site.base_url must use http or https, got %q", parsed.Scheme)
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count > 16 {
		return fmt.Errorf("workers.count must be 16 or fewer, got %d", c.Workers.Count)
	}
	if c.Workers.PlaybackTimeoutSeconds < c.Workers.DiscoveryTimeoutSeconds {
		return fmt.Errorf(
			"workers.playback_timeout_seconds (%d) must not be shorter than workers.discovery_timeout_seconds (%d)",
			c.Workers.PlaybackTimeoutSeconds,
			c.Workers.DiscoveryTimeoutSeconds,
		)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
