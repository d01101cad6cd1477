package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSite()
	c.normalizeWorkers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SegmentDir) == "" {
		c.Paths.SegmentDir = defaultSegmentDir
	}
	if c.Paths.SegmentDir, err = expandPath(c.Paths.SegmentDir); err != nil {
		return fmt.Errorf("paths.segment_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptDir) == "" {
		c.Paths.TranscriptDir = defaultTranscriptDir
	}
	if c.Paths.TranscriptDir, err = expandPath(c.Paths.TranscriptDir); err != nil {
		return fmt.Errorf("paths.transcript_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ManifestPath) == "" {
		c.Paths.ManifestPath = defaultManifestPath
	}
	if c.Paths.ManifestPath, err = expandPath(c.Paths.ManifestPath); err != nil {
		return fmt.Errorf("paths.manifest_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.CookiesPath) == "" {
		c.Paths.CookiesPath = defaultCookiesPath
	}
	if c.Paths.CookiesPath, err = expandPath(c.Paths.CookiesPath); err != nil {
		return fmt.Errorf("paths.cookies_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSite() {
	c.Site.BaseURL = strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/")
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Count <= 0 {
		c.Workers.Count = defaultWorkerCount
	}
	if c.Workers.StaggerSeconds < 0 {
		c.Workers.StaggerSeconds = defaultStaggerSeconds
	}
	if c.Workers.PlaybackTimeoutSeconds <= 0 {
		c.Workers.PlaybackTimeoutSeconds = defaultPlaybackTimeoutSeconds
	}
	if c.Workers.DiscoveryTimeoutSeconds <= 0 {
		c.Workers.DiscoveryTimeoutSeconds = defaultDiscoveryTimeoutSeconds
	}
	if c.Workers.JobLimit < 0 {
		c.Workers.JobLimit = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
