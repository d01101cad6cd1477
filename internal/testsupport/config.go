package testsupport

import (
	"path/filepath"
	"testing"

	"lectern/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SegmentDir = filepath.Join(base, "segments")
	cfg.Paths.TranscriptDir = filepath.Join(base, "transcripts")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ManifestPath = filepath.Join(base, "manifest.json")
	cfg.Paths.CookiesPath = filepath.Join(base, "cookies.json")
	cfg.Site.BaseURL = "https://learn.example.com"
	cfg.Workers.StaggerSeconds = 0

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
