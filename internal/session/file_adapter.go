package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"lectern/internal/manifest"
)

// FileAdapter realizes Platform from exported artifacts: a cookies JSON file
// produced by the external login flow, and a scraped manifest JSON file. It
// is the one concrete adapter today; a live browser adapter would slot in
// behind the same interface.
type FileAdapter struct {
	cookiesPath  string
	manifestPath string
	origin       string

	creds  Credentials
	loaded bool
}

// NewFileAdapter builds an adapter reading cookies and manifest from disk,
// scoping the credentials to origin.
func NewFileAdapter(cookiesPath, manifestPath, origin string) *FileAdapter {
	return &FileAdapter{
		cookiesPath:  cookiesPath,
		manifestPath: manifestPath,
		origin:       origin,
	}
}

// IsAuthenticated reports whether a usable, unexpired cookie set is loaded.
func (a *FileAdapter) IsAuthenticated(_ context.Context) (bool, error) {
	if !a.loaded {
		return false, nil
	}
	now := time.Now()
	for _, cookie := range a.creds.Cookies {
		if !cookie.Expired(now) {
			return true, nil
		}
	}
	return false, nil
}

// Authenticate loads the exported cookie file. The interactive login that
// produced the file happened outside this process.
func (a *FileAdapter) Authenticate(_ context.Context) error {
	data, err := os.ReadFile(a.cookiesPath)
	if err != nil {
		return fmt.Errorf("read cookies file: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("parse cookies file: %w", err)
	}
	if len(cookies) == 0 {
		return fmt.Errorf("cookies file %s holds no cookies", a.cookiesPath)
	}
	a.creds = Credentials{Origin: a.origin, Cookies: cookies}
	a.loaded = true
	return nil
}

// ScrapeManifest loads the course manifest the scraping collaborator wrote.
func (a *FileAdapter) ScrapeManifest(_ context.Context) (*manifest.Manifest, error) {
	return manifest.Load(a.manifestPath)
}

// Credentials returns the loaded bundle. Callers clone before sharing.
func (a *FileAdapter) Credentials() Credentials {
	return a.creds
}
