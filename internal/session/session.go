// Package session owns the authenticated-session bundle shared across
// workers. Credentials are captured once per run and handed to each worker
// as an independent copy; they are never mutated after bootstrap.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lectern/internal/manifest"
)

// ErrUnauthenticated aborts the run: spawning workers without a confirmed
// session is not a supported degraded mode.
var ErrUnauthenticated = errors.New("authentication could not be established")

// Cookie is one transferable session cookie.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"httpOnly"`
	Expires  time.Time `json:"expires,omitzero"`
}

// Expired reports whether the cookie has an expiry in the past. Session
// cookies without an expiry never report expired.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

// Credentials is the opaque session bundle a worker context is seeded with,
// scoped to the origin it was captured for.
type Credentials struct {
	Origin  string
	Cookies []Cookie
}

// Empty reports whether the bundle carries no cookies.
func (c Credentials) Empty() bool {
	return len(c.Cookies) == 0
}

// Clone returns an independent copy with no back-reference, so a worker can
// never reach the pool's canonical bundle through its seeded copy.
func (c Credentials) Clone() Credentials {
	cookies := make([]Cookie, len(c.Cookies))
	copy(cookies, c.Cookies)
	return Credentials{Origin: c.Origin, Cookies: cookies}
}

// Platform is the capability surface of the course site. One concrete
// adapter exists today; the login flow itself lives behind Authenticate.
type Platform interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	Authenticate(ctx context.Context) error
	ScrapeManifest(ctx context.Context) (*manifest.Manifest, error)
	Credentials() Credentials
}

// Bootstrap performs the single authenticating round-trip and returns the
// canonical credential bundle. Any failure here is fatal to the run.
func Bootstrap(ctx context.Context, platform Platform) (Credentials, error) {
	ok, err := platform.IsAuthenticated(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if !ok {
		if err := platform.Authenticate(ctx); err != nil {
			return Credentials{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		ok, err = platform.IsAuthenticated(ctx)
		if err != nil {
			return Credentials{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		if !ok {
			return Credentials{}, ErrUnauthenticated
		}
	}

	creds := platform.Credentials().Clone()
	if creds.Empty() {
		return Credentials{}, fmt.Errorf("%w: platform reported no cookies", ErrUnauthenticated)
	}
	return creds, nil
}
