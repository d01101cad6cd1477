package capture

import (
	"context"
	"time"

	"lectern/internal/session"
)

// Request identifies one lecture the pipeline should drive to completion.
type Request struct {
	SectionLabel string
	Title        string
	LectureID    string
	SourceURL    string

	// DiscoveryTimeout bounds how long the runner may wait to observe the
	// player's video identifier before giving up on the lecture. Drivers
	// that resolve the id without playback may ignore it.
	DiscoveryTimeout time.Duration
}

// EndReason reports how a capture window closed.
type EndReason string

const (
	// EndPlayback means the player reached an end-of-playback condition.
	EndPlayback EndReason = "playback_ended"
	// EndTimeout means the bounded wait elapsed before playback finished.
	// Whatever segments were captured by then are still assembled.
	EndTimeout EndReason = "timeout"
)

// Result is what a runner reports back after driving one lecture.
type Result struct {
	VideoID   string
	EndReason EndReason
}

// SegmentSink receives raw subtitle fragments as the capture mechanism
// observes them.
type SegmentSink interface {
	Put(videoID, segmentName string, data []byte) error
}

// Runner drives playback and capture for one lecture inside an isolated
// execution context. Implementations own navigation and playback; they must
// deliver every observed fragment to sink and report the discovered video id.
type Runner interface {
	Run(ctx context.Context, req Request, sink SegmentSink) (Result, error)
}

// Context is one isolated execution context seeded with session credentials.
// A worker acquires exactly one, drains jobs through it, and releases it.
type Context interface {
	Runner
	Close() error
}

// ContextFactory creates isolated execution contexts. The browser-automation
// collaborator provides the real implementation; tests and offline replays
// provide in-process ones.
type ContextFactory interface {
	NewContext(ctx context.Context, creds session.Credentials) (Context, error)
}
