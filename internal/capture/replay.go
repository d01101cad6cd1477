package capture

import (
	"context"

	"lectern/internal/session"
)

// ReplayFactory produces contexts that re-process lectures whose segments
// were already captured on disk. No navigation happens; the video id is
// resolved through the supplied lookup. Useful for re-assembling transcripts
// after heuristic or decoder changes without touching the network.
type ReplayFactory struct {
	resolve func(Request) string
}

// NewReplayFactory builds a factory resolving video ids with resolve. A nil
// resolve maps each lecture to its own id, the convention the capture
// collaborator uses when no player id was recorded.
func NewReplayFactory(resolve func(Request) string) *ReplayFactory {
	if resolve == nil {
		resolve = func(req Request) string { return req.LectureID }
	}
	return &ReplayFactory{resolve: resolve}
}

// NewContext hands out a replay context. Credentials are required for parity
// with live contexts even though replay never uses them.
func (f *ReplayFactory) NewContext(_ context.Context, creds session.Credentials) (Context, error) {
	if creds.Empty() {
		return nil, Wrap(ErrTransient, "replay", "new context", "empty credentials", nil)
	}
	return &replayContext{resolve: f.resolve}, nil
}

type replayContext struct {
	resolve func(Request) string
}

func (c *replayContext) Run(ctx context.Context, req Request, _ SegmentSink) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	videoID := c.resolve(req)
	if videoID == "" {
		return Result{}, Wrap(ErrNoVideoID, "replay", "resolve", req.LectureID, nil)
	}
	return Result{VideoID: videoID, EndReason: EndPlayback}, nil
}

func (c *replayContext) Close() error { return nil }
